// infrastructure/rabbitmq_queue.go
package infrastructure

import (
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/clipstack/video-hosting-service/domain"
)

const statusEventQueue = "video_status_events"

type RabbitMQQueueService struct {
	Conn *amqp.Connection
}

func NewRabbitMQQueueService(conn *amqp.Connection) *RabbitMQQueueService {
	return &RabbitMQQueueService{Conn: conn}
}

func (s *RabbitMQQueueService) PublishStatusEvent(event domain.VideoStatusEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}

	ch, err := s.Conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open a channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		statusEventQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare a queue: %w", err)
	}

	err = ch.Publish(
		"",
		q.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}
	log.Printf(" [x] Published %s for video %s", event.Event, event.VideoID)
	return nil
}

// ConsumeStatusEvents blocks, delivering each queued status event to the
// handler. Undecodable messages are logged and skipped.
func (s *RabbitMQQueueService) ConsumeStatusEvents(handler func(domain.VideoStatusEvent)) error {
	ch, err := s.Conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open a channel for consumer: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		statusEventQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare a queue for consumer: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name, // queue
		"",     // consumer
		true,   // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	log.Println(" [*] Waiting for status events")
	for d := range msgs {
		var event domain.VideoStatusEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			log.Printf("ERROR: Failed to unmarshal status event: %v", err)
			continue
		}
		handler(event)
	}
	return nil
}

// LogNotificationService stands in for an email or push integration.
type LogNotificationService struct{}

func (LogNotificationService) SendNotification(userID int, title, status, message string) {
	log.Printf("NOTIFICATION for User ID %d - Video '%s' Status: %s. Message: %s", userID, title, status, message)
}

// NotifyOnStatusEvent turns queued status events into user notifications.
func NotifyOnStatusEvent(notifier domain.NotificationService) func(domain.VideoStatusEvent) {
	return func(event domain.VideoStatusEvent) {
		switch event.Event {
		case domain.EventAssetReady:
			notifier.SendNotification(event.UserID, event.VideoID, event.Status, "Your video is ready to watch.")
		case domain.EventAssetErrored:
			notifier.SendNotification(event.UserID, event.VideoID, event.Status, "Your video could not be processed.")
		}
	}
}

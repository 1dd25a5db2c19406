package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/clipstack/video-hosting-service/infrastructure"
	"github.com/clipstack/video-hosting-service/usecase"
)

var db *sql.DB
var rabbitMQConn *amqp.Connection
var jwtSecret []byte

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	jwtSecret = []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		log.Println("WARNING: JWT_SECRET environment variable not set. Using a default secret for development. THIS IS INSECURE FOR PRODUCTION!")
		jwtSecret = []byte("supersecretjwtkeythatshouldbeverylongandrandominproduction")
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func initDB() {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getenv("DB_HOST", "db"),
		getenv("DB_PORT", "5432"),
		getenv("DB_USER", "user"),
		getenv("DB_PASS", "password"),
		getenv("DB_NAME", "video_hosting_db"))

	var err error
	for i := 0; i < 5; i++ {
		db, err = sql.Open("postgres", connStr)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Println("Connected to PostgreSQL")
				return
			}
		}
		log.Printf("Retrying DB connection in 5s... (%d/5)", i+1)
		time.Sleep(5 * time.Second)
	}
	log.Fatalf("Could not connect to the database after several attempts: %v", err)
}

func initRabbitMQ() {
	connString := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		getenv("RABBITMQ_USER", "guest"),
		getenv("RABBITMQ_PASS", "guest"),
		getenv("RABBITMQ_HOST", "rabbitmq"),
		getenv("RABBITMQ_PORT", "5672"))

	var err error
	for i := 0; i < 5; i++ {
		rabbitMQConn, err = amqp.Dial(connString)
		if err == nil {
			log.Println("Connected to RabbitMQ")
			return
		}
		log.Printf("Retrying RabbitMQ connection in 5s... (%d/5)", i+1)
		time.Sleep(5 * time.Second)
	}
	log.Fatalf("Could not connect to RabbitMQ after several attempts: %v", err)
}

func healthCheck(c *gin.Context) {
	dbStatus := "connected"
	if err := db.Ping(); err != nil {
		dbStatus = fmt.Sprintf("error: %v", err)
	}

	rabbitMQStatus := "connected"
	if rabbitMQConn == nil || rabbitMQConn.IsClosed() {
		rabbitMQStatus = "disconnected"
	} else {
		ch, err := rabbitMQConn.Channel()
		if err != nil {
			rabbitMQStatus = fmt.Sprintf("error: %v", err)
		} else {
			ch.Close()
		}
	}

	if dbStatus != "connected" || rabbitMQStatus != "connected" {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":   "DOWN",
			"database": dbStatus,
			"rabbitmq": rabbitMQStatus,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "UP",
		"database": dbStatus,
		"rabbitmq": rabbitMQStatus,
	})
}

func main() {
	initDB()
	defer db.Close()

	initRabbitMQ()
	defer rabbitMQConn.Close()

	videos := infrastructure.NewPostgresVideoRepository(db)
	queue := infrastructure.NewRabbitMQQueueService(rabbitMQConn)
	assets := infrastructure.NewHTTPStorageClient(infrastructure.StorageClientOptions{
		APIURL:    os.Getenv("STORAGE_API_URL"),
		APIToken:  os.Getenv("STORAGE_API_TOKEN"),
		PublicURL: os.Getenv("STORAGE_PUBLIC_URL"),
	})
	media := infrastructure.NewHTTPMediaClient(infrastructure.MediaClientOptions{
		TokenID:     os.Getenv("MUX_TOKEN_ID"),
		TokenSecret: os.Getenv("MUX_TOKEN_SECRET"),
	})

	reconcileUC := &usecase.ReconcileUseCase{
		Videos:         videos,
		Assets:         assets,
		Queue:          queue,
		MirrorFailures: infrastructure.CountMirrorFailure,
	}
	manageUC := &usecase.ManageVideoUseCase{
		Videos: videos,
		Media:  media,
		Assets: assets,
	}
	handlers := infrastructure.NewVideoHandlers(reconcileUC, manageUC, os.Getenv("MUX_WEBHOOK_SECRET"))

	// Status events fan out to user notifications off the request path.
	go func() {
		notify := infrastructure.NotifyOnStatusEvent(infrastructure.LogNotificationService{})
		if err := queue.ConsumeStatusEvents(notify); err != nil {
			log.Printf("ERROR: status event consumer stopped: %v", err)
		}
	}()

	router := gin.Default()

	router.GET("/health", healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/webhooks/mux", handlers.WebhookHandler)

	authRoutes := router.Group("/api")
	authRoutes.Use(infrastructure.AuthMiddleware(jwtSecret))
	{
		authRoutes.POST("/videos", handlers.CreateVideoHandler)
		authRoutes.GET("/videos", handlers.ListVideosHandler)
		authRoutes.GET("/videos/:id", handlers.GetVideoHandler)
		authRoutes.DELETE("/videos/:id", handlers.DeleteVideoHandler)
	}

	port := getenv("PORT", "5001")
	log.Printf("Video hosting service listening on :%s...", port)
	log.Fatal(router.Run(":" + port))
}

// infrastructure/gin_handlers.go
package infrastructure

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clipstack/video-hosting-service/domain"
	"github.com/clipstack/video-hosting-service/usecase"
)

const signatureHeader = "Mux-Signature"

type VideoHandlers struct {
	Reconcile *usecase.ReconcileUseCase
	Manage    *usecase.ManageVideoUseCase

	WebhookSecret string
	Now           func() time.Time
}

func NewVideoHandlers(reconcile *usecase.ReconcileUseCase, manage *usecase.ManageVideoUseCase, webhookSecret string) *VideoHandlers {
	return &VideoHandlers{
		Reconcile:     reconcile,
		Manage:        manage,
		WebhookSecret: webhookSecret,
		Now:           time.Now,
	}
}

// WebhookHandler is the single inbound endpoint for transcoding-provider
// notifications: authenticate, classify, dispatch. Every path answers the
// provider; an unanswered delivery would be redelivered forever.
func (h *VideoHandlers) WebhookHandler(c *gin.Context) {
	eventType := "unknown"
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: webhook handler panicked: %v", r)
			countWebhookEvent(eventType, "error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
	}()

	if h.WebhookSecret == "" {
		countWebhookEvent(eventType, "misconfigured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
		return
	}

	signature := c.GetHeader(signatureHeader)
	if signature == "" {
		countWebhookEvent(eventType, "unauthenticated")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing signature header"})
		return
	}

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		countWebhookEvent(eventType, "malformed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	envelope, err := domain.ParseEnvelope(rawBody)
	if err != nil {
		countWebhookEvent(eventType, "malformed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Verification runs over the raw bytes exactly as received. The type
	// stays "unknown" for metrics until the sender is authenticated.
	if err := VerifyWebhookSignature(rawBody, signature, h.WebhookSecret, h.Now()); err != nil {
		countWebhookEvent(eventType, "unauthenticated")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	if envelope.Type != "" {
		eventType = envelope.Type
	}

	if envelope.Type == "" {
		countWebhookEvent(eventType, "malformed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing event type"})
		return
	}

	handled, err := h.dispatch(c.Request.Context(), envelope)
	if !handled {
		// Kinds we do not consume are acknowledged so the provider
		// stops redelivering them.
		countWebhookEvent(eventType, "ignored")
		c.JSON(http.StatusOK, gin.H{"message": "event ignored"})
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMalformedPayload):
			countWebhookEvent(eventType, "malformed")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			countWebhookEvent(eventType, "not_found")
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		default:
			log.Printf("ERROR: webhook %s: %v", envelope.Type, err)
			countWebhookEvent(eventType, "error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	countWebhookEvent(eventType, "processed")
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *VideoHandlers) dispatch(ctx context.Context, envelope *domain.WebhookEnvelope) (bool, error) {
	switch envelope.Type {
	case domain.EventAssetCreated:
		ev, err := domain.DecodeAssetCreated(envelope.Data)
		if err != nil {
			return true, err
		}
		return true, h.Reconcile.AssetCreated(ctx, ev)
	case domain.EventAssetReady:
		ev, err := domain.DecodeAssetReady(envelope.Data)
		if err != nil {
			return true, err
		}
		return true, h.Reconcile.AssetReady(ctx, ev)
	case domain.EventAssetErrored:
		ev, err := domain.DecodeAssetErrored(envelope.Data)
		if err != nil {
			return true, err
		}
		return true, h.Reconcile.AssetErrored(ctx, ev)
	case domain.EventAssetDeleted:
		ev, err := domain.DecodeAssetDeleted(envelope.Data)
		if err != nil {
			return true, err
		}
		return true, h.Reconcile.AssetDeleted(ctx, ev)
	case domain.EventTrackReady:
		ev, err := domain.DecodeTrackReady(envelope.Data)
		if err != nil {
			return true, err
		}
		return true, h.Reconcile.TrackReady(ctx, ev)
	default:
		return false, nil
	}
}

type createVideoRequest struct {
	Title string `json:"title" binding:"required"`
}

func (h *VideoHandlers) CreateVideoHandler(c *gin.Context) {
	userID := c.MustGet("user_id").(int)

	var req createVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	output, err := h.Manage.CreateUpload(c.Request.Context(), usecase.CreateUploadInput{
		UserID: userID,
		Title:  req.Title,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": output.VideoID, "upload_url": output.UploadURL})
}

func (h *VideoHandlers) ListVideosHandler(c *gin.Context) {
	userID := c.MustGet("user_id").(int)

	videos, err := h.Manage.ListVideos(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list videos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

func (h *VideoHandlers) GetVideoHandler(c *gin.Context) {
	userID := c.MustGet("user_id").(int)

	video, err := h.Manage.GetVideo(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load video"})
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *VideoHandlers) DeleteVideoHandler(c *gin.Context) {
	userID := c.MustGet("user_id").(int)

	err := h.Manage.DeleteVideo(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete video"})
		return
	}
	c.Status(http.StatusNoContent)
}

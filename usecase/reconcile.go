// usecase/reconcile.go
package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/clipstack/video-hosting-service/domain"
)

// ReconcileUseCase applies transcoding-provider webhook events to local
// video records. Every mutation is a lookup-then-conditional-update keyed by
// mux_upload_id or mux_asset_id; ordering across events is whatever the
// provider delivered.
type ReconcileUseCase struct {
	Videos domain.VideoRepository
	Assets domain.AssetStore
	Queue  domain.MessageQueueService

	// MirrorFailures, when set, is called once per failed mirror attempt.
	MirrorFailures func()
}

// bestEffort runs side work whose failure must never fail the webhook:
// mirror fetches, mirrored-asset cleanup, queue publishes.
func bestEffort(op string, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("WARNING: %s: %v", op, err)
	}
}

func (uc *ReconcileUseCase) publish(event string, video *domain.Video, assetID, status string) {
	if uc.Queue == nil {
		return
	}
	bestEffort("publish status event", func() error {
		return uc.Queue.PublishStatusEvent(domain.VideoStatusEvent{
			Event:    event,
			VideoID:  video.ID,
			UserID:   video.UserID,
			UploadID: video.MuxUploadID,
			AssetID:  assetID,
			Status:   status,
		})
	})
}

func (uc *ReconcileUseCase) AssetCreated(ctx context.Context, ev *domain.AssetCreatedEvent) error {
	video, err := uc.Videos.FindByUploadID(ctx, ev.UploadID)
	if err != nil {
		return err
	}
	if err := uc.Videos.UpdateAssetCreated(ctx, ev.UploadID, ev.AssetID, domain.MuxStatus(ev.Status)); err != nil {
		return fmt.Errorf("update on asset created: %w", err)
	}
	uc.publish(domain.EventAssetCreated, video, ev.AssetID, ev.Status)
	return nil
}

func (uc *ReconcileUseCase) AssetReady(ctx context.Context, ev *domain.AssetReadyEvent) error {
	video, err := uc.Videos.FindByUploadID(ctx, ev.UploadID)
	if err != nil {
		return err
	}

	playbackID := ev.PlaybackIDs[0].ID
	update := domain.ReadyUpdate{
		AssetID:    ev.AssetID,
		Status:     domain.MuxStatus(ev.Status),
		PlaybackID: playbackID,
		Duration:   ev.DurationMillis(),
	}

	// Thumbnail and preview are mirrored independently; a failed mirror
	// leaves its location columns untouched. A replay of a ready event
	// already mirrored for this playback id reuses the stored copies, so
	// redelivery neither re-mirrors nor orphans objects.
	samePlayback := video.MuxPlaybackID == playbackID
	if !samePlayback || video.ThumbnailKey == "" {
		update.Thumbnail = uc.mirror(ctx, "thumbnail", thumbnailURL(playbackID))
		if update.Thumbnail != nil && video.ThumbnailKey != "" {
			bestEffort("delete stale mirrored thumbnail", func() error {
				return uc.Assets.DeleteByKey(ctx, video.ThumbnailKey)
			})
		}
	}
	if !samePlayback || video.PreviewKey == "" {
		update.Preview = uc.mirror(ctx, "preview", previewURL(playbackID))
		if update.Preview != nil && video.PreviewKey != "" {
			bestEffort("delete stale mirrored preview", func() error {
				return uc.Assets.DeleteByKey(ctx, video.PreviewKey)
			})
		}
	}

	if err := uc.Videos.UpdateAssetReady(ctx, ev.UploadID, update); err != nil {
		return fmt.Errorf("update on asset ready: %w", err)
	}
	uc.publish(domain.EventAssetReady, video, ev.AssetID, ev.Status)
	return nil
}

func (uc *ReconcileUseCase) AssetErrored(ctx context.Context, ev *domain.AssetErroredEvent) error {
	video, err := uc.Videos.FindByUploadID(ctx, ev.UploadID)
	if err != nil {
		return err
	}
	if err := uc.Videos.UpdateStatusByUploadID(ctx, ev.UploadID, domain.MuxStatus(ev.Status)); err != nil {
		return fmt.Errorf("update on asset errored: %w", err)
	}
	uc.publish(domain.EventAssetErrored, video, video.MuxAssetID, ev.Status)
	return nil
}

// AssetDeleted never signals failure upward: once an attempt has been made
// the provider gets an acknowledgment, even for replayed events whose record
// is already gone.
func (uc *ReconcileUseCase) AssetDeleted(ctx context.Context, ev *domain.AssetDeletedEvent) error {
	video, err := uc.Videos.FindByUploadID(ctx, ev.UploadID)
	if err != nil {
		// Late or replayed delivery: the record may already be gone.
		// Fall back to a delete by upload id, a no-op if nothing matches.
		bestEffort("fallback delete by upload id", func() error {
			return uc.Videos.DeleteByUploadID(ctx, ev.UploadID)
		})
		return nil
	}

	if uc.Assets != nil {
		if video.ThumbnailKey != "" {
			bestEffort("delete mirrored thumbnail", func() error {
				return uc.Assets.DeleteByKey(ctx, video.ThumbnailKey)
			})
		}
		if video.PreviewKey != "" {
			bestEffort("delete mirrored preview", func() error {
				return uc.Assets.DeleteByKey(ctx, video.PreviewKey)
			})
		}
	}

	bestEffort("delete video record", func() error {
		return uc.Videos.DeleteByID(ctx, video.ID)
	})
	uc.publish(domain.EventAssetDeleted, video, video.MuxAssetID, "")
	return nil
}

func (uc *ReconcileUseCase) TrackReady(ctx context.Context, ev *domain.TrackReadyEvent) error {
	video, err := uc.Videos.FindByAssetID(ctx, ev.AssetID)
	if err != nil {
		return err
	}
	if err := uc.Videos.UpdateTrack(ctx, ev.AssetID, ev.TrackID, ev.Status); err != nil {
		return fmt.Errorf("update on track ready: %w", err)
	}
	uc.publish(domain.EventTrackReady, video, ev.AssetID, ev.Status)
	return nil
}

func (uc *ReconcileUseCase) mirror(ctx context.Context, kind, sourceURL string) *domain.StoredAsset {
	if uc.Assets == nil {
		return nil
	}
	asset, err := uc.Assets.CopyFromURL(ctx, sourceURL)
	if err != nil {
		log.Printf("WARNING: mirror %s from %s: %v", kind, sourceURL, err)
		if uc.MirrorFailures != nil {
			uc.MirrorFailures()
		}
		return nil
	}
	return &asset
}

func thumbnailURL(playbackID string) string {
	return fmt.Sprintf("https://image.mux.com/%s/thumbnail.jpg", playbackID)
}

func previewURL(playbackID string) string {
	return fmt.Sprintf("https://image.mux.com/%s/animated.gif", playbackID)
}

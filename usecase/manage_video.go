// usecase/manage_video.go
package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/clipstack/video-hosting-service/domain"
)

type CreateUploadInput struct {
	UserID int
	Title  string
}

type CreateUploadOutput struct {
	VideoID   string
	UploadURL string
}

// ManageVideoUseCase covers the user-facing video operations: upload
// initiation against the provider's direct-upload API, listing, and
// explicit deletion.
type ManageVideoUseCase struct {
	Videos domain.VideoRepository
	Media  domain.MediaService
	Assets domain.AssetStore
}

func (uc *ManageVideoUseCase) CreateUpload(ctx context.Context, input CreateUploadInput) (*CreateUploadOutput, error) {
	uploadID, uploadURL, err := uc.Media.CreateDirectUpload(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create direct upload: %w", err)
	}

	video := &domain.Video{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		Title:       input.Title,
		MuxUploadID: uploadID,
		MuxStatus:   domain.MuxStatusWaiting,
	}
	if err := uc.Videos.Save(ctx, video); err != nil {
		return nil, fmt.Errorf("failed to record video: %w", err)
	}

	log.Printf(" [x] Created upload session for video %s (upload %s)", video.ID, uploadID)
	return &CreateUploadOutput{VideoID: video.ID, UploadURL: uploadURL}, nil
}

func (uc *ManageVideoUseCase) ListVideos(ctx context.Context, userID int) ([]domain.Video, error) {
	return uc.Videos.FindByUserID(ctx, userID)
}

func (uc *ManageVideoUseCase) GetVideo(ctx context.Context, userID int, videoID string) (*domain.Video, error) {
	video, err := uc.Videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return video, nil
}

// DeleteVideo removes the provider asset and mirrored copies best-effort,
// then the record itself. Only the record delete can fail the call.
func (uc *ManageVideoUseCase) DeleteVideo(ctx context.Context, userID int, videoID string) error {
	video, err := uc.GetVideo(ctx, userID, videoID)
	if err != nil {
		return err
	}

	if uc.Media != nil && video.MuxAssetID != "" {
		bestEffort("delete provider asset", func() error {
			return uc.Media.DeleteAsset(ctx, video.MuxAssetID)
		})
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

	return uc.Videos.DeleteByID(ctx, video.ID)
}

// domain/interfaces.go
package domain

import "context"

type VideoRepository interface {
	Save(ctx context.Context, video *Video) error
	FindByID(ctx context.Context, id string) (*Video, error)
	FindByUploadID(ctx context.Context, uploadID string) (*Video, error)
	FindByAssetID(ctx context.Context, assetID string) (*Video, error)
	FindByUserID(ctx context.Context, userID int) ([]Video, error)
	UpdateAssetCreated(ctx context.Context, uploadID, assetID string, status MuxStatus) error
	UpdateAssetReady(ctx context.Context, uploadID string, update ReadyUpdate) error
	UpdateStatusByUploadID(ctx context.Context, uploadID string, status MuxStatus) error
	UpdateTrack(ctx context.Context, assetID, trackID, trackStatus string) error
	DeleteByID(ctx context.Context, id string) error
	DeleteByUploadID(ctx context.Context, uploadID string) error
}

// AssetStore mirrors externally hosted derived assets into owned storage.
// Implementations may be constructed per call or shared; they hold no
// required lifecycle state.
type AssetStore interface {
	CopyFromURL(ctx context.Context, sourceURL string) (StoredAsset, error)
	DeleteByKey(ctx context.Context, key string) error
}

// MediaService is the hosted transcoding provider's management API.
type MediaService interface {
	CreateDirectUpload(ctx context.Context) (uploadID, uploadURL string, err error)
	DeleteAsset(ctx context.Context, assetID string) error
}

type MessageQueueService interface {
	PublishStatusEvent(event VideoStatusEvent) error
	ConsumeStatusEvents(handler func(VideoStatusEvent)) error
}

type NotificationService interface {
	SendNotification(userID int, title, status, message string)
}

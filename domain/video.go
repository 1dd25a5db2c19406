// domain/video.go
package domain

import "time"

type MuxStatus string

const (
	MuxStatusWaiting   MuxStatus = "waiting"
	MuxStatusPreparing MuxStatus = "preparing"
	MuxStatusReady     MuxStatus = "ready"
	MuxStatusErrored   MuxStatus = "errored"
)

// Video is the durable record of one uploaded video. MuxUploadID is set at
// creation and never changes; MuxAssetID arrives with the first
// asset-created event from the transcoding provider.
type Video struct {
	ID             string    `json:"id"`
	UserID         int       `json:"user_id"`
	Title          string    `json:"title"`
	MuxUploadID    string    `json:"mux_upload_id"`
	MuxAssetID     string    `json:"mux_asset_id,omitempty"`
	MuxStatus      MuxStatus `json:"mux_status"`
	MuxPlaybackID  string    `json:"mux_playback_id,omitempty"`
	Duration       int64     `json:"duration"` // milliseconds
	ThumbnailKey   string    `json:"thumbnail_key,omitempty"`
	ThumbnailURL   string    `json:"thumbnail_url,omitempty"`
	PreviewKey     string    `json:"preview_key,omitempty"`
	PreviewURL     string    `json:"preview_url,omitempty"`
	MuxTrackID     string    `json:"mux_track_id,omitempty"`
	MuxTrackStatus string    `json:"mux_track_status,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StoredAsset is the (key, public URL) pair of one mirrored derived asset.
type StoredAsset struct {
	Key string
	URL string
}

// ReadyUpdate carries everything an asset-ready event writes into a record.
// Thumbnail and Preview are nil when the corresponding mirror attempt
// failed; the existing location columns are then left untouched.
type ReadyUpdate struct {
	AssetID    string
	Status     MuxStatus
	PlaybackID string
	Duration   int64
	Thumbnail  *StoredAsset
	Preview    *StoredAsset
}

// VideoStatusEvent is the JSON body published to the status event queue
// after a reconciliation mutation lands.
type VideoStatusEvent struct {
	Event    string `json:"event"`
	VideoID  string `json:"video_id"`
	UserID   int    `json:"user_id"`
	UploadID string `json:"upload_id"`
	AssetID  string `json:"asset_id,omitempty"`
	Status   string `json:"status,omitempty"`
}

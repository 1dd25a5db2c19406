// domain/event.go
package domain

import (
	"encoding/json"
	"math"
)

// Webhook event kinds consumed from the transcoding provider. Anything else
// is acknowledged and ignored.
const (
	EventAssetCreated = "video.asset.created"
	EventAssetReady   = "video.asset.ready"
	EventAssetErrored = "video.asset.errored"
	EventAssetDeleted = "video.asset.deleted"
	EventTrackReady   = "video.asset.track.ready"
)

// WebhookEnvelope is the outer shape of every provider notification. Data
// stays raw until the event kind is known.
type WebhookEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ParseEnvelope rejects bodies that are not structured data. The type field
// is checked separately, after the signature has been verified.
func ParseEnvelope(body []byte) (*WebhookEnvelope, error) {
	var env WebhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, ErrMalformedPayload
	}
	return &env, nil
}

type PlaybackID struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
}

type AssetCreatedEvent struct {
	UploadID string `json:"upload_id"`
	AssetID  string `json:"id"`
	Status   string `json:"status"`
}

func DecodeAssetCreated(data json.RawMessage) (*AssetCreatedEvent, error) {
	var ev AssetCreatedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, ErrMalformedPayload
	}
	switch {
	case ev.UploadID == "":
		return nil, MissingField("upload_id")
	case ev.AssetID == "":
		return nil, MissingField("id")
	case ev.Status == "":
		return nil, MissingField("status")
	}
	return &ev, nil
}

type AssetReadyEvent struct {
	UploadID    string       `json:"upload_id"`
	AssetID     string       `json:"id"`
	Status      string       `json:"status"`
	PlaybackIDs []PlaybackID `json:"playback_ids"`
	Duration    float64      `json:"duration"`
}

func DecodeAssetReady(data json.RawMessage) (*AssetReadyEvent, error) {
	var ev AssetReadyEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, ErrMalformedPayload
	}
	switch {
	case ev.UploadID == "":
		return nil, MissingField("upload_id")
	case ev.AssetID == "":
		return nil, MissingField("id")
	case ev.Status == "":
		return nil, MissingField("status")
	case len(ev.PlaybackIDs) == 0:
		return nil, MissingField("playback_ids")
	}
	return &ev, nil
}

// DurationMillis converts the provider's float seconds into whole
// milliseconds, never negative. A missing duration decodes to zero.
func (ev *AssetReadyEvent) DurationMillis() int64 {
	millis := int64(math.Round(ev.Duration * 1000))
	if millis < 0 {
		return 0
	}
	return millis
}

type AssetErroredEvent struct {
	UploadID string `json:"upload_id"`
	Status   string `json:"status"`
}

func DecodeAssetErrored(data json.RawMessage) (*AssetErroredEvent, error) {
	var ev AssetErroredEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, ErrMalformedPayload
	}
	switch {
	case ev.UploadID == "":
		return nil, MissingField("upload_id")
	case ev.Status == "":
		return nil, MissingField("status")
	}
	return &ev, nil
}

type AssetDeletedEvent struct {
	UploadID string `json:"upload_id"`
}

func DecodeAssetDeleted(data json.RawMessage) (*AssetDeletedEvent, error) {
	var ev AssetDeletedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, ErrMalformedPayload
	}
	if ev.UploadID == "" {
		return nil, MissingField("upload_id")
	}
	return &ev, nil
}

type TrackReadyEvent struct {
	AssetID string `json:"asset_id"`
	TrackID string `json:"id"`
	Status  string `json:"status"`
}

func DecodeTrackReady(data json.RawMessage) (*TrackReadyEvent, error) {
	var ev TrackReadyEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, ErrMalformedPayload
	}
	switch {
	case ev.AssetID == "":
		return nil, MissingField("asset_id")
	case ev.TrackID == "":
		return nil, MissingField("id")
	case ev.Status == "":
		return nil, MissingField("status")
	}
	return &ev, nil
}

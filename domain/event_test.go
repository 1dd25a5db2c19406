package domain

import (
	"errors"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"type":"video.asset.ready","data":{"id":"a"}}`))
	if err != nil {
		t.Fatalf("ParseEnvelope returned error: %v", err)
	}
	if env.Type != "video.asset.ready" {
		t.Fatalf("unexpected type %q", env.Type)
	}
}

func TestParseEnvelopeRejectsBadJSON(t *testing.T) {
	if _, err := ParseEnvelope([]byte(`{{`)); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestParseEnvelopeKeepsMissingType(t *testing.T) {
	// The receiver checks the type after signature verification.
	env, err := ParseEnvelope([]byte(`{"data":{}}`))
	if err != nil {
		t.Fatalf("ParseEnvelope returned error: %v", err)
	}
	if env.Type != "" {
		t.Fatalf("unexpected type %q", env.Type)
	}
}

func TestDecodeAssetReadyRequiredFields(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"missing upload_id", `{"id":"a","status":"ready","playback_ids":[{"id":"p"}]}`},
		{"missing asset id", `{"upload_id":"u","status":"ready","playback_ids":[{"id":"p"}]}`},
		{"missing status", `{"upload_id":"u","id":"a","playback_ids":[{"id":"p"}]}`},
		{"no playback ids", `{"upload_id":"u","id":"a","status":"ready","playback_ids":[]}`},
	}
	for _, tc := range cases {
		if _, err := DecodeAssetReady([]byte(tc.data)); !errors.Is(err, ErrMalformedPayload) {
			t.Fatalf("%s: expected ErrMalformedPayload, got %v", tc.name, err)
		}
	}
}

func TestDurationMillis(t *testing.T) {
	cases := []struct {
		seconds float64
		want    int64
	}{
		{12.5, 12500},
		{0, 0},
		{0.0004, 0},
		{0.0006, 1},
		{-3, 0},
	}
	for _, tc := range cases {
		ev := AssetReadyEvent{Duration: tc.seconds}
		if got := ev.DurationMillis(); got != tc.want {
			t.Fatalf("DurationMillis(%v) = %d, want %d", tc.seconds, got, tc.want)
		}
	}
}

func TestDecodeAssetDeletedRequiresUploadID(t *testing.T) {
	if _, err := DecodeAssetDeleted([]byte(`{}`)); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
	ev, err := DecodeAssetDeleted([]byte(`{"upload_id":"up_1"}`))
	if err != nil {
		t.Fatalf("DecodeAssetDeleted returned error: %v", err)
	}
	if ev.UploadID != "up_1" {
		t.Fatalf("unexpected upload id %q", ev.UploadID)
	}
}

func TestDecodeTrackReadyRequiredFields(t *testing.T) {
	if _, err := DecodeTrackReady([]byte(`{"id":"t","status":"ready"}`)); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload for missing asset_id, got %v", err)
	}
	ev, err := DecodeTrackReady([]byte(`{"asset_id":"a","id":"t","status":"ready"}`))
	if err != nil {
		t.Fatalf("DecodeTrackReady returned error: %v", err)
	}
	if ev.AssetID != "a" || ev.TrackID != "t" {
		t.Fatalf("unexpected decode: %+v", ev)
	}
}

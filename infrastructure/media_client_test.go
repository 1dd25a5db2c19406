package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMediaClientCreateDirectUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/video/v1/uploads" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "token-id" || pass != "token-secret" {
			t.Errorf("unexpected basic auth %q/%q", user, pass)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"id": "up_1", "url": "https://upload.example.com/up_1"},
		})
	}))
	defer server.Close()

	client := NewHTTPMediaClient(MediaClientOptions{
		BaseURL:     server.URL,
		TokenID:     "token-id",
		TokenSecret: "token-secret",
	})

	uploadID, uploadURL, err := client.CreateDirectUpload(context.Background())
	if err != nil {
		t.Fatalf("CreateDirectUpload returned error: %v", err)
	}
	if uploadID != "up_1" || uploadURL != "https://upload.example.com/up_1" {
		t.Fatalf("unexpected result %q / %q", uploadID, uploadURL)
	}
}

func TestMediaClientCreateDirectUploadRequiresCredentials(t *testing.T) {
	client := NewHTTPMediaClient(MediaClientOptions{})
	if _, _, err := client.CreateDirectUpload(context.Background()); err == nil {
		t.Fatalf("expected error without credentials")
	}
}

func TestMediaClientDeleteAssetTolerates404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPMediaClient(MediaClientOptions{BaseURL: server.URL, TokenID: "a", TokenSecret: "b"})
	if err := client.DeleteAsset(context.Background(), "asset_gone"); err != nil {
		t.Fatalf("expected 404 delete to succeed, got %v", err)
	}
}

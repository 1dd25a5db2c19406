// infrastructure/media_client.go
package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clipstack/video-hosting-service/domain"
)

type MediaClientOptions struct {
	BaseURL     string
	TokenID     string
	TokenSecret string
	HTTPClient  *http.Client
}

// HTTPMediaClient talks to the hosted transcoding provider's management
// API: direct-upload session creation and asset deletion.
type HTTPMediaClient struct {
	baseURL     string
	tokenID     string
	tokenSecret string
	httpClient  *http.Client
}

func NewHTTPMediaClient(opts MediaClientOptions) *HTTPMediaClient {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.mux.com"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTTPMediaClient{
		baseURL:     baseURL,
		tokenID:     opts.TokenID,
		tokenSecret: opts.TokenSecret,
		httpClient:  httpClient,
	}
}

func (c *HTTPMediaClient) CreateDirectUpload(ctx context.Context) (string, string, error) {
	if c.tokenID == "" || c.tokenSecret == "" {
		return "", "", fmt.Errorf("%w: media API credentials missing", domain.ErrNotConfigured)
	}

	payload := map[string]any{
		"cors_origin": "*",
		"new_asset_settings": map[string]any{
			"playback_policy": []string{"public"},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/video/v1/uploads", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.SetBasicAuth(c.tokenID, c.tokenSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("direct upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", "", fmt.Errorf("direct upload request returned %d: %s", resp.StatusCode, snippet)
	}

	var decoded struct {
		Data struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", "", fmt.Errorf("failed to decode direct upload response: %w", err)
	}
	if decoded.Data.ID == "" || decoded.Data.URL == "" {
		return "", "", fmt.Errorf("direct upload response missing id or url")
	}
	return decoded.Data.ID, decoded.Data.URL, nil
}

func (c *HTTPMediaClient) DeleteAsset(ctx context.Context, assetID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/video/v1/assets/"+assetID, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.tokenID, c.tokenSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("asset delete request failed: %w", err)
	}
	defer resp.Body.Close()

	// 404 means the provider already dropped the asset; treat as done.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("asset delete request returned %d", resp.StatusCode)
	}
	return nil
}

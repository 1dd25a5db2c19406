// infrastructure/storage_client.go
package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipstack/video-hosting-service/domain"
)

type StorageClientOptions struct {
	APIURL     string // write endpoint, e.g. https://storage.internal
	APIToken   string
	PublicURL  string // public base the stored objects are served from
	HTTPClient *http.Client
}

// HTTPStorageClient mirrors externally hosted derived assets into owned
// storage over the storage provider's HTTP API. Stateless; safe to share
// or construct per call.
type HTTPStorageClient struct {
	apiURL     string
	apiToken   string
	publicURL  string
	httpClient *http.Client
}

func NewHTTPStorageClient(opts StorageClientOptions) *HTTPStorageClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPStorageClient{
		apiURL:     strings.TrimRight(strings.TrimSpace(opts.APIURL), "/"),
		apiToken:   opts.APIToken,
		publicURL:  strings.TrimRight(strings.TrimSpace(opts.PublicURL), "/"),
		httpClient: httpClient,
	}
}

// CopyFromURL fetches the temporary source URL and streams the bytes into
// a new object. The source copy the provider hosts expires; the stored
// copy does not.
func (c *HTTPStorageClient) CopyFromURL(ctx context.Context, sourceURL string) (domain.StoredAsset, error) {
	if c.apiURL == "" {
		return domain.StoredAsset{}, fmt.Errorf("%w: storage API URL missing", domain.ErrNotConfigured)
	}

	fetchReq, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return domain.StoredAsset{}, err
	}
	fetchResp, err := c.httpClient.Do(fetchReq)
	if err != nil {
		return domain.StoredAsset{}, fmt.Errorf("failed to fetch source asset: %w", err)
	}
	defer fetchResp.Body.Close()
	if fetchResp.StatusCode != http.StatusOK {
		return domain.StoredAsset{}, fmt.Errorf("source asset fetch returned %d", fetchResp.StatusCode)
	}

	key := uuid.NewString() + path.Ext(sourceURL)
	storeReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.apiURL+"/objects/"+key, fetchResp.Body)
	if err != nil {
		return domain.StoredAsset{}, err
	}
	storeReq.Header.Set("Authorization", "Bearer "+c.apiToken)
	if contentType := fetchResp.Header.Get("Content-Type"); contentType != "" {
		storeReq.Header.Set("Content-Type", contentType)
	}
	storeReq.ContentLength = fetchResp.ContentLength

	storeResp, err := c.httpClient.Do(storeReq)
	if err != nil {
		return domain.StoredAsset{}, fmt.Errorf("failed to store asset copy: %w", err)
	}
	defer storeResp.Body.Close()
	if storeResp.StatusCode < 200 || storeResp.StatusCode >= 300 {
		return domain.StoredAsset{}, fmt.Errorf("asset store returned %d", storeResp.StatusCode)
	}

	return domain.StoredAsset{Key: key, URL: c.publicURL + "/" + key}, nil
}

func (c *HTTPStorageClient) DeleteByKey(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.apiURL+"/objects/"+key, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("asset delete request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("asset delete returned %d", resp.StatusCode)
	}
	return nil
}

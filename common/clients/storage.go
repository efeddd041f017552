package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/careline/engine/common/config"
)

// StorageClient deletes media objects from the external object store.
// Deletion is best-effort: a failed batch is logged by the caller and the
// orphaned objects are retried on a later sweep.
type StorageClient struct {
	http         *HTTPClient
	deleteURL    string
	publicPrefix string
	logger       Logger
}

// NewStorageClient creates a new object-storage client
func NewStorageClient(cfg config.StorageConfig, logger Logger) *StorageClient {
	return &StorageClient{
		http:         NewHTTPClient(&http.Client{Timeout: cfg.Timeout}, logger),
		deleteURL:    cfg.DeleteURL,
		publicPrefix: cfg.PublicPrefix,
		logger:       logger,
	}
}

// PathFromPublicURL derives the storage-relative path from a public media
// URL. Returns empty string when the URL does not carry the known prefix.
func (c *StorageClient) PathFromPublicURL(url string) string {
	if c.publicPrefix == "" || !strings.HasPrefix(url, c.publicPrefix) {
		return ""
	}
	return strings.TrimPrefix(url, c.publicPrefix)
}

// DeleteBatch removes the given storage-relative paths in one call
func (c *StorageClient) DeleteBatch(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	payload, err := json.Marshal(map[string][]string{"paths": paths})
	if err != nil {
		return fmt.Errorf("marshal storage delete batch: %w", err)
	}

	resp, err := c.http.PostJSON(ctx, c.deleteURL, payload, nil)
	if err != nil {
		return fmt.Errorf("delete storage batch: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		c.logger.Warn("storage gateway returned non-success status",
			"status", resp.StatusCode,
			"path_count", len(paths),
			"body", string(body))
		return fmt.Errorf("storage gateway status %d", resp.StatusCode)
	}

	c.logger.Info("storage batch deleted", "path_count", len(paths))

	return nil
}

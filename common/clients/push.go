package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/careline/engine/common/config"
)

// PushMessage is one push notification addressed to a device token
type PushMessage struct {
	To    string         `json:"to"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}

// PushClient delivers push notifications through the external push gateway.
// Delivery is best-effort: the gateway batches internally and no per-recipient
// receipt is consumed.
type PushClient struct {
	http   *HTTPClient
	url    string
	logger Logger
}

// NewPushClient creates a new push gateway client
func NewPushClient(cfg config.PushConfig, logger Logger) *PushClient {
	return &PushClient{
		http:   NewHTTPClient(&http.Client{Timeout: cfg.Timeout}, logger),
		url:    cfg.URL,
		logger: logger,
	}
}

// SendBatch posts a batch of push messages in a single gateway call
func (c *PushClient) SendBatch(ctx context.Context, messages []PushMessage) error {
	if len(messages) == 0 {
		return nil
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal push batch: %w", err)
	}

	resp, err := c.http.PostJSON(ctx, c.url, payload, nil)
	if err != nil {
		return fmt.Errorf("send push batch: %w", err)
	}
	defer resp.Body.Close()

	// The gateway reports per-ticket errors in the body; the engine only
	// logs the outcome, a bad token must not block the rest of the batch.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		c.logger.Warn("push gateway returned non-success status",
			"status", resp.StatusCode,
			"batch_size", len(messages),
			"body", string(body))
		return fmt.Errorf("push gateway status %d", resp.StatusCode)
	}

	c.logger.Info("push batch delivered to gateway",
		"batch_size", len(messages),
		"status", resp.StatusCode)

	return nil
}

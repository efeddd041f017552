package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/careline/engine/common/config"
)

// SMSMessage is one outbound SMS
type SMSMessage struct {
	To   string `json:"to"`
	From string `json:"from"`
	Text string `json:"text"`
}

// SMSClient delivers SMS messages through the external SMS gateway, one call
// per message. Requests are signed with an HMAC header derived from a
// timestamp, a random salt and the shared gateway secret.
type SMSClient struct {
	http   *HTTPClient
	url    string
	secret string
	sender string
	logger Logger

	// now is swappable in tests
	now func() time.Time
}

// NewSMSClient creates a new SMS gateway client
func NewSMSClient(cfg config.SMSConfig, logger Logger) *SMSClient {
	return &SMSClient{
		http:   NewHTTPClient(&http.Client{Timeout: cfg.Timeout}, logger),
		url:    cfg.URL,
		secret: cfg.Secret,
		sender: cfg.Sender,
		logger: logger,
		now:    time.Now,
	}
}

// Sender returns the configured sender phone number
func (c *SMSClient) Sender() string {
	return c.sender
}

// Send delivers a single SMS. The gateway response is logged but not
// inspected beyond its status code.
func (c *SMSClient) Send(ctx context.Context, msg SMSMessage) error {
	if msg.From == "" {
		msg.From = c.sender
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal sms: %w", err)
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	salt := uuid.NewString()

	headers := http.Header{}
	headers.Set("X-Timestamp", timestamp)
	headers.Set("X-Salt", salt)
	headers.Set("X-Signature", Sign(c.secret, timestamp, salt))

	resp, err := c.http.PostJSON(ctx, c.url, payload, headers)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		c.logger.Warn("sms gateway returned non-success status",
			"status", resp.StatusCode,
			"to", msg.To,
			"body", string(body))
		return fmt.Errorf("sms gateway status %d", resp.StatusCode)
	}

	c.logger.Info("sms delivered to gateway",
		"to", msg.To,
		"status", resp.StatusCode,
		"body", string(body))

	return nil
}

// Sign computes the gateway auth signature: hex HMAC-SHA256 of
// timestamp+salt under the shared secret
func Sign(secret, timestamp, salt string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(salt))
	return hex.EncodeToString(mac.Sum(nil))
}

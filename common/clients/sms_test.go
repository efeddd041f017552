package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careline/engine/common/config"
)

type testLogger struct{}

func (testLogger) Info(msg string, kv ...interface{})  {}
func (testLogger) Error(msg string, kv ...interface{}) {}
func (testLogger) Warn(msg string, kv ...interface{})  {}
func (testLogger) Debug(msg string, kv ...interface{}) {}

func TestSign(t *testing.T) {
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("1700000000"))
	mac.Write([]byte("salt-123"))
	want := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, Sign("secret", "1700000000", "salt-123"))
}

func TestSMSClient_SendSignsRequest(t *testing.T) {
	var gotMsg SMSMessage
	var gotTimestamp, gotSalt, gotSignature string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTimestamp = r.Header.Get("X-Timestamp")
		gotSalt = r.Header.Get("X-Salt")
		gotSignature = r.Header.Get("X-Signature")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotMsg))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"queued"}`))
	}))
	defer srv.Close()

	client := NewSMSClient(config.SMSConfig{
		URL:     srv.URL,
		Secret:  "shared-secret",
		Sender:  "+15550000",
		Timeout: 5 * time.Second,
	}, testLogger{})
	client.now = func() time.Time { return time.Unix(1700000000, 0) }

	err := client.Send(context.Background(), SMSMessage{To: "+15550100", Text: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "+15550100", gotMsg.To)
	assert.Equal(t, "+15550000", gotMsg.From, "sender must default from config")
	assert.Equal(t, "1700000000", gotTimestamp)
	assert.NotEmpty(t, gotSalt)
	assert.Equal(t, Sign("shared-secret", gotTimestamp, gotSalt), gotSignature)
}

func TestSMSClient_SendReportsGatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewSMSClient(config.SMSConfig{
		URL:     srv.URL,
		Secret:  "shared-secret",
		Sender:  "+15550000",
		Timeout: 5 * time.Second,
	}, testLogger{})

	err := client.Send(context.Background(), SMSMessage{To: "+15550100", Text: "hello"})
	assert.Error(t, err)
}

func TestStorageClient_PathFromPublicURL(t *testing.T) {
	client := NewStorageClient(config.StorageConfig{
		DeleteURL:    "http://storage.local/batch",
		PublicPrefix: "https://cdn.example.com/media/",
		Timeout:      5 * time.Second,
	}, testLogger{})

	assert.Equal(t, "proofs/a.jpg",
		client.PathFromPublicURL("https://cdn.example.com/media/proofs/a.jpg"))
	assert.Equal(t, "", client.PathFromPublicURL("https://elsewhere.example.com/x.jpg"))
}

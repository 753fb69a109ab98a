package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordGateway struct {
	users []string
	err   error
}

func (g *recordGateway) SendSingleNotification(_ context.Context, userID string, _ Notification) error {
	g.users = append(g.users, userID)
	return g.err
}

func TestMultiGatewayContinuesAfterFailure(t *testing.T) {
	failing := &recordGateway{err: errors.New("down")}
	ok := &recordGateway{}

	err := MultiGateway{failing, ok}.SendSingleNotification(context.Background(), "u2", Notification{Title: "New message"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.Equal(t, []string{"u2"}, failing.users)
	assert.Equal(t, []string{"u2"}, ok.users)
}

func TestMultiGatewayEmpty(t *testing.T) {
	assert.NoError(t, MultiGateway{}.SendSingleNotification(context.Background(), "u2", Notification{}))
	assert.NoError(t, NopGateway{}.SendSingleNotification(context.Background(), "u2", Notification{}))
}

func TestWebhookGatewayPostsNotification(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		_ = json.Unmarshal(body, &payload)
		received <- payload
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := NewWebhookGateway(srv.URL, time.Second)
	err := g.SendSingleNotification(context.Background(), "u2", Notification{
		Title:    "New message",
		Body:     "Alice sent you a message",
		SenderID: "u1",
	})
	require.NoError(t, err)

	payload := <-received
	assert.Equal(t, "u2", payload["userId"])
	n, ok := payload["notification"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "New message", n["title"])
	assert.Equal(t, "Alice sent you a message", n["body"])
	assert.Equal(t, "u1", n["senderId"])
}

func TestWebhookGatewayErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookGateway(srv.URL, time.Second).
		SendSingleNotification(context.Background(), "u2", Notification{Title: "New message"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWebhookGatewaySendsCode(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		_ = json.Unmarshal(body, &payload)
		received <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, NewWebhookGateway(srv.URL, time.Second).
		SendCode(context.Background(), "alice@example.com", "reset", "042917"))

	payload := <-received
	assert.Equal(t, "alice@example.com", payload["email"])
	assert.Equal(t, "reset", payload["purpose"])
	assert.Equal(t, "042917", payload["code"])
}

package service

import (
	"Ringside/internal/pkg/notify"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type onlineSet map[string]bool

func (o onlineSet) IsOnline(userID string) bool { return o[userID] }

type sentNotification struct {
	userID string
	n      notify.Notification
}

type fakeGateway struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (g *fakeGateway) SendSingleNotification(_ context.Context, userID string, n notify.Notification) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentNotification{userID: userID, n: n})
	return g.err
}

func (g *fakeGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

func TestNotifyService_OfflineRecipientIsNotified(t *testing.T) {
	gateway := &fakeGateway{}
	svc := NewNotifyService(onlineSet{}, staticDirectory{"alice": "Alice"}, gateway, 2, 8)
	defer svc.Close()

	svc.NotifyIfOffline(context.Background(), "bob", "alice", "conv-1")

	require.Eventually(t, func() bool { return gateway.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	gateway.mu.Lock()
	got := gateway.sent[0]
	gateway.mu.Unlock()
	assert.Equal(t, "bob", got.userID)
	assert.Equal(t, "New message", got.n.Title)
	assert.Equal(t, "Alice sent you a message", got.n.Body)
	assert.Equal(t, "alice", got.n.SenderID)
	assert.Equal(t, "conv-1", got.n.Data["chatroomId"])
}

func TestNotifyService_OnlineRecipientIsSkipped(t *testing.T) {
	gateway := &fakeGateway{}
	svc := NewNotifyService(onlineSet{"bob": true}, staticDirectory{"alice": "Alice"}, gateway, 1, 8)

	svc.NotifyIfOffline(context.Background(), "bob", "alice", "conv-1")
	svc.Close()

	assert.Zero(t, gateway.count())
}

func TestNotifyService_FailuresAreSwallowed(t *testing.T) {
	gateway := &fakeGateway{err: errors.New("push provider down")}
	svc := NewNotifyService(onlineSet{}, staticDirectory{"alice": "Alice"}, gateway, 1, 8)
	defer svc.Close()

	assert.NotPanics(t, func() {
		svc.NotifyIfOffline(context.Background(), "bob", "alice", "conv-1")
		svc.NotifyIfOffline(context.Background(), "bob", "ghost", "conv-2")
	})
	require.Eventually(t, func() bool { return gateway.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestNotifyService_CloseIsIdempotent(t *testing.T) {
	svc := NewNotifyService(onlineSet{}, staticDirectory{}, &fakeGateway{}, 1, 1)
	svc.Close()
	svc.Close()
	assert.NotPanics(t, func() {
		svc.NotifyIfOffline(context.Background(), "bob", "alice", "conv-1")
	})
}

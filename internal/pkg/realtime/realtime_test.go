package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	frames    chan []byte
	fail      bool
	block     chan struct{}
	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{frames: make(chan []byte, 64), closed: make(chan struct{})}
}

func (t *fakeTransport) WriteMessage(messageType int, data []byte) error {
	if t.block != nil {
		select {
		case <-t.block:
		case <-t.closed:
			return errors.New("use of closed connection")
		}
	}
	if t.fail {
		return errors.New("broken pipe")
	}
	if messageType == websocket.TextMessage {
		t.frames <- data
	}
	return nil
}

func (t *fakeTransport) SetWriteDeadline(time.Time) error { return nil }

func (t *fakeTransport) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return nil
}

func (t *fakeTransport) next(tb testing.TB) string {
	tb.Helper()
	select {
	case f := <-t.frames:
		return string(f)
	case <-time.After(2 * time.Second):
		tb.Fatal("timed out waiting for frame")
		return ""
	}
}

func (t *fakeTransport) none(tb testing.TB) {
	tb.Helper()
	select {
	case f := <-t.frames:
		tb.Fatalf("unexpected frame %s", f)
	case <-time.After(50 * time.Millisecond):
	}
}

type testEvent struct {
	Type string `json:"type"`
	Body string `json:"body"`
}

func (e testEvent) FrameType() string { return e.Type }

func TestConnection_BindUserOnce(t *testing.T) {
	c := NewConnection(newFakeTransport(), Options{})

	assert.Equal(t, "", c.UserID())
	assert.False(t, c.BindUser(""))
	assert.True(t, c.BindUser("alice"))
	assert.True(t, c.BindUser("alice"))
	assert.False(t, c.BindUser("bob"))
	assert.Equal(t, "alice", c.UserID())
}

func TestConnection_CloseRunsHooksOnce(t *testing.T) {
	tr := newFakeTransport()
	c := NewConnection(tr, Options{})
	calls := 0
	c.OnClose(func(*Connection) { calls++ })

	c.Close()
	c.Close()

	assert.Equal(t, 1, calls)
	assert.True(t, c.Closed())
	assert.ErrorIs(t, c.Send([]byte("x")), ErrConnectionClosed)
}

func TestConnection_SlowPeerIsDropped(t *testing.T) {
	tr := newFakeTransport()
	tr.block = make(chan struct{})
	c := NewConnection(tr, Options{SendBuffer: 1})
	c.Start()

	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = c.Send([]byte("frame"))
	}

	require.Error(t, err)
	assert.True(t, c.Closed())
}

func TestPresence_MultipleConnections(t *testing.T) {
	p := NewPresence()
	c1 := NewConnection(newFakeTransport(), Options{})
	c2 := NewConnection(newFakeTransport(), Options{})

	p.Connect("alice", c1)
	p.Connect("alice", c2)
	assert.True(t, p.IsOnline("alice"))
	assert.ElementsMatch(t, []string{c1.ID(), c2.ID()}, p.ConnectionsFor("alice"))

	p.Disconnect(c1.ID())
	assert.True(t, p.IsOnline("alice"))

	p.Disconnect(c2.ID())
	p.Disconnect(c2.ID())
	p.Disconnect("never-connected")
	assert.False(t, p.IsOnline("alice"))
	assert.Empty(t, p.ConnectionsFor("alice"))
	assert.Equal(t, 0, p.OnlineCount())
}

func TestPresence_ConcurrentConnectDisconnect(t *testing.T) {
	p := NewPresence()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := NewConnection(newFakeTransport(), Options{})
			p.Connect("alice", c)
			p.Disconnect(c.ID())
		}()
	}
	wg.Wait()

	assert.False(t, p.IsOnline("alice"))
}

func TestPresence_Clear(t *testing.T) {
	p := NewPresence()
	p.Connect("alice", NewConnection(newFakeTransport(), Options{}))
	p.Connect("bob", NewConnection(newFakeTransport(), Options{}))

	p.Clear()

	assert.False(t, p.IsOnline("alice"))
	assert.False(t, p.IsOnline("bob"))
	assert.Equal(t, 0, p.OnlineCount())
}

func TestRooms_JoinSwitchesRoom(t *testing.T) {
	r := NewRooms()
	c := NewConnection(newFakeTransport(), Options{})

	assert.True(t, r.Join(c, "conv-1"))
	assert.True(t, r.Join(c, "conv-2"))

	assert.Empty(t, r.MembersOf("conv-1"))
	assert.Equal(t, []string{c.ID()}, r.MembersOf("conv-2"))
	room, ok := r.RoomOf(c.ID())
	require.True(t, ok)
	assert.Equal(t, "conv-2", room)
}

func TestRooms_LeaveIsIdempotent(t *testing.T) {
	r := NewRooms()
	c1 := NewConnection(newFakeTransport(), Options{})
	c2 := NewConnection(newFakeTransport(), Options{})
	r.Join(c1, "conv-1")
	r.Join(c2, "conv-1")

	r.Leave(c1.ID())
	r.Leave(c1.ID())
	r.Leave("unknown")

	assert.Equal(t, []string{c2.ID()}, r.MembersOf("conv-1"))
	_, ok := r.RoomOf(c1.ID())
	assert.False(t, ok)
}

func TestHub_DisconnectCleansBothRegistries(t *testing.T) {
	h := NewHub(Options{})
	tr := newFakeTransport()
	c := h.Attach(tr)
	h.Presence.Connect("alice", c)
	h.Rooms.Join(c, "conv-1")

	c.Close()

	assert.False(t, h.Presence.IsOnline("alice"))
	assert.Empty(t, h.Rooms.MembersOf("conv-1"))
	assert.Equal(t, 0, h.ConnectionCount())
	assert.Equal(t, 0, h.Broadcaster.BroadcastToRoom("conv-1", testEvent{Type: "receiveMessage"}))
	tr.none(t)
}

func TestHub_ClosedConnectionIsNotRegistered(t *testing.T) {
	h := NewHub(Options{})
	c := h.Attach(newFakeTransport())
	c.Close()

	assert.False(t, h.Presence.Connect("alice", c))
	assert.False(t, h.Rooms.Join(c, "conv-1"))

	assert.False(t, h.Presence.IsOnline("alice"))
	assert.Empty(t, h.Rooms.MembersOf("conv-1"))
	_, ok := h.Rooms.RoomOf(c.ID())
	assert.False(t, ok)
	assert.Equal(t, 0, h.ConnectionCount())
}

func TestHub_CloseRacingRegistrationLeavesNoEntries(t *testing.T) {
	h := NewHub(Options{})
	for i := 0; i < 100; i++ {
		c := h.Attach(newFakeTransport())
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.Presence.Connect("alice", c)
			h.Rooms.Join(c, "conv-1")
		}()
		go func() {
			defer wg.Done()
			c.Close()
		}()
		wg.Wait()
	}

	assert.False(t, h.Presence.IsOnline("alice"))
	assert.Empty(t, h.Rooms.MembersOf("conv-1"))
	assert.Equal(t, 0, h.ConnectionCount())
}

func TestBroadcaster_WriteFailureDropsOnlyThatMember(t *testing.T) {
	h := NewHub(Options{})
	good := newFakeTransport()
	bad := newFakeTransport()
	bad.fail = true

	cGood := h.Attach(good)
	cBad := h.Attach(bad)
	h.Presence.Connect("alice", cGood)
	h.Presence.Connect("bob", cBad)
	h.Rooms.Join(cGood, "conv-1")
	h.Rooms.Join(cBad, "conv-1")

	h.Broadcaster.BroadcastToRoom("conv-1", testEvent{Type: "receiveMessage", Body: "hi"})

	assert.JSONEq(t, `{"type":"receiveMessage","body":"hi"}`, good.next(t))
	require.Eventually(t, func() bool {
		return !h.Presence.IsOnline("bob") && len(h.Rooms.MembersOf("conv-1")) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, cBad.Closed())
	assert.Equal(t, []string{cGood.ID()}, h.Rooms.MembersOf("conv-1"))
}

func TestBroadcaster_SendToUserReachesEveryConnection(t *testing.T) {
	h := NewHub(Options{})
	t1, t2, other := newFakeTransport(), newFakeTransport(), newFakeTransport()
	h.Presence.Connect("bob", h.Attach(t1))
	h.Presence.Connect("bob", h.Attach(t2))
	h.Presence.Connect("carol", h.Attach(other))

	n := h.Broadcaster.SendToUser("bob", testEvent{Type: "unreadCount"})

	assert.Equal(t, 2, n)
	assert.JSONEq(t, `{"type":"unreadCount","body":""}`, t1.next(t))
	assert.JSONEq(t, `{"type":"unreadCount","body":""}`, t2.next(t))
	other.none(t)
}

func TestBroadcaster_ClosedMemberIsCleanedUp(t *testing.T) {
	p := NewPresence()
	r := NewRooms()
	b := NewBroadcaster(p, r)
	c := NewConnection(newFakeTransport(), Options{})
	p.Connect("alice", c)
	r.Join(c, "conv-1")
	c.Close()

	assert.Equal(t, 0, b.BroadcastToRoom("conv-1", testEvent{Type: "receiveMessage"}))
	assert.False(t, p.IsOnline("alice"))
	assert.Empty(t, r.MembersOf("conv-1"))
}

func TestHub_Shutdown(t *testing.T) {
	h := NewHub(Options{})
	c1 := h.Attach(newFakeTransport())
	c2 := h.Attach(newFakeTransport())
	h.Presence.Connect("alice", c1)
	h.Rooms.Join(c2, "conv-1")

	h.Shutdown()

	assert.True(t, c1.Closed())
	assert.True(t, c2.Closed())
	assert.False(t, h.Presence.IsOnline("alice"))
	assert.Empty(t, h.Rooms.MembersOf("conv-1"))
	assert.Equal(t, 0, h.ConnectionCount())
}

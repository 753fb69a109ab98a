package realtime

import (
	"Ringside/internal/pkg/metrics"
	log "log/slog"
	"sync"
)

// Hub 持有进程内的在线表、房间表与广播器, 启动时构造, 退出时 Shutdown
type Hub struct {
	Presence    *Presence
	Rooms       *Rooms
	Broadcaster *Broadcaster

	opts  Options
	mu    sync.Mutex
	conns map[string]*Connection
}

func NewHub(opts Options) *Hub {
	presence := NewPresence()
	rooms := NewRooms()
	return &Hub{
		Presence:    presence,
		Rooms:       rooms,
		Broadcaster: NewBroadcaster(presence, rooms),
		opts:        opts.withDefaults(),
		conns:       make(map[string]*Connection),
	}
}

// Attach 包装传输为连接, 挂载断开清理并启动写协程
func (h *Hub) Attach(t Transport) *Connection {
	conn := NewConnection(t, h.opts)
	conn.OnClose(h.cleanup)

	h.mu.Lock()
	h.conns[conn.ID()] = conn
	h.mu.Unlock()
	metrics.OpenConnections.Inc()

	conn.Start()
	return conn
}

// cleanup 在连接关闭时执行一次, 只做内存表的幂等删除
func (h *Hub) cleanup(conn *Connection) {
	h.Presence.Disconnect(conn.ID())
	h.Rooms.Leave(conn.ID())

	h.mu.Lock()
	if _, ok := h.conns[conn.ID()]; ok {
		delete(h.conns, conn.ID())
		metrics.OpenConnections.Dec()
	}
	h.mu.Unlock()
}

// ConnectionCount 当前存活连接数
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Shutdown 关闭全部连接并清空在线表与房间表
func (h *Hub) Shutdown() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	h.Presence.Clear()
	h.Rooms.Clear()
	log.Info("Realtime hub shut down", "closed", len(conns))
}

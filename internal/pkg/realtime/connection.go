package realtime

import (
	"errors"
	log "log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("connection send buffer full")
)

// Transport 连接的底层传输, *websocket.Conn 满足该接口
type Transport interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Options 连接写侧参数
type Options struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PingPeriod   time.Duration
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	return o
}

// Connection 一条存活的客户端连接, 出站帧经缓冲队列由独立写协程发送
type Connection struct {
	id        string
	userID    atomic.Pointer[string]
	transport Transport
	opts      Options

	send chan []byte
	done chan struct{}

	closeOnce sync.Once
	hookMu    sync.Mutex
	onClose   []func(*Connection)
}

func NewConnection(t Transport, opts Options) *Connection {
	opts = opts.withDefaults()
	return &Connection{
		id:        uuid.NewString(),
		transport: t,
		opts:      opts,
		send:      make(chan []byte, opts.SendBuffer),
		done:      make(chan struct{}),
	}
}

func (c *Connection) ID() string { return c.id }

// UserID 返回绑定的用户, 未绑定时为空串
func (c *Connection) UserID() string {
	if p := c.userID.Load(); p != nil {
		return *p
	}
	return ""
}

// BindUser 身份只能绑定一次, 重复绑定同一用户视为成功
func (c *Connection) BindUser(userID string) bool {
	if userID == "" {
		return false
	}
	if c.userID.CompareAndSwap(nil, &userID) {
		return true
	}
	return c.UserID() == userID
}

// OnClose 注册关闭回调, 在 Close 中按注册顺序执行且只执行一次
func (c *Connection) OnClose(fn func(*Connection)) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.onClose = append(c.onClose, fn)
}

func (c *Connection) Done() <-chan struct{} { return c.done }

func (c *Connection) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Start 启动写协程
func (c *Connection) Start() {
	go c.writeLoop()
}

// Send 非阻塞入队, 队列已满说明对端过慢, 直接关闭连接
func (c *Connection) Send(payload []byte) error {
	if c.Closed() {
		return ErrConnectionClosed
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		log.Warn("WS send buffer full, dropping connection", "connID", c.id, "userID", c.UserID())
		c.Close()
		return ErrSendBufferFull
	}
}

// Close 关闭底层传输并触发清理回调
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.transport.Close()

		c.hookMu.Lock()
		hooks := c.onClose
		c.onClose = nil
		c.hookMu.Unlock()

		for _, fn := range hooks {
			fn(c)
		}
	})
}

func (c *Connection) writeLoop() {
	var tick <-chan time.Time
	if c.opts.PingPeriod > 0 {
		ticker := time.NewTicker(c.opts.PingPeriod)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case payload := <-c.send:
			if err := c.write(websocket.TextMessage, payload); err != nil {
				log.Warn("WS 推送失败", "connID", c.id, "userID", c.UserID(), "err", err)
				c.Close()
				return
			}
		case <-tick:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				log.Info("WS 心跳失败", "connID", c.id, "userID", c.UserID(), "err", err)
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Connection) write(messageType int, payload []byte) error {
	if err := c.transport.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
		return err
	}
	return c.transport.WriteMessage(messageType, payload)
}

package realtime

import (
	"Ringside/internal/pkg/metrics"
	log "log/slog"

	"github.com/goccy/go-json"
)

// Typed 出站帧可实现该接口以便按类型统计
type Typed interface {
	FrameType() string
}

// Broadcaster 将事件推送到房间或用户的全部连接, 不等待对端确认
type Broadcaster struct {
	presence *Presence
	rooms    *Rooms
}

func NewBroadcaster(presence *Presence, rooms *Rooms) *Broadcaster {
	return &Broadcaster{presence: presence, rooms: rooms}
}

// BroadcastToRoom 推送给房间内所有连接, 返回成功入队的连接数
func (b *Broadcaster) BroadcastToRoom(conversationID string, event any) int {
	return b.deliver(b.rooms.members(conversationID), event)
}

// SendToUser 推送给用户的所有连接, 返回成功入队的连接数
func (b *Broadcaster) SendToUser(userID string, event any) int {
	return b.deliver(b.presence.connections(userID), event)
}

// SendTo 直接回复单条连接
func (b *Broadcaster) SendTo(conn *Connection, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err = conn.Send(payload); err != nil {
		b.drop(conn, err)
		return err
	}
	metrics.FramesSent.WithLabelValues(frameType(event)).Inc()
	return nil
}

func (b *Broadcaster) deliver(conns []*Connection, event any) int {
	if len(conns) == 0 {
		return 0
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error("WS 事件序列化失败", "type", frameType(event), "err", err)
		return 0
	}

	delivered := 0
	for _, c := range conns {
		if err = c.Send(payload); err != nil {
			b.drop(c, err)
			continue
		}
		delivered++
	}
	metrics.FramesSent.WithLabelValues(frameType(event)).Add(float64(delivered))
	return delivered
}

// drop 写失败等同断开, 清理不依赖连接是否挂了关闭回调
func (b *Broadcaster) drop(c *Connection, cause error) {
	metrics.DeliveryFailures.Inc()
	log.Info("WS 连接投递失败, 按断开处理", "connID", c.ID(), "userID", c.UserID(), "err", cause)
	c.Close()
	b.presence.Disconnect(c.ID())
	b.rooms.Leave(c.ID())
}

func frameType(event any) string {
	if t, ok := event.(Typed); ok {
		return t.FrameType()
	}
	return "unknown"
}

package dto

// SysBoxDTO 站内通知返回对象
type SysBoxDTO struct {
	ID         string         `json:"id"`
	SenderID   string         `json:"sender_id"`
	SenderName string         `json:"sender_name"`
	AvatarURL  string         `json:"avatar_url"`
	Type       int8           `json:"type"` // 1-离线私信
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	Payload    map[string]any `json:"payload"`
	IsRead     bool           `json:"is_read"`
	CreatedAt  string         `json:"created_at"`
}

// SysBoxUnreadDTO 未读数返回
type SysBoxUnreadDTO struct {
	UnreadCount int64 `json:"unread_count"`
}

// SysBoxReadReq 标记单条通知已读
type SysBoxReadReq struct {
	MsgID string `json:"msgId" binding:"required"`
}

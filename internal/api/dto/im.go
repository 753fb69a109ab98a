package dto

import "time"

// MessageDTO 消息明细, 同时用于 ws 帧与 HTTP 响应
type MessageDTO struct {
	ID         string    `json:"id"`
	ChatroomID string    `json:"chatroomId"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"isRead"`
	Seq        uint64    `json:"seq"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ConversationDTO 会话及其一页消息
type ConversationDTO struct {
	ID            string        `json:"id"`
	User1ID       string        `json:"user1Id"`
	User2ID       string        `json:"user2Id"`
	CreatedAt     time.Time     `json:"createdAt"`
	Messages      []*MessageDTO `json:"messages"`
	TotalMessages int64         `json:"totalMessages"`
}

// MessagePageDTO 历史消息分页, 页内按 seq 正序, 第 1 页为最新一页
type MessagePageDTO struct {
	ConversationID string        `json:"conversation_id"`
	Messages       []*MessageDTO `json:"messages"`
	Total          int64         `json:"total"`
	Page           int           `json:"page"`
	PageSize       int           `json:"page_size"`
}

// ConversationItemDTO 会话列表项
type ConversationItemDTO struct {
	ConversationID string    `json:"conversation_id"`
	PeerID         string    `json:"peer_id"`
	PeerName       string    `json:"peer_name"`
	PeerAvatarURL  string    `json:"peer_avatar_url"`
	LastMsgContent string    `json:"last_msg_content"`
	LastSenderID   string    `json:"last_sender_id"`
	LastMessageAt  time.Time `json:"lastMessageAt"`
	UnreadCount    int64     `json:"unreadCount"`
}

// UnreadDTO 未读数
type UnreadDTO struct {
	UnreadCount int64 `json:"unreadCount"`
}

// MarkViewedReq 标记会话已读
type MarkViewedReq struct {
	ConversationID string `json:"conversation_id" binding:"required"`
}

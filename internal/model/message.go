package model

import "time"

// Message 会话消息, Seq 为会话内严格递增的序号
type Message struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ConversationID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_conv_seq,priority:1" json:"chatroomId"`
	Seq            uint64    `gorm:"not null;uniqueIndex:idx_conv_seq,priority:2" json:"seq"`
	SenderID       string    `gorm:"type:varchar(64);not null" json:"senderId"`
	ReceiverID     string    `gorm:"type:varchar(64);not null;index:idx_receiver_unread,priority:1" json:"receiverId"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	IsRead         bool      `gorm:"not null;default:false;index:idx_receiver_unread,priority:2" json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (Message) TableName() string { return "messages" }

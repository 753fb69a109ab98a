package model

import (
	"strconv"
	"strings"
	"time"
)

// Conversation 单聊会话, 每个无序用户对至多一条
type Conversation struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	User1ID        string    `gorm:"type:varchar(64);not null;index" json:"user1Id"`
	User2ID        string    `gorm:"type:varchar(64);not null;index" json:"user2Id"`
	PeerKey        string    `gorm:"type:varchar(140);not null;uniqueIndex" json:"-"` // len(min):min:max
	MaxMsgSeq      uint64    `gorm:"not null;default:0" json:"maxMsgSeq"`
	LastMsgContent string    `gorm:"type:varchar(255)" json:"lastMsgContent"`
	LastSenderID   string    `gorm:"type:varchar(64)" json:"lastSenderId"`
	LastMessageAt  time.Time `gorm:"index" json:"lastMessageAt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Conversation) TableName() string { return "conversations" }

// HasParticipant 判断用户是否为会话双方之一
func (c *Conversation) HasParticipant(userID string) bool {
	return userID != "" && (c.User1ID == userID || c.User2ID == userID)
}

// PeerOf 返回会话中另一方的用户 ID
func (c *Conversation) PeerOf(userID string) string {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// PeerKeyOf 生成与参数顺序无关的会话标识, 较小 ID 带长度前缀, 含 ":" 的 ID 也不会碰撞
func PeerKeyOf(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return strconv.Itoa(len(a)) + ":" + a + ":" + b
}

package dto

// 入站帧类型
const (
	FrameJoinRoom     = "joinRoom"
	FrameSendMessage  = "sendMessage"
	FrameViewMessages = "viewMessages"
)

// 出站帧类型
const (
	FrameLoadMessages   = "loadMessages"
	FrameMessageSent    = "messageSent"
	FrameReceiveMessage = "receiveMessage"
	FrameUnreadCount    = "unreadCount"
	FrameError          = "error"
)

// FrameHeader 用于识别入站帧类型
type FrameHeader struct {
	Type string `json:"type"`
}

type JoinRoomFrame struct {
	User1ID string `json:"user1Id" validate:"required,max=64"`
	User2ID string `json:"user2Id" validate:"required,max=64"`
}

type SendMessageFrame struct {
	ChatroomID string `json:"chatroomId" validate:"required,max=64"`
	SenderID   string `json:"senderId" validate:"required,max=64"`
	ReceiverID string `json:"receiverId" validate:"required,max=64"`
	Content    string `json:"content" validate:"max=4000"`
}

type ViewMessagesFrame struct {
	ChatroomID string `json:"chatroomId" validate:"required,max=64"`
	UserID     string `json:"userId" validate:"required,max=64"`
}

// LoadMessagesFrame joinRoom 的回复
type LoadMessagesFrame struct {
	Type         string           `json:"type"`
	Conversation *ConversationDTO `json:"conversation"`
	UnreadCount  int64            `json:"unreadCount"`
}

func (f *LoadMessagesFrame) FrameType() string { return f.Type }

// MessageFrame messageSent 与 receiveMessage 共用
type MessageFrame struct {
	Type    string      `json:"type"`
	Message *MessageDTO `json:"message"`
}

func (f *MessageFrame) FrameType() string { return f.Type }

// UnreadCountFrame 新消息时推给接收方, 也作为 viewMessages 的回复并附带该页消息
type UnreadCountFrame struct {
	Type          string        `json:"type"`
	ChatroomID    string        `json:"chatroomId,omitempty"`
	UnreadCount   int64         `json:"unreadCount"`
	Messages      []*MessageDTO `json:"messages,omitempty"`
	TotalMessages int64         `json:"totalMessages,omitempty"`
}

func (f *UnreadCountFrame) FrameType() string { return f.Type }

// ErrorFrame 单次操作失败的回复, 连接保持打开
type ErrorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (f *ErrorFrame) FrameType() string { return f.Type }

package handler

import (
	"Ringside/internal/api/dto"
	"Ringside/internal/pkg/realtime"
	"Ringside/internal/pkg/util"
	"Ringside/internal/service"
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const frameTimeout = 5 * time.Second

// 错误帧中的错误码
const (
	CodeMalformedFrame       = "MalformedFrame"
	CodeNotIdentified        = "NotIdentified"
	CodeNotParticipant       = "NotParticipant"
	CodeInvalidParticipants  = "InvalidParticipants"
	CodeEmptyContent         = "EmptyContent"
	CodeConversationNotFound = "ConversationNotFound"
	CodeStoreUnavailable     = "StoreUnavailable"
)

// wsSession 单条连接上的帧分发, 由读循环串行调用
type wsSession struct {
	ctx    context.Context
	conn   *realtime.Connection
	hub    *realtime.Hub
	im     service.IMService
	notify service.NotifyService
}

func newWsSession(ctx context.Context, conn *realtime.Connection, hub *realtime.Hub, im service.IMService, notify service.NotifyService) *wsSession {
	return &wsSession{
		ctx:    ctx,
		conn:   conn,
		hub:    hub,
		im:     im,
		notify: notify,
	}
}

// identify 绑定身份并登记在线, 已绑定其他用户时返回 ErrNotParticipant
func (s *wsSession) identify(userID string) error {
	if !s.conn.BindUser(userID) {
		return service.ErrNotParticipant
	}
	if !s.hub.Presence.Connect(userID, s.conn) {
		return realtime.ErrConnectionClosed
	}
	return nil
}

func (s *wsSession) handle(data []byte) {
	var header dto.FrameHeader
	if err := json.Unmarshal(data, &header); err != nil {
		s.drop("invalid json", err)
		return
	}

	var err error
	switch header.Type {
	case dto.FrameJoinRoom:
		var frame dto.JoinRoomFrame
		if err = s.decode(data, &frame); err != nil {
			s.drop(header.Type, err)
			return
		}
		err = s.joinRoom(&frame)
	case dto.FrameSendMessage:
		var frame dto.SendMessageFrame
		if err = s.decode(data, &frame); err != nil {
			s.drop(header.Type, err)
			return
		}
		err = s.sendMessage(&frame)
	case dto.FrameViewMessages:
		var frame dto.ViewMessagesFrame
		if err = s.decode(data, &frame); err != nil {
			s.drop(header.Type, err)
			return
		}
		err = s.viewMessages(&frame)
	default:
		s.drop(header.Type, errors.New("unknown frame type"))
		return
	}

	if errors.Is(err, realtime.ErrConnectionClosed) {
		log.InfoContext(s.ctx, "WS 连接已关闭, 丢弃帧结果", "type", header.Type)
		return
	}
	if err != nil {
		s.replyError(header.Type, err)
	}
}

func (s *wsSession) decode(data []byte, frame any) error {
	if err := json.Unmarshal(data, frame); err != nil {
		return err
	}
	return util.ValidateDTO(frame)
}

func (s *wsSession) drop(frameType string, err error) {
	log.WarnContext(s.ctx, "WS 帧无法解析, 已丢弃",
		"type", frameType,
		"err", errors.Join(service.ErrMalformedFrame, err),
	)
}

// joinRoom 绑定身份, 获取或创建会话并加入房间, 回复最新一页消息
func (s *wsSession) joinRoom(frame *dto.JoinRoomFrame) error {
	user1, user2 := strings.TrimSpace(frame.User1ID), strings.TrimSpace(frame.User2ID)
	if user1 == "" || user2 == "" {
		return service.ErrParamInvalid
	}
	if user1 == user2 {
		return service.ErrInvalidParticipants
	}
	if err := s.identify(user1); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(s.ctx, frameTimeout)
	defer cancel()

	conv, err := s.im.EnsureConversation(ctx, user1, user2)
	if err != nil {
		return err
	}
	if !s.hub.Rooms.Join(s.conn, conv.ID) {
		return realtime.ErrConnectionClosed
	}

	d, unread, err := s.im.LoadConversation(ctx, conv, user1)
	if err != nil {
		return err
	}
	return s.hub.Broadcaster.SendTo(s.conn, &dto.LoadMessagesFrame{
		Type:         dto.FrameLoadMessages,
		Conversation: d,
		UnreadCount:  unread,
	})
}

// sendMessage 持久化后回执发送方, 广播到房间并更新接收方未读数
func (s *wsSession) sendMessage(frame *dto.SendMessageFrame) error {
	userID := s.conn.UserID()
	if userID == "" {
		return service.ErrNotIdentified
	}
	if strings.TrimSpace(frame.SenderID) != userID {
		return service.ErrNotParticipant
	}

	ctx, cancel := context.WithTimeout(s.ctx, frameTimeout)
	defer cancel()

	msg, err := s.im.AppendMessage(ctx, frame.ChatroomID, userID, strings.TrimSpace(frame.ReceiverID), frame.Content)
	if err != nil {
		return err
	}

	_ = s.hub.Broadcaster.SendTo(s.conn, &dto.MessageFrame{Type: dto.FrameMessageSent, Message: msg})
	s.hub.Broadcaster.BroadcastToRoom(msg.ChatroomID, &dto.MessageFrame{Type: dto.FrameReceiveMessage, Message: msg})

	if s.hub.Presence.IsOnline(msg.ReceiverID) {
		unread, err := s.im.CountUnread(ctx, msg.ReceiverID, msg.ChatroomID)
		if err != nil {
			log.WarnContext(ctx, "统计接收方未读数失败", "receiverID", msg.ReceiverID, "err", err)
		} else {
			s.hub.Broadcaster.SendToUser(msg.ReceiverID, &dto.UnreadCountFrame{
				Type:        dto.FrameUnreadCount,
				ChatroomID:  msg.ChatroomID,
				UnreadCount: unread,
			})
		}
	}
	s.notify.NotifyIfOffline(s.ctx, msg.ReceiverID, msg.SenderID, msg.ChatroomID)
	return nil
}

// viewMessages 拉取最新一页并全部置为已读, 回复当前未读数
func (s *wsSession) viewMessages(frame *dto.ViewMessagesFrame) error {
	userID := s.conn.UserID()
	if userID == "" {
		return service.ErrNotIdentified
	}
	if strings.TrimSpace(frame.UserID) != userID {
		return service.ErrNotParticipant
	}

	ctx, cancel := context.WithTimeout(s.ctx, frameTimeout)
	defer cancel()

	page, err := s.im.ListMessages(ctx, userID, frame.ChatroomID, 1, 0)
	if err != nil {
		return err
	}
	if err = s.im.MarkViewed(ctx, userID, frame.ChatroomID); err != nil {
		return err
	}
	unread, err := s.im.CountUnread(ctx, userID, frame.ChatroomID)
	if err != nil {
		return err
	}
	return s.hub.Broadcaster.SendTo(s.conn, &dto.UnreadCountFrame{
		Type:          dto.FrameUnreadCount,
		ChatroomID:    frame.ChatroomID,
		UnreadCount:   unread,
		Messages:      page.Messages,
		TotalMessages: page.Total,
	})
}

func (s *wsSession) replyError(frameType string, err error) {
	code := errorCode(err)
	if code == CodeStoreUnavailable {
		log.ErrorContext(s.ctx, "WS 帧处理失败", "type", frameType, "err", err)
	} else {
		log.InfoContext(s.ctx, "WS 帧被拒绝", "type", frameType, "code", code)
	}

	message := err.Error()
	if code == CodeStoreUnavailable {
		message = service.ErrStoreUnavailable.Error()
	}
	_ = s.hub.Broadcaster.SendTo(s.conn, &dto.ErrorFrame{
		Type:    dto.FrameError,
		Code:    code,
		Message: message,
	})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrNotIdentified):
		return CodeNotIdentified
	case errors.Is(err, service.ErrNotParticipant):
		return CodeNotParticipant
	case errors.Is(err, service.ErrInvalidParticipants):
		return CodeInvalidParticipants
	case errors.Is(err, service.ErrEmptyContent):
		return CodeEmptyContent
	case errors.Is(err, service.ErrConversationNotFound):
		return CodeConversationNotFound
	case errors.Is(err, service.ErrParamInvalid):
		return CodeMalformedFrame
	default:
		return CodeStoreUnavailable
	}
}

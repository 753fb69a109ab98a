package service

import (
	"Ringside/internal/api/dto"
	"Ringside/internal/model"
	"Ringside/internal/pkg/metrics"
	"Ringside/internal/repository"
	"context"
	log "log/slog"
	"strings"
	"time"

	"github.com/jinzhu/copier"
)

const maxPageSize = 100

// IMService 消息存储的业务入口, 负责参与者校验、分页与错误归类
type IMService interface {
	EnsureConversation(ctx context.Context, userA, userB string) (*model.Conversation, error)
	AppendMessage(ctx context.Context, convID, senderID, receiverID, content string) (*dto.MessageDTO, error)
	ListMessages(ctx context.Context, userID, convID string, page, pageSize int) (*dto.MessagePageDTO, error)
	CountUnread(ctx context.Context, userID, convID string) (int64, error)
	MarkViewed(ctx context.Context, userID, convID string) error

	LoadConversation(ctx context.Context, conv *model.Conversation, userID string) (*dto.ConversationDTO, int64, error)
	GetConversationList(ctx context.Context, userID string) ([]*dto.ConversationItemDTO, error)
	GetTotalUnread(ctx context.Context, userID string) (int64, error)
}

type imServiceImpl struct {
	convRepo  repository.ConversationRepo
	directory DirectoryService
	pageSize  int
}

func NewIMService(convRepo repository.ConversationRepo, directory DirectoryService, pageSize int) IMService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &imServiceImpl{
		convRepo:  convRepo,
		directory: directory,
		pageSize:  pageSize,
	}
}

// EnsureConversation 获取或创建两人之间唯一的会话
func (s *imServiceImpl) EnsureConversation(ctx context.Context, userA, userB string) (*model.Conversation, error) {
	defer observe("ensure_conversation", time.Now())

	userA, userB = strings.TrimSpace(userA), strings.TrimSpace(userB)
	if userA == "" || userB == "" {
		return nil, ErrParamInvalid
	}
	if userA == userB {
		return nil, ErrInvalidParticipants
	}
	conv, err := s.convRepo.EnsureConversation(ctx, userA, userB)
	if err != nil {
		return nil, storeError(err)
	}
	return conv, nil
}

// AppendMessage 写入一条未读消息
func (s *imServiceImpl) AppendMessage(ctx context.Context, convID, senderID, receiverID, content string) (*dto.MessageDTO, error) {
	defer observe("append_message", time.Now())

	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	msg, err := s.convRepo.AppendMessage(ctx, convID, senderID, receiverID, content)
	if err != nil {
		return nil, storeError(err)
	}
	metrics.MessagesStored.Inc()
	return toMessageDTO(msg), nil
}

// ListMessages 分页拉取历史, 第 1 页为最新一页, 页内按 seq 正序
func (s *imServiceImpl) ListMessages(ctx context.Context, userID, convID string, page, pageSize int) (*dto.MessagePageDTO, error) {
	defer observe("list_messages", time.Now())

	if _, err := s.participantConversation(ctx, userID, convID); err != nil {
		return nil, err
	}

	page, pageSize = s.normalizePage(page, pageSize)
	list, total, err := s.convRepo.ListMessages(ctx, convID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, storeError(err)
	}

	return &dto.MessagePageDTO{
		ConversationID: convID,
		Messages:       toMessageDTOs(list),
		Total:          total,
		Page:           page,
		PageSize:       pageSize,
	}, nil
}

// CountUnread 会话内发给该用户的未读数
func (s *imServiceImpl) CountUnread(ctx context.Context, userID, convID string) (int64, error) {
	defer observe("count_unread", time.Now())

	count, err := s.convRepo.CountUnread(ctx, userID, convID)
	if err != nil {
		return 0, storeError(err)
	}
	return count, nil
}

// MarkViewed 将会话内发给该用户的全部未读消息置为已读
func (s *imServiceImpl) MarkViewed(ctx context.Context, userID, convID string) error {
	defer observe("mark_viewed", time.Now())

	if _, err := s.participantConversation(ctx, userID, convID); err != nil {
		return err
	}
	n, err := s.convRepo.MarkViewed(ctx, userID, convID)
	if err != nil {
		return storeError(err)
	}
	log.DebugContext(ctx, "messages marked viewed", "userID", userID, "conversationID", convID, "rows", n)
	return nil
}

// LoadConversation 组装 joinRoom 回复: 会话、最新一页消息与该用户未读数
func (s *imServiceImpl) LoadConversation(ctx context.Context, conv *model.Conversation, userID string) (*dto.ConversationDTO, int64, error) {
	page, err := s.ListMessages(ctx, userID, conv.ID, 1, s.pageSize)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.CountUnread(ctx, userID, conv.ID)
	if err != nil {
		return nil, 0, err
	}

	d := &dto.ConversationDTO{}
	if err = copier.Copy(d, conv); err != nil {
		return nil, 0, err
	}
	d.Messages = page.Messages
	d.TotalMessages = page.Total
	return d, unread, nil
}

// GetConversationList 会话列表并补全对方资料
func (s *imServiceImpl) GetConversationList(ctx context.Context, userID string) ([]*dto.ConversationItemDTO, error) {
	list, err := s.convRepo.GetUserConversations(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}

	res := make([]*dto.ConversationItemDTO, 0, len(list))
	for _, c := range list {
		item := &dto.ConversationItemDTO{
			ConversationID: c.ID,
			PeerID:         c.PeerOf(userID),
			LastMsgContent: c.LastMsgContent,
			LastSenderID:   c.LastSenderID,
			LastMessageAt:  c.LastMessageAt,
			UnreadCount:    c.UnreadCount,
		}
		if s.directory != nil {
			if peer, err := s.directory.GetUserSimpleInfo(ctx, item.PeerID); err == nil && peer != nil {
				item.PeerName = peer.Name
				item.PeerAvatarURL = peer.AvatarURL
			}
		}
		res = append(res, item)
	}
	return res, nil
}

// GetTotalUnread 全部会话的未读总数
func (s *imServiceImpl) GetTotalUnread(ctx context.Context, userID string) (int64, error) {
	total, err := s.convRepo.GetTotalUnreadCount(ctx, userID)
	if err != nil {
		return 0, storeError(err)
	}
	return total, nil
}

func (s *imServiceImpl) participantConversation(ctx context.Context, userID, convID string) (*model.Conversation, error) {
	conv, err := s.convRepo.GetConversation(ctx, convID)
	if err != nil {
		return nil, storeError(err)
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return conv, nil
}

func (s *imServiceImpl) normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func observe(op string, start time.Time) {
	metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func toMessageDTO(m *model.Message) *dto.MessageDTO {
	return &dto.MessageDTO{
		ID:         m.ID,
		ChatroomID: m.ConversationID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		IsRead:     m.IsRead,
		Seq:        m.Seq,
		CreatedAt:  m.CreatedAt,
	}
}

func toMessageDTOs(list []*model.Message) []*dto.MessageDTO {
	res := make([]*dto.MessageDTO, 0, len(list))
	for _, m := range list {
		res = append(res, toMessageDTO(m))
	}
	return res
}

package repository

import (
	"Ringside/internal/model"
	"Ringside/internal/pkg/database"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationSummary 会话列表项, UnreadCount 为当前用户在该会话的未读数
type ConversationSummary struct {
	model.Conversation `gorm:"embedded"`
	UnreadCount        int64 `gorm:"column:unread_count"`
}

type ConversationRepo interface {
	EnsureConversation(ctx context.Context, userA, userB string) (*model.Conversation, error)
	GetConversation(ctx context.Context, convID string) (*model.Conversation, error)
	GetConversationByPeerKey(ctx context.Context, peerKey string) (*model.Conversation, error)

	AppendMessage(ctx context.Context, convID, senderID, receiverID, content string) (*model.Message, error)
	ListMessages(ctx context.Context, convID string, offset, limit int) ([]*model.Message, int64, error)
	CountUnread(ctx context.Context, userID, convID string) (int64, error)
	MarkViewed(ctx context.Context, userID, convID string) (int64, error)

	GetUserConversations(ctx context.Context, userID string) ([]*ConversationSummary, error)
	GetTotalUnreadCount(ctx context.Context, userID string) (int64, error)
}

// 合并后的创建调用不随首个调用方取消
const ensureTimeout = 10 * time.Second

type conversationRepoImpl struct {
	db    *gorm.DB
	group singleflight.Group
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepoImpl{db: db}
}

// EnsureConversation 获取或创建单聊会话, 并发调用收敛到同一行
func (s *conversationRepoImpl) EnsureConversation(ctx context.Context, userA, userB string) (*model.Conversation, error) {
	peerKey := model.PeerKeyOf(userA, userB)

	v, err, _ := s.group.Do(peerKey, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ensureTimeout)
		defer cancel()

		conv, err := s.GetConversationByPeerKey(ctx, peerKey)
		if err != nil || conv != nil {
			return conv, err
		}

		newConv := &model.Conversation{
			ID:            uuid.NewString(),
			User1ID:       userA,
			User2ID:       userB,
			PeerKey:       peerKey,
			LastMessageAt: time.Now(),
		}
		// 唯一索引 peer_key 仲裁并发创建, 落败方回读胜者的行
		err = s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(newConv).Error
		if err != nil && !database.IsDuplicateError(err) {
			return nil, err
		}

		conv, err = s.GetConversationByPeerKey(ctx, peerKey)
		if err != nil {
			return nil, err
		}
		if conv == nil {
			return nil, ErrConversationNotFound
		}
		return conv, nil
	})
	if err != nil {
		return nil, err
	}

	// singleflight 共享结果, 返回副本避免调用方互相影响
	conv := *v.(*model.Conversation)
	return &conv, nil
}

// GetConversation 根据会话 ID 获取会话, 不存在时返回 nil
func (s *conversationRepoImpl) GetConversation(ctx context.Context, convID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).Where("id = ?", convID).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// GetConversationByPeerKey 根据会话标识获取会话, 不存在时返回 nil
func (s *conversationRepoImpl) GetConversationByPeerKey(ctx context.Context, peerKey string) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).Where("peer_key = ?", peerKey).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// AppendMessage 校验参与者后在会话行锁内分配 Seq 并写入消息
func (s *conversationRepoImpl) AppendMessage(ctx context.Context, convID, senderID, receiverID, content string) (*model.Message, error) {
	var msg *model.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv model.Conversation
		if err := tx.Where("id = ?", convID).First(&conv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConversationNotFound
			}
			return err
		}
		if senderID == receiverID || !conv.HasParticipant(senderID) || !conv.HasParticipant(receiverID) {
			return ErrNotParticipant
		}

		now := time.Now()
		preview := content
		if r := []rune(preview); len(r) > 255 {
			preview = string(r[:255])
		}

		// 原子递增序号, 同一会话的写入在此行上串行
		err := tx.Model(&model.Conversation{}).Where("id = ?", convID).
			Updates(map[string]interface{}{
				"max_msg_seq":      gorm.Expr("max_msg_seq + 1"),
				"last_msg_content": preview,
				"last_sender_id":   senderID,
				"last_message_at":  now,
			}).Error
		if err != nil {
			return err
		}

		var seq uint64
		if err = tx.Model(&model.Conversation{}).Select("max_msg_seq").Where("id = ?", convID).Scan(&seq).Error; err != nil {
			return err
		}

		msg = &model.Message{
			ID:             uuid.NewString(),
			ConversationID: convID,
			Seq:            seq,
			SenderID:       senderID,
			ReceiverID:     receiverID,
			Content:        content,
			IsRead:         false,
			CreatedAt:      now,
		}
		return tx.Create(msg).Error
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages 按 Seq 倒序取窗口, 返回前翻转为正序
func (s *conversationRepoImpl) ListMessages(ctx context.Context, convID string, offset, limit int) ([]*model.Message, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ?", convID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	messages := make([]*model.Message, 0, limit)
	if total == 0 || int64(offset) >= total {
		return messages, total, nil
	}

	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("seq DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, total, nil
}

// CountUnread 统计会话中发给该用户且未读的消息数
func (s *conversationRepoImpl) CountUnread(ctx context.Context, userID, convID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", convID, userID, false).
		Count(&count).Error
	return count, err
}

// MarkViewed 单条 UPDATE 将发给该用户的未读消息全部置为已读
func (s *conversationRepoImpl) MarkViewed(ctx context.Context, userID, convID string) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", convID, userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// GetUserConversations 用户参与的会话, 按最后消息时间倒序, 附带未读数
func (s *conversationRepoImpl) GetUserConversations(ctx context.Context, userID string) ([]*ConversationSummary, error) {
	var list []*ConversationSummary
	err := s.db.WithContext(ctx).Table("conversations c").
		Select("c.*, (SELECT COUNT(*) FROM messages m "+
			"WHERE m.conversation_id = c.id AND m.receiver_id = ? AND m.is_read = ?) AS unread_count", userID, false).
		Where("c.user1_id = ? OR c.user2_id = ?", userID, userID).
		Order("c.last_message_at DESC").
		Find(&list).Error
	return list, err
}

// GetTotalUnreadCount 计算全局未读数
func (s *conversationRepoImpl) GetTotalUnreadCount(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&total).Error
	return total, err
}

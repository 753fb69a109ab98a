package service

import (
	"Ringside/internal/api/dto"
	"Ringside/internal/pkg/mongo"
	"context"
	"errors"
	"time"

	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
)

type SysBoxService interface {
	GetNotificationList(ctx context.Context, userID string, page, pageSize int) ([]*dto.SysBoxDTO, error)
	GetUnreadCount(ctx context.Context, userID string) (*dto.SysBoxUnreadDTO, error)
	MarkRead(ctx context.Context, userID string, msgID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type sysBoxServiceImpl struct {
	sysBoxRepo mongo.SysBoxRepo
	directory  DirectoryService
}

func NewSysBoxService(sysBox mongo.SysBoxRepo, directory DirectoryService) SysBoxService {
	return &sysBoxServiceImpl{
		sysBoxRepo: sysBox,
		directory:  directory,
	}
}

// GetNotificationList 获取通知列表并补全发送者信息
func (s *sysBoxServiceImpl) GetNotificationList(ctx context.Context, userID string, page, pageSize int) ([]*dto.SysBoxDTO, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = 20
	}
	list, err := s.sysBoxRepo.GetNotificationList(ctx, userID, int64(pageSize), int64((page-1)*pageSize))
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SysBoxDTO, 0, len(list))
	for _, m := range list {
		d := &dto.SysBoxDTO{}
		_ = copier.Copy(d, m)
		d.ID = m.ID.Hex()
		d.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339)

		if m.SenderID != "" {
			if user, err := s.directory.GetUserSimpleInfo(ctx, m.SenderID); err == nil && user != nil {
				d.SenderName = user.Name
				d.AvatarURL = user.AvatarURL
			}
		} else {
			d.SenderName = "系统通知"
		}
		res = append(res, d)
	}
	return res, nil
}

func (s *sysBoxServiceImpl) GetUnreadCount(ctx context.Context, userID string) (*dto.SysBoxUnreadDTO, error) {
	count, err := s.sysBoxRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.SysBoxUnreadDTO{UnreadCount: count}, nil
}

// MarkRead 标记单条已读, 只能操作自己的通知
func (s *sysBoxServiceImpl) MarkRead(ctx context.Context, userID string, msgID string) error {
	objectID, err := primitive.ObjectIDFromHex(msgID)
	if err != nil {
		return ErrParamInvalid
	}

	notice, err := s.sysBoxRepo.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, mongoDB.ErrNoDocuments) {
			return ErrSysBoxNotFound
		}
		return err
	}
	if notice.ReceiverID != userID {
		return UnauthorizedError
	}
	if notice.IsRead {
		return nil
	}
	return s.sysBoxRepo.MarkAsRead(ctx, userID, msgID)
}

func (s *sysBoxServiceImpl) MarkAllRead(ctx context.Context, userID string) error {
	return s.sysBoxRepo.MarkAllAsRead(ctx, userID)
}

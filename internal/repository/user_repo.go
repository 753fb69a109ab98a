package repository

import (
	"Ringside/internal/model"
	"Ringside/internal/pkg/database"
	"context"
	"errors"

	"gorm.io/gorm"
)

type UserRepo interface {
	GetUserById(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserDetail(ctx context.Context, id string) (*model.UserDetail, error)
	CreateUser(ctx context.Context, user *model.User, detail *model.UserDetail) error
	UpdateAvatar(ctx context.Context, id string, avatarURL string) error
	MarkVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

type UserRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &UserRepoImpl{db: db}
}

func (s *UserRepoImpl) GetUserById(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	result := s.db.WithContext(ctx).
		Preload("UserDetail").
		Where("id = ? AND is_delete = ?", id, false).
		First(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return user, nil
}

func (s *UserRepoImpl) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	result := s.db.WithContext(ctx).
		Preload("UserDetail").
		Where("email = ? AND is_delete = ?", email, false).
		First(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return user, nil
}

// GetUserDetail 只读取展示所需的资料字段
func (s *UserRepoImpl) GetUserDetail(ctx context.Context, id string) (*model.UserDetail, error) {
	detail := &model.UserDetail{}
	result := s.db.WithContext(ctx).
		Select("user_id", "name", "avatar_url", "bio", "sport").
		Where("user_id = ?", id).
		First(detail)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return detail, nil
}

// CreateUser 同一事务写入账号与资料, 邮箱冲突返回 ErrDuplicate
func (s *UserRepoImpl) CreateUser(ctx context.Context, user *model.User, detail *model.UserDetail) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("UserDetail").Create(user).Error; err != nil {
			return err
		}
		detail.UserID = user.ID
		return tx.Create(detail).Error
	})
	if database.IsDuplicateError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *UserRepoImpl) UpdateAvatar(ctx context.Context, id string, avatarURL string) error {
	return s.db.WithContext(ctx).
		Model(&model.UserDetail{}).
		Where("user_id = ?", id).
		Update("avatar_url", avatarURL).Error
}

func (s *UserRepoImpl) MarkVerified(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("is_verified", true).Error
}

func (s *UserRepoImpl) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("password", passwordHash).Error
}

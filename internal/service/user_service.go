package service

import (
	"Ringside/internal/api/dto"
	"Ringside/internal/model"
	"Ringside/internal/pkg/consts"
	"Ringside/internal/pkg/redis"
	"Ringside/internal/pkg/security"
	"Ringside/internal/repository"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

const simpleInfoTTL = time.Hour

// DirectoryService 用户身份查询, 供消息与通知模块补全展示信息
type DirectoryService interface {
	FindUserDisplay(ctx context.Context, userID string) (*dto.UserDisplayDTO, error)
	GetUserSimpleInfo(ctx context.Context, userID string) (*dto.UserDTO, error)
}

// BlobStore 头像对象存储
type BlobStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	DeleteFile(ctx context.Context, objectName string) error
	GetPublicURL(objectName string) string
}

type UserService interface {
	DirectoryService
	Register(ctx context.Context, dto *dto.RegisterDTO) (string, error)
	Login(ctx context.Context, dto *dto.CredentialDTO) (string, error)
	Logout(ctx context.Context, token string) error
	GetUserInfo(ctx context.Context, id string) (*dto.UserDTO, error)
	UpdateAvatar(ctx context.Context, id string, image io.Reader) (string, error)
}

type UserServiceImpl struct {
	userRepo        repository.UserRepo
	cache           redis.Store
	blob            BlobStore
	requireVerified bool
}

// NewUserService requireVerified 为 true 时未通过邮箱验证码的账号不能登录
func NewUserService(userRepo repository.UserRepo, cache redis.Store, blob BlobStore, requireVerified bool) UserService {
	return &UserServiceImpl{
		userRepo:        userRepo,
		cache:           cache,
		blob:            blob,
		requireVerified: requireVerified,
	}
}

// Register 邮箱注册, 返回新用户 ID
func (s *UserServiceImpl) Register(ctx context.Context, regDTO *dto.RegisterDTO) (string, error) {
	email := strings.ToLower(strings.TrimSpace(regDTO.Email))
	exist, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if exist != nil {
		return "", ErrUserExist
	}

	passwordHash, err := security.HashPassword(regDTO.Password)
	if err != nil {
		return "", err
	}
	user := &model.User{
		ID:       uuid.NewString(),
		Email:    email,
		Password: passwordHash,
		Role:     consts.RoleUser,
	}
	detail := &model.UserDetail{}
	if err = copier.Copy(detail, regDTO); err != nil {
		return "", err
	}

	if err = s.userRepo.CreateUser(ctx, user, detail); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", ErrUserExist
		}
		return "", err
	}
	return user.ID, nil
}

func (s *UserServiceImpl) Login(ctx context.Context, credential *dto.CredentialDTO) (string, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(credential.Email)))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if user.IsBan {
		return "", ErrUserBan
	}
	if err = security.CheckPasswordHash(credential.Password, user.Password); err != nil {
		return "", ErrPasswordIncorrect
	}
	if s.requireVerified && !user.IsVerified {
		return "", ErrUserNotVerified
	}
	return security.GenerateToken(user.ID, []string{user.Role})
}

// Logout 将 Token 签名加入黑名单直至其自然过期
func (s *UserServiceImpl) Logout(ctx context.Context, token string) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return err
	}
	return s.cache.SetWithExpiration(ctx, consts.TokenBlacklistKey+signature, true, security.Expiration())
}

func (s *UserServiceImpl) GetUserInfo(ctx context.Context, id string) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetUserById(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	userDTO := &dto.UserDTO{}
	if err = copier.Copy(userDTO, &user.UserDetail); err != nil {
		return nil, err
	}
	userDTO.UserID = user.ID
	userDTO.Email = user.Email
	userDTO.AvatarURL = s.blob.GetPublicURL(user.UserDetail.AvatarURL)
	createdAt := user.CreatedAt
	userDTO.CreatedAt = &createdAt
	return userDTO, nil
}

// GetUserSimpleInfo 公开资料, 优先读缓存
func (s *UserServiceImpl) GetUserSimpleInfo(ctx context.Context, userID string) (*dto.UserDTO, error) {
	key := consts.UserSimpleInfoKey + userID
	value, err := s.cache.GetValue(ctx, key)
	if err != nil {
		log.WarnContext(ctx, "user cache read failed", "userID", userID, "err", err)
	}
	if value != "" {
		var userDTO dto.UserDTO
		if err = json.Unmarshal([]byte(value), &userDTO); err == nil {
			return &userDTO, nil
		}
	}

	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	userDTO := &dto.UserDTO{}
	if err = copier.Copy(userDTO, &user.UserDetail); err != nil {
		return nil, err
	}
	userDTO.UserID = user.ID
	userDTO.Email = user.Email
	userDTO.AvatarURL = s.blob.GetPublicURL(user.UserDetail.AvatarURL)

	jsonStr, err := json.Marshal(userDTO)
	if err != nil {
		return nil, err
	}
	if err = s.cache.SetWithExpiration(ctx, key, string(jsonStr), simpleInfoTTL); err != nil {
		log.WarnContext(ctx, "user cache write failed", "userID", userID, "err", err)
	}
	return userDTO, nil
}

// FindUserDisplay 通知所需的名称与邮箱
func (s *UserServiceImpl) FindUserDisplay(ctx context.Context, userID string) (*dto.UserDisplayDTO, error) {
	info, err := s.GetUserSimpleInfo(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.UserDisplayDTO{
		UserID: info.UserID,
		Name:   info.Name,
		Email:  info.Email,
	}, nil
}

// UpdateAvatar 裁剪为正方形 JPEG 后上传, 返回新头像地址
func (s *UserServiceImpl) UpdateAvatar(ctx context.Context, id string, image io.Reader) (string, error) {
	user, err := s.userRepo.GetUserById(ctx, id)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	src, err := imaging.Decode(image, imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrFileNotSupported
	}
	thumb := imaging.Fill(src, consts.AvatarSize, consts.AvatarSize, imaging.Center, imaging.Lanczos)
	buf := &bytes.Buffer{}
	if err = imaging.Encode(buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("%s%s/%s.jpg", consts.AvatarObjectPrefix, id, uuid.NewString())
	if _, err = s.blob.UploadFile(ctx, objectName, buf, int64(buf.Len()), "image/jpeg"); err != nil {
		return "", err
	}
	if err = s.userRepo.UpdateAvatar(ctx, id, objectName); err != nil {
		_ = s.blob.DeleteFile(ctx, objectName)
		return "", err
	}
	_ = s.cache.DeleteKey(ctx, consts.UserSimpleInfoKey+id)

	if old := user.UserDetail.AvatarURL; strings.HasPrefix(old, consts.AvatarObjectPrefix) {
		if err = s.blob.DeleteFile(ctx, old); err != nil {
			log.WarnContext(ctx, "old avatar cleanup failed", "object", old, "err", err)
		}
	}
	return s.blob.GetPublicURL(objectName), nil
}

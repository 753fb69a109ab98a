package service

import (
	"Ringside/internal/pkg/consts"
	"Ringside/internal/pkg/redis"
	"Ringside/internal/pkg/security"
	"Ringside/internal/repository"
	"context"
	"crypto/rand"
	"crypto/subtle"
	log "log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// 验证码用途
const (
	OtpPurposeRegister = "register"
	OtpPurposeReset    = "reset"
)

const otpDigits = 6

// CodeSender 将验证码投递到用户邮箱
type CodeSender interface {
	SendCode(ctx context.Context, email, purpose, code string) error
}

// OtpOptions 验证码有效期与频控
type OtpOptions struct {
	TTL            time.Duration
	ResendInterval time.Duration
	MaxAttempts    int
	ResetTokenTTL  time.Duration
}

type OtpService interface {
	// SendOtp 生成并发送验证码, 返回过期时间
	SendOtp(ctx context.Context, email, purpose string) (time.Time, error)
	// VerifyOtp 校验验证码; register 用途标记邮箱已验证, reset 用途返回一次性重置凭证
	VerifyOtp(ctx context.Context, email, purpose, code string) (string, error)
	ResetPassword(ctx context.Context, email, resetToken, newPassword string) error
}

type OtpServiceImpl struct {
	userRepo repository.UserRepo
	cache    redis.Store
	sender   CodeSender
	opts     OtpOptions
}

func NewOtpService(userRepo repository.UserRepo, cache redis.Store, sender CodeSender, opts OtpOptions) OtpService {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}
	if opts.ResendInterval <= 0 {
		opts.ResendInterval = time.Minute
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = 15 * time.Minute
	}
	return &OtpServiceImpl{
		userRepo: userRepo,
		cache:    cache,
		sender:   sender,
		opts:     opts,
	}
}

func (s *OtpServiceImpl) SendOtp(ctx context.Context, email, purpose string) (time.Time, error) {
	email = normalizeEmail(email)
	if !validPurpose(purpose) {
		return time.Time{}, ErrParamInvalid
	}
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return time.Time{}, err
	}
	if user == nil {
		return time.Time{}, ErrUserNotFound
	}
	if purpose == OtpPurposeRegister && user.IsVerified {
		return time.Time{}, ErrUserVerified
	}

	suffix := purpose + ":" + email
	cooling, err := s.cache.GetValue(ctx, consts.OtpCooldownKey+suffix)
	if err != nil {
		return time.Time{}, err
	}
	if cooling != "" {
		return time.Time{}, ErrOtpTooFrequent
	}

	code, err := generateCode(otpDigits)
	if err != nil {
		return time.Time{}, err
	}
	if err = s.cache.SetWithExpiration(ctx, consts.OtpCodeKey+suffix, code, s.opts.TTL); err != nil {
		return time.Time{}, err
	}
	_ = s.cache.DeleteKey(ctx, consts.OtpAttemptsKey+suffix)
	if err = s.cache.SetWithExpiration(ctx, consts.OtpCooldownKey+suffix, true, s.opts.ResendInterval); err != nil {
		return time.Time{}, err
	}

	if err = s.sender.SendCode(ctx, email, purpose, code); err != nil {
		_ = s.cache.DeleteKey(ctx, consts.OtpCodeKey+suffix)
		_ = s.cache.DeleteKey(ctx, consts.OtpCooldownKey+suffix)
		return time.Time{}, err
	}
	return time.Now().Add(s.opts.TTL), nil
}

func (s *OtpServiceImpl) VerifyOtp(ctx context.Context, email, purpose, code string) (string, error) {
	email = normalizeEmail(email)
	if !validPurpose(purpose) {
		return "", ErrParamInvalid
	}
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	suffix := purpose + ":" + email
	stored, err := s.cache.GetValue(ctx, consts.OtpCodeKey+suffix)
	if err != nil {
		return "", err
	}
	if stored == "" {
		return "", ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(code))) != 1 {
		s.countFailure(ctx, suffix)
		return "", ErrCodeIncorrect
	}
	_ = s.cache.DeleteKey(ctx, consts.OtpCodeKey+suffix)
	_ = s.cache.DeleteKey(ctx, consts.OtpAttemptsKey+suffix)

	if purpose == OtpPurposeRegister {
		if err = s.userRepo.MarkVerified(ctx, user.ID); err != nil {
			return "", err
		}
		return "", nil
	}

	resetToken := uuid.NewString()
	if err = s.cache.SetWithExpiration(ctx, consts.OtpResetKey+email, resetToken, s.opts.ResetTokenTTL); err != nil {
		return "", err
	}
	return resetToken, nil
}

// countFailure 连续输错达到上限后作废当前验证码
func (s *OtpServiceImpl) countFailure(ctx context.Context, suffix string) {
	raw, _ := s.cache.GetValue(ctx, consts.OtpAttemptsKey+suffix)
	attempts, _ := strconv.Atoi(raw)
	attempts++
	if attempts >= s.opts.MaxAttempts {
		log.WarnContext(ctx, "验证码输错次数过多, 已作废", "key", suffix)
		_ = s.cache.DeleteKey(ctx, consts.OtpCodeKey+suffix)
		_ = s.cache.DeleteKey(ctx, consts.OtpAttemptsKey+suffix)
		return
	}
	_ = s.cache.SetWithExpiration(ctx, consts.OtpAttemptsKey+suffix, strconv.Itoa(attempts), s.opts.TTL)
}

func (s *OtpServiceImpl) ResetPassword(ctx context.Context, email, resetToken, newPassword string) error {
	email = normalizeEmail(email)
	stored, err := s.cache.GetValue(ctx, consts.OtpResetKey+email)
	if err != nil {
		return err
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(resetToken)) != 1 {
		return ErrResetTokenInvalid
	}
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err = s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	// 能收到重置验证码即证明邮箱可用
	if !user.IsVerified {
		_ = s.userRepo.MarkVerified(ctx, user.ID)
	}
	return s.cache.DeleteKey(ctx, consts.OtpResetKey+email)
}

func validPurpose(purpose string) bool {
	return purpose == OtpPurposeRegister || purpose == OtpPurposeReset
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateCode(length int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	code := n.String()
	return strings.Repeat("0", length-len(code)) + code, nil
}

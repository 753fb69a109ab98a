package service

import (
	"Ringside/internal/repository"
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid         = errors.New("参数错误")
	ErrUserNotFound         = errors.New("用户不存在")
	ErrUserBan              = errors.New("用户已被封禁")
	ErrUserExist            = errors.New("邮箱已注册")
	ErrPasswordIncorrect    = errors.New("密码错误")
	ErrUserNotVerified      = errors.New("邮箱尚未验证")
	ErrUserVerified         = errors.New("邮箱已验证")
	ErrCodeIncorrect        = errors.New("验证码错误")
	ErrCodeExpired          = errors.New("验证码已过期或不存在")
	ErrOtpTooFrequent       = errors.New("验证码发送过于频繁")
	ErrResetTokenInvalid    = errors.New("重置凭证无效或已过期")
	ErrFileNotSupported     = errors.New("不支持的文件类型")
	ErrSysBoxNotFound       = errors.New("系统通知不存在")
	ErrMalformedFrame       = errors.New("无法解析的消息帧")
	ErrNotParticipant       = repository.ErrNotParticipant
	ErrConversationNotFound = repository.ErrConversationNotFound
	ErrInvalidParticipants  = errors.New("不能与自己建立会话")
	ErrEmptyContent         = errors.New("消息内容不能为空")
	ErrNotIdentified        = errors.New("连接尚未绑定用户")
	ErrStoreUnavailable     = errors.New("消息存储暂不可用")
	ErrGatewayFailure       = errors.New("通知网关发送失败")
	UnauthorizedError       = errors.New("权限不足")
	UnExpectedError         = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:         BadRequest,
	ErrUserNotFound:         NotFound,
	ErrUserBan:              Unauthorized,
	ErrUserExist:            BadRequest,
	ErrPasswordIncorrect:    Unauthorized,
	ErrUserNotVerified:      Unauthorized,
	ErrUserVerified:         BadRequest,
	ErrCodeIncorrect:        BadRequest,
	ErrCodeExpired:          BadRequest,
	ErrOtpTooFrequent:       BadRequest,
	ErrResetTokenInvalid:    Unauthorized,
	ErrFileNotSupported:     BadRequest,
	ErrSysBoxNotFound:       NotFound,
	ErrMalformedFrame:       BadRequest,
	ErrNotParticipant:       Forbidden,
	ErrConversationNotFound: NotFound,
	ErrInvalidParticipants:  BadRequest,
	ErrEmptyContent:         BadRequest,
	ErrNotIdentified:        Unauthorized,
	ErrStoreUnavailable:     InternalServerError,
	ErrGatewayFailure:       InternalServerError,
	UnauthorizedError:       Unauthorized,
	UnExpectedError:         InternalServerError,
}

// storeError 保留业务哨兵错误, 其余存储错误归为 ErrStoreUnavailable
func storeError(err error) error {
	if err == nil {
		return nil
	}
	for sentinel := range ErrorMap {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return &unavailableError{cause: err}
}

type unavailableError struct {
	cause error
}

func (e *unavailableError) Error() string { return ErrStoreUnavailable.Error() + ": " + e.cause.Error() }

func (e *unavailableError) Is(target error) bool { return target == ErrStoreUnavailable }

func (e *unavailableError) Unwrap() error { return e.cause }

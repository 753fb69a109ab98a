package notify

import (
	"context"
	"errors"
	log "log/slog"
)

// Notification 推送给离线用户的一条通知
type Notification struct {
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	SenderID string         `json:"senderId"`
	Data     map[string]any `json:"data,omitempty"`
}

// Gateway 通知投递通道
type Gateway interface {
	SendSingleNotification(ctx context.Context, userID string, n Notification) error
}

// MultiGateway 依次投递到全部通道, 单个失败不影响其余
type MultiGateway []Gateway

func (m MultiGateway) SendSingleNotification(ctx context.Context, userID string, n Notification) error {
	var errs []error
	for _, g := range m {
		if err := g.SendSingleNotification(ctx, userID, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopGateway 未启用任何通道时使用
type NopGateway struct{}

func (NopGateway) SendSingleNotification(context.Context, string, Notification) error { return nil }

// LogCodeSender 未配置邮件中继时将验证码写入日志, 仅用于开发环境
type LogCodeSender struct{}

func (LogCodeSender) SendCode(ctx context.Context, email, purpose, code string) error {
	log.WarnContext(ctx, "未配置邮件中继, 验证码仅写入日志", "email", email, "purpose", purpose, "code", code)
	return nil
}

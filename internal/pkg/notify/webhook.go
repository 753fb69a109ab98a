package notify

import (
	"Ringside/internal/pkg/logger"
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// WebhookGateway 以 HTTP POST 转发通知, 用于邮件或第三方推送中继
type WebhookGateway struct {
	client *resty.Client
	url    string
}

func NewWebhookGateway(url string, timeout time.Duration) *WebhookGateway {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &WebhookGateway{
		client: logger.AttachResty(client),
		url:    url,
	}
}

func (g *WebhookGateway) SendSingleNotification(ctx context.Context, userID string, n Notification) error {
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"userId":       userID,
			"notification": n,
		}).
		Post(g.url)
	if err != nil {
		return errors.Wrap(err, "webhook gateway")
	}
	if resp.IsError() {
		return errors.Errorf("webhook gateway: unexpected status %d", resp.StatusCode())
	}
	return nil
}

// SendCode 通过同一中继发送邮箱验证码
func (g *WebhookGateway) SendCode(ctx context.Context, email, purpose, code string) error {
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"email":   email,
			"purpose": purpose,
			"code":    code,
		}).
		Post(g.url)
	if err != nil {
		return errors.Wrap(err, "webhook code relay")
	}
	if resp.IsError() {
		return errors.Errorf("webhook code relay: unexpected status %d", resp.StatusCode())
	}
	return nil
}

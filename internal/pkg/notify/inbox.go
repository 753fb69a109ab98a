package notify

import (
	"Ringside/internal/pkg/consts"
	"Ringside/internal/pkg/mongo"
	"context"
	"time"

	"github.com/pkg/errors"
)

// InboxGateway 写入站内通知收件箱
type InboxGateway struct {
	repo mongo.SysBoxRepo
}

func NewInboxGateway(repo mongo.SysBoxRepo) *InboxGateway {
	return &InboxGateway{repo: repo}
}

func (g *InboxGateway) SendSingleNotification(ctx context.Context, userID string, n Notification) error {
	msg := &mongo.SysBoxModel{
		ReceiverID: userID,
		SenderID:   n.SenderID,
		Type:       consts.SysBoxTypeOfflineMessage,
		Title:      n.Title,
		Content:    n.Body,
		Payload:    n.Data,
		CreatedAt:  time.Now(),
	}
	if chatroomID, ok := n.Data["chatroomId"].(string); ok {
		msg.TargetID = chatroomID
	}
	return errors.Wrap(g.repo.CreateNotification(ctx, msg), "inbox gateway")
}

package job

import (
	"Ringside/internal/pkg/mongo"
	"context"
	log "log/slog"
	"time"
)

// NotificationCleanupJob 清理超过保留期的已读站内通知
type NotificationCleanupJob struct {
	sysBoxRepo mongo.SysBoxRepo
	retention  time.Duration
}

func NewNotificationCleanupJob(sysBoxRepo mongo.SysBoxRepo, retentionDays int) *NotificationCleanupJob {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &NotificationCleanupJob{
		sysBoxRepo: sysBoxRepo,
		retention:  time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (s *NotificationCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	log.Info("start notification cleanup job")

	before := time.Now().Add(-s.retention)
	count, err := s.sysBoxRepo.DeleteReadBefore(ctx, before)
	if err != nil {
		log.Error("failed to purge read notifications", "before", before, "err", err)
		return
	}
	if count > 0 {
		log.Info("notification cleanup job finished", "cleaned_count", count)
	}
}

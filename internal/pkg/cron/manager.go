package cron

import (
	"Ringside/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine                 *cron.Cron
	notificationCleanupJob *job.NotificationCleanupJob
}

func NewCronManager(notificationCleanupJob *job.NotificationCleanupJob) *Manager {
	return &Manager{
		engine:                 cron.New(cron.WithSeconds()),
		notificationCleanupJob: notificationCleanupJob,
	}
}

// Start 注册定时任务并启动调度, 未配置收件箱时不注册清理任务
func (s *Manager) Start() error {
	if s.notificationCleanupJob != nil {
		if _, err := s.engine.AddJob("@daily", s.notificationCleanupJob); err != nil {
			return err
		}
	}
	log.Info("Cron 定时任务引擎启动", "jobs", len(s.engine.Entries()))
	s.engine.Start()
	return nil
}

// Stop 停止调度并等待运行中的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}

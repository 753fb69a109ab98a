package service

import (
	"Ringside/internal/pkg/metrics"
	"Ringside/internal/pkg/notify"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"sync"
	"time"
)

const (
	notifyTitle   = "New message"
	notifyTimeout = 5 * time.Second
)

// PresenceChecker 判断用户当前是否在线
type PresenceChecker interface {
	IsOnline(userID string) bool
}

// NotifyService 收件人离线时经通知网关补发提醒, 异步执行且不向调用方返回错误
type NotifyService interface {
	NotifyIfOffline(ctx context.Context, recipientID, senderID, chatroomID string)
	Close()
}

type notifyJob struct {
	recipientID string
	senderID    string
	chatroomID  string
}

type notifyServiceImpl struct {
	presence  PresenceChecker
	directory DirectoryService
	gateway   notify.Gateway
	jobChan   chan notifyJob
	wg        sync.WaitGroup
	stopChan  chan struct{}
	closeOnce sync.Once
}

// NewNotifyService 初始化服务并启动投递工作池
func NewNotifyService(presence PresenceChecker, directory DirectoryService, gateway notify.Gateway, workers, queueSize int) NotifyService {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 1024
	}
	s := &notifyServiceImpl{
		presence:  presence,
		directory: directory,
		gateway:   gateway,
		jobChan:   make(chan notifyJob, queueSize),
		stopChan:  make(chan struct{}),
	}

	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.deliveryWorker()
	}
	return s
}

// NotifyIfOffline 收件人在线时直接返回, 队列已满时丢弃
func (s *notifyServiceImpl) NotifyIfOffline(ctx context.Context, recipientID, senderID, chatroomID string) {
	if s.presence.IsOnline(recipientID) {
		metrics.Notifications.WithLabelValues("online").Inc()
		return
	}
	select {
	case <-s.stopChan:
		return
	default:
	}
	select {
	case s.jobChan <- notifyJob{recipientID: recipientID, senderID: senderID, chatroomID: chatroomID}:
	default:
		metrics.Notifications.WithLabelValues("dropped").Inc()
		log.WarnContext(ctx, "notification queue full, dropped", "recipientID", recipientID, "senderID", senderID)
	}
}

func (s *notifyServiceImpl) Close() {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
		log.Info("NotifyService shut down gracefully")
	})
}

func (s *notifyServiceImpl) deliveryWorker() {
	defer s.wg.Done()
	for {
		select {
		case job := <-s.jobChan:
			s.deliver(job)
		case <-s.stopChan:
			return
		}
	}
}

func (s *notifyServiceImpl) deliver(job notifyJob) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	sender, err := s.directory.FindUserDisplay(ctx, job.senderID)
	if err != nil || sender == nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		log.WarnContext(ctx, "notification sender lookup failed", "senderID", job.senderID, "err", err)
		return
	}

	n := notify.Notification{
		Title:    notifyTitle,
		Body:     fmt.Sprintf("%s sent you a message", sender.Name),
		SenderID: job.senderID,
		Data: map[string]any{
			"chatroomId": job.chatroomID,
			"senderName": sender.Name,
		},
	}
	if err = s.gateway.SendSingleNotification(ctx, job.recipientID, n); err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		log.ErrorContext(ctx, "notification delivery failed",
			"recipientID", job.recipientID,
			"err", errors.Join(ErrGatewayFailure, err),
		)
		return
	}
	metrics.Notifications.WithLabelValues("sent").Inc()
}

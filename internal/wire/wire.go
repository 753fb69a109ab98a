package wire

import (
	"Ringside/internal/api"
	"Ringside/internal/api/config"
	"Ringside/internal/api/handler"
	"Ringside/internal/job"
	"Ringside/internal/pkg/cron"
	"Ringside/internal/pkg/minio"
	"Ringside/internal/pkg/mongo"
	"Ringside/internal/pkg/notify"
	"Ringside/internal/pkg/realtime"
	"Ringside/internal/pkg/redis"
	"Ringside/internal/repository"
	"Ringside/internal/service"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router        *gin.Engine
	DB            *gorm.DB
	Hub           *realtime.Hub
	NotifyService service.NotifyService
	CronMgr       *cron.Manager
}

// Infra 已初始化的外部连接, Mongo 与 Kafka 可为空
type Infra struct {
	DB       *gorm.DB
	Mongo    *mongoDB.Database
	Producer sarama.SyncProducer
	Cache    redis.Store
	Blob     service.BlobStore
}

func BuildApplication(infra Infra, cfg *config.Config) (*ApplicationContainer, error) {
	hub := realtime.NewHub(realtime.Options{
		SendBuffer:   cfg.IM.SendBuffer,
		WriteTimeout: time.Duration(cfg.IM.WriteTimeout) * time.Second,
		PingPeriod:   time.Duration(cfg.IM.PingPeriod) * time.Second,
	})

	cache := infra.Cache
	if cache == nil {
		cache = redis.Default()
	}
	blob := infra.Blob
	if blob == nil {
		blob = minio.Store{}
	}

	userRepo := repository.NewUserRepo(infra.DB)
	convRepo := repository.NewConversationRepo(infra.DB)

	userService := service.NewUserService(userRepo, cache, blob, cfg.OTP.RequireVerified)
	otpService := service.NewOtpService(userRepo, cache, buildCodeSender(cfg.Notification.Webhook), service.OtpOptions{
		TTL:            time.Duration(cfg.OTP.TTL) * time.Second,
		ResendInterval: time.Duration(cfg.OTP.ResendInterval) * time.Second,
		MaxAttempts:    cfg.OTP.MaxAttempts,
		ResetTokenTTL:  time.Duration(cfg.OTP.ResetTokenTTL) * time.Second,
	})
	imService := service.NewIMService(convRepo, userService, cfg.IM.PageSize)

	var sysBoxRepo mongo.SysBoxRepo
	if infra.Mongo != nil {
		sysBoxRepo = mongo.NewSysBoxRepo(infra.Mongo)
	}
	gateway := buildGateway(cfg.Notification, sysBoxRepo, infra.Producer)
	notifyService := service.NewNotifyService(hub.Presence, userService, gateway,
		cfg.Notification.Workers, cfg.Notification.QueueSize)

	handlers := &api.HandlersGroup{
		UserHandler: handler.NewUserHandler(userService, otpService),
		IMHandler:   handler.NewIMHandler(imService),
		WSHandler: handler.NewWsHandler(hub, imService, notifyService, handler.WsOptions{
			RequireToken:   cfg.IM.RequireToken,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			ReadLimit:      cfg.IM.ReadLimit,
			PongWait:       2 * time.Duration(cfg.IM.PingPeriod) * time.Second,
		}),
	}

	var cleanupJob *job.NotificationCleanupJob
	if sysBoxRepo != nil {
		handlers.SysBoxHandler = handler.NewSysBoxHandler(service.NewSysBoxService(sysBoxRepo, userService))
		cleanupJob = job.NewNotificationCleanupJob(sysBoxRepo, cfg.Notification.RetentionDays)
	}

	router := api.SetupRouter(handlers, cache, cfg.Server.AllowedOrigins)

	return &ApplicationContainer{
		Router:        router,
		DB:            infra.DB,
		Hub:           hub,
		NotifyService: notifyService,
		CronMgr:       cron.NewCronManager(cleanupJob),
	}, nil
}

// buildGateway 按配置组合通知通道
func buildGateway(cfg config.NotificationConfig, sysBoxRepo mongo.SysBoxRepo, producer sarama.SyncProducer) notify.Gateway {
	var gateways notify.MultiGateway
	if cfg.Inbox.Enable && sysBoxRepo != nil {
		gateways = append(gateways, notify.NewInboxGateway(sysBoxRepo))
	}
	if cfg.Kafka.Enable && producer != nil {
		gateways = append(gateways, notify.NewKafkaGateway(producer, cfg.Kafka.Topic))
	}
	if cfg.Webhook.Enable && cfg.Webhook.URL != "" {
		gateways = append(gateways, notify.NewWebhookGateway(cfg.Webhook.URL, time.Duration(cfg.Webhook.Timeout)*time.Second))
	}
	if len(gateways) == 0 {
		return notify.NopGateway{}
	}
	return gateways
}

// buildCodeSender 验证码复用通知 webhook 中继, 未启用时仅记录日志
func buildCodeSender(cfg config.WebhookGatewayConfig) service.CodeSender {
	if cfg.Enable && cfg.URL != "" {
		return notify.NewWebhookGateway(cfg.URL, time.Duration(cfg.Timeout)*time.Second)
	}
	return notify.LogCodeSender{}
}

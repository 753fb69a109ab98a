package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OnlineUsers 至少持有一条连接的用户数
	OnlineUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ringside_online_users",
		Help: "Number of users holding at least one live websocket connection",
	})

	// OpenConnections 当前存活的 websocket 连接数
	OpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ringside_ws_connections",
		Help: "Number of live websocket connections",
	})

	FramesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ringside_ws_frames_sent_total",
		Help: "Outbound frames queued for delivery, by frame type",
	}, []string{"type"})

	DeliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ringside_ws_delivery_failures_total",
		Help: "Connections dropped because an outbound frame could not be delivered",
	})

	MessagesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ringside_messages_stored_total",
		Help: "Messages appended to the store",
	})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ringside_notifications_total",
		Help: "Offline notification attempts, by result",
	}, []string{"result"})

	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ringside_store_latency_seconds",
		Help:    "Latency of message store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
)

// Register 在 gin 上暴露 /metrics
func Register(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

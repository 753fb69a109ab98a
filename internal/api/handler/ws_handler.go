package handler

import (
	"Ringside/internal/api/middleware"
	"Ringside/internal/pkg/logger"
	"Ringside/internal/pkg/realtime"
	"Ringside/internal/pkg/response"
	"Ringside/internal/pkg/security"
	"Ringside/internal/service"
	"context"
	log "log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WsOptions 读侧参数, 写侧参数由 realtime.Hub 持有
type WsOptions struct {
	RequireToken   bool
	AllowedOrigins []string
	ReadLimit      int64
	PongWait       time.Duration
}

type WsHandler struct {
	hub           *realtime.Hub
	imService     service.IMService
	notifyService service.NotifyService
	opts          WsOptions
	upgrader      websocket.Upgrader
}

func NewWsHandler(hub *realtime.Hub, im service.IMService, notify service.NotifyService, opts WsOptions) *WsHandler {
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = 64 * 1024
	}
	if opts.PongWait <= 0 {
		opts.PongWait = 60 * time.Second
	}
	return &WsHandler{
		hub:           hub,
		imService:     im,
		notifyService: notify,
		opts:          opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(opts.AllowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

// Connect 升级为 websocket, 携带有效 token 时连接直接进入已识别状态
func (s *WsHandler) Connect(c *gin.Context) {
	var userID string
	if token := c.Query("token"); token != "" {
		claims, err := security.ValidateToken(token)
		if err != nil {
			log.WarnContext(c.Request.Context(), "WS 鉴权失败", "err", err)
			response.Error(c, service.UnauthorizedError)
			return
		}
		userID = claims.UserID
	} else if s.opts.RequireToken {
		response.Error(c, service.UnauthorizedError)
		return
	}

	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "WS 协议升级失败", "err", err)
		return
	}

	conn := s.hub.Attach(ws)
	defer conn.Close()

	ctx := logger.WithTraceID(context.WithoutCancel(c.Request.Context()), conn.ID())
	session := newWsSession(ctx, conn, s.hub, s.imService, s.notifyService)
	if userID != "" {
		if err = session.identify(userID); err != nil {
			log.WarnContext(ctx, "WS 身份登记失败", "userID", userID, "err", err)
			return
		}
	}
	log.InfoContext(ctx, "用户 WS 连接已建立", "userID", userID)

	ws.SetReadLimit(s.opts.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})

	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WarnContext(ctx, "WS 读取异常", "err", err)
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		session.handle(data)
	}
	log.InfoContext(ctx, "用户 WS 连接已断开", "userID", conn.UserID())
}

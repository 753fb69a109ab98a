package api

import (
	"Ringside/internal/api/middleware"
	"Ringside/internal/pkg/logger"
	"Ringside/internal/pkg/metrics"
	"Ringside/internal/pkg/redis"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, blacklist redis.Store, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware(allowedOrigins))
	logger.SetupGin(r)
	metrics.Register(r)

	auth := middleware.AuthMiddleware(blacklist)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		{
			userGroup.POST("/login", group.UserHandler.Login)
			userGroup.POST("/register", group.UserHandler.Register)
			userGroup.POST("/otp/send", group.UserHandler.SendOtp)
			userGroup.POST("/otp/verify", group.UserHandler.VerifyOtp)
			userGroup.POST("/password/reset", group.UserHandler.ResetPassword)
			userGroup.GET("/:user_id/simple", group.UserHandler.GetUserSimpleInfo)

			authGroup := userGroup.Group("")
			authGroup.Use(auth)
			{
				authGroup.POST("/logout", group.UserHandler.Logout)
				authGroup.GET("/info", group.UserHandler.GetUserInfo)
				authGroup.POST("/avatar", group.UserHandler.UploadAvatar)
			}
		}

		imGroup := apiGroup.Group("/im")
		{
			imGroup.GET("/ws", group.WSHandler.Connect)
			authGroup := imGroup.Group("")
			authGroup.Use(auth)
			{
				authGroup.GET("/list", group.IMHandler.GetConversationList)
				authGroup.GET("/history", group.IMHandler.GetChatHistory)
				authGroup.GET("/unread", group.IMHandler.GetTotalUnread)
				authGroup.POST("/read", group.IMHandler.MarkAsRead)
			}
		}

		if group.SysBoxHandler != nil {
			sysbox := apiGroup.Group("/sysbox")
			sysbox.Use(auth)
			{
				sysbox.GET("/list", group.SysBoxHandler.GetNotificationList)
				sysbox.GET("/unread", group.SysBoxHandler.GetUnreadCount)
				sysbox.POST("/read", group.SysBoxHandler.MarkRead)
				sysbox.POST("/read/all", group.SysBoxHandler.MarkAllRead)
			}
		}
	}

	return r
}

package handler

import (
	"Ringside/internal/api/dto"
	"Ringside/internal/pkg/response"
	"Ringside/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type IMHandler struct {
	imService service.IMService
}

func NewIMHandler(imService service.IMService) *IMHandler {
	return &IMHandler{imService: imService}
}

// GetConversationList 获取会话列表
func (s *IMHandler) GetConversationList(c *gin.Context) {
	res, err := s.imService.GetConversationList(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetChatHistory 分页获取历史消息, page=1 为最新一页
func (s *IMHandler) GetChatHistory(c *gin.Context) {
	convID := c.Query("conversation_id")
	if convID == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	res, err := s.imService.ListMessages(c.Request.Context(), c.GetString("user_id"), convID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetTotalUnread 全部会话未读总数
func (s *IMHandler) GetTotalUnread(c *gin.Context) {
	total, err := s.imService.GetTotalUnread(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.UnreadDTO{UnreadCount: total})
}

// MarkAsRead 会话全部标记已读
func (s *IMHandler) MarkAsRead(c *gin.Context) {
	var req dto.MarkViewedReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := s.imService.MarkViewed(c.Request.Context(), c.GetString("user_id"), req.ConversationID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

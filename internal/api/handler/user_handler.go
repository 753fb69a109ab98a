package handler

import (
	"Ringside/internal/api/dto"
	"Ringside/internal/pkg/consts"
	"Ringside/internal/pkg/response"
	"Ringside/internal/service"
	"io"
	log "log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxAvatarBytes = 5 << 20

type UserHandler struct {
	userSvc service.UserService
	otpSvc  service.OtpService
}

func NewUserHandler(userSvc service.UserService, otpSvc service.OtpService) *UserHandler {
	return &UserHandler{userSvc: userSvc, otpSvc: otpSvc}
}

func (s *UserHandler) Register(c *gin.Context) {
	var registerDTO dto.RegisterDTO
	if err := c.ShouldBindJSON(&registerDTO); err != nil {
		response.Error(c, err)
		return
	}
	ctx := c.Request.Context()
	userID, err := s.userSvc.Register(ctx, &registerDTO)
	if err != nil {
		response.Error(c, err)
		return
	}

	// 验证码发送失败不影响注册, 客户端可重新发送
	data := map[string]any{"user_id": userID}
	if expiry, err := s.otpSvc.SendOtp(ctx, registerDTO.Email, service.OtpPurposeRegister); err != nil {
		log.WarnContext(ctx, "注册验证码发送失败", "userID", userID, "err", err)
	} else {
		data["otp_expiry"] = expiry
	}
	response.Success(c, data)
}

// SendOtp 发送或重发注册/重置密码验证码
func (s *UserHandler) SendOtp(c *gin.Context) {
	var req dto.OtpSendDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	expiry, err := s.otpSvc.SendOtp(c.Request.Context(), req.Email, req.Purpose)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]any{
		"otp_expiry": expiry,
	})
}

// VerifyOtp 重置用途返回 reset_token
func (s *UserHandler) VerifyOtp(c *gin.Context) {
	var req dto.OtpVerifyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	resetToken, err := s.otpSvc.VerifyOtp(c.Request.Context(), req.Email, req.Purpose, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	if resetToken == "" {
		response.Success(c, nil)
		return
	}
	response.Success(c, map[string]string{
		"reset_token": resetToken,
	})
}

func (s *UserHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := s.otpSvc.ResetPassword(c.Request.Context(), req.Email, req.ResetToken, req.Password); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) Login(c *gin.Context) {
	var loginDTO dto.CredentialDTO
	if err := c.ShouldBindJSON(&loginDTO); err != nil {
		response.Error(c, err)
		return
	}
	token, err := s.userSvc.Login(c.Request.Context(), &loginDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]string{
		"token": token,
	})
}

func (s *UserHandler) Logout(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if err := s.userSvc.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) GetUserInfo(c *gin.Context) {
	userDTO, err := s.userSvc.GetUserInfo(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, userDTO)
}

// GetUserSimpleInfo 他人公开资料, 不返回邮箱
func (s *UserHandler) GetUserSimpleInfo(c *gin.Context) {
	userDTO, err := s.userSvc.GetUserSimpleInfo(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	public := *userDTO
	public.Email = ""
	response.Success(c, &public)
}

// UploadAvatar 上传头像, 仅接受图片
func (s *UserHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil || file == nil || file.Size > maxAvatarBytes {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer func() {
		_ = reader.Close()
	}()

	head := make([]byte, 512)
	n, err := io.ReadFull(reader, head)
	if err != nil && n == 0 {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	if !strings.HasPrefix(http.DetectContentType(head[:n]), consts.MimePrefixImage) {
		response.Error(c, service.ErrFileNotSupported)
		return
	}
	if _, err = reader.Seek(0, io.SeekStart); err != nil {
		response.Error(c, err)
		return
	}

	url, err := s.userSvc.UpdateAvatar(c.Request.Context(), c.GetString("user_id"), reader)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]string{
		"avatar_url": url,
	})
}

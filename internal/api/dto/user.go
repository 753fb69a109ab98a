package dto

import "time"

// RegisterDTO 注册
type RegisterDTO struct {
	Email    string  `json:"email" binding:"required,email,max=128"`
	Password string  `json:"password" binding:"required,min=6,max=64"`
	Name     string  `json:"name" binding:"required,min=1,max=50"`
	Sport    *string `json:"sport" binding:"omitempty,max=50"`
}

// CredentialDTO 登录凭据
type CredentialDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserDTO 用户资料
type UserDTO struct {
	UserID    string     `json:"user_id"`
	Email     string     `json:"email,omitempty"`
	Name      string     `json:"name"`
	AvatarURL string     `json:"avatar_url"`
	Bio       *string    `json:"bio,omitempty"`
	Sport     *string    `json:"sport,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// UserDisplayDTO 通知等场景需要的最小展示身份
type UserDisplayDTO struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// OtpSendDTO 发送邮箱验证码, purpose 为 register 或 reset
type OtpSendDTO struct {
	Email   string `json:"email" binding:"required,email"`
	Purpose string `json:"purpose" binding:"required,oneof=register reset"`
}

// OtpVerifyDTO 校验邮箱验证码
type OtpVerifyDTO struct {
	Email   string `json:"email" binding:"required,email"`
	Purpose string `json:"purpose" binding:"required,oneof=register reset"`
	Code    string `json:"code" binding:"required,len=6,numeric"`
}

// ResetPasswordDTO 凭重置凭证设置新密码
type ResetPasswordDTO struct {
	Email      string `json:"email" binding:"required,email"`
	ResetToken string `json:"reset_token" binding:"required"`
	Password   string `json:"password" binding:"required,min=6,max=64"`
}

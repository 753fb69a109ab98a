package consts

const (
	UserSimpleInfoKey = "user:simple:info:"
	TokenBlacklistKey = "token:blacklist:"

	// 以下键后接 purpose:email
	OtpCodeKey     = "otp:code:"
	OtpCooldownKey = "otp:cooldown:"
	OtpAttemptsKey = "otp:attempts:"
	OtpResetKey    = "otp:reset:token:"
)

package consts

const (
	MimePrefixImage = "image"
)

const (
	AvatarObjectPrefix = "avatar/"
	AvatarSize         = 256
)

const (
	RoleUser = "USER"
)

// 站内通知类型
const (
	SysBoxTypeOfflineMessage int8 = 1
)

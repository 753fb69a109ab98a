package model

type UserDetail struct {
	UserID    string  `gorm:"primaryKey;type:varchar(64)"`
	Name      string  `gorm:"type:varchar(50);not null"`
	AvatarURL string  `gorm:"type:varchar(512);column:avatar_url;default:''"`
	Bio       *string `gorm:"type:varchar(255)"`
	Sport     *string `gorm:"type:varchar(50)"`
}

func (UserDetail) TableName() string {
	return "user_detail"
}

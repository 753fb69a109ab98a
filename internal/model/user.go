package model

import (
	"time"
)

type User struct {
	ID         string `gorm:"primaryKey;type:varchar(64)"`
	Email      string `gorm:"type:varchar(128);not null;uniqueIndex:idx_email"`
	Password   string `gorm:"type:varchar(255);not null"`
	Role       string `gorm:"type:varchar(20);not null;default:'USER'"`
	IsBan      bool   `gorm:"default:false"`
	IsDelete   bool   `gorm:"default:false"`
	IsVerified bool   `gorm:"default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	UserDetail UserDetail `gorm:"foreignKey:UserID;references:ID"`
}

func (User) TableName() string {
	return "users"
}

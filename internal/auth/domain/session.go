package domain

import (
	"time"
)

// Session 登录会话，持有访问令牌与刷新令牌
type Session struct {
	ID                    string    `gorm:"column:id;type:varchar(36);primaryKey"`
	UserID                string    `gorm:"column:user_id;type:varchar(36);index;not null"`
	AccessToken           string    `gorm:"column:access_token;type:varchar(512);uniqueIndex;not null"`
	RefreshToken          string    `gorm:"column:refresh_token;type:varchar(128);uniqueIndex;not null"`
	AccessTokenExpiresAt  time.Time `gorm:"column:access_token_expires_at;not null"`
	RefreshTokenExpiresAt time.Time `gorm:"column:refresh_token_expires_at;not null"`
	Revoked               bool      `gorm:"column:revoked;default:false"`
	LastActiveAt          time.Time `gorm:"column:last_active_at"`
	CreatedAt             time.Time `gorm:"column:created_at"`
	UpdatedAt             time.Time `gorm:"column:updated_at"`

	User *User `gorm:"foreignKey:UserID"`
}

func (Session) TableName() string {
	return "sessions"
}

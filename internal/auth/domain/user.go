package domain

import (
	"time"
)

// UserStatus 用户状态
type UserStatus string

const (
	StatusActive   UserStatus = "ACTIVE"
	StatusInactive UserStatus = "INACTIVE"
	StatusBanned   UserStatus = "BANNED"
	StatusDeleted  UserStatus = "DELETED"
)

// User 用户
type User struct {
	ID            string     `gorm:"column:id;type:varchar(36);primaryKey"`
	Username      string     `gorm:"column:username;type:varchar(50);uniqueIndex;not null"`
	Nickname      *string    `gorm:"column:nickname;type:varchar(50)"`
	Email         *string    `gorm:"column:email;type:varchar(100);uniqueIndex"`
	EmailVerified bool       `gorm:"column:email_verified;default:false"`
	Phone         *string    `gorm:"column:phone;type:varchar(20)"`
	PhoneVerified bool       `gorm:"column:phone_verified;default:false"`
	Avatar        *string    `gorm:"column:avatar;type:varchar(255)"`
	PasswordHash  *string    `gorm:"column:password_hash;type:varchar(100)"`
	Status        UserStatus `gorm:"column:status;type:varchar(10);not null"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

package domain

import (
	"time"
)

// CodeType 验证码类型
type CodeType string

const (
	CodeRegister       CodeType = "register"
	CodeLogin          CodeType = "login"
	CodeForgotPassword CodeType = "forgot_password"
	CodeBindEmail      CodeType = "bind_email"
	CodeBindPhone      CodeType = "bind_phone"
)

// VerificationCode 邮箱验证码
type VerificationCode struct {
	ID        string     `gorm:"column:id;type:varchar(36);primaryKey"`
	Target    string     `gorm:"column:target;type:varchar(100);index;not null"`
	Code      string     `gorm:"column:code;type:varchar(10);not null"`
	Type      CodeType   `gorm:"column:type;type:varchar(20);not null"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (VerificationCode) TableName() string {
	return "verification_codes"
}

package domain

import (
	"context"
	"time"
)

// Repository 认证聚合仓储，覆盖用户、会话与验证码
type Repository interface {
	FindUserByID(ctx context.Context, id string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error

	CreateSession(ctx context.Context, session *Session) error
	FindSessionByAccessToken(ctx context.Context, token string) (*Session, error)
	FindSessionByRefreshToken(ctx context.Context, token string) (*Session, error)
	UpdateSession(ctx context.Context, session *Session) error
	RevokeSession(ctx context.Context, id string) error
	RevokeUserSessions(ctx context.Context, userID string) error

	CreateCode(ctx context.Context, code *VerificationCode) error
	FindValidCode(ctx context.Context, target string, code string, codeType CodeType, now time.Time) (*VerificationCode, error)

	// CreateUserWithSession 在一个事务内创建用户、会话并核销验证码。
	CreateUserWithSession(ctx context.Context, user *User, session *Session, usedCodeID string) error
	// ResetPassword 在一个事务内更新密码、核销验证码并吊销全部会话。
	ResetPassword(ctx context.Context, userID string, passwordHash string, usedCodeID string) error
}

// CodeSender 验证码投递通道
type CodeSender interface {
	SendCode(ctx context.Context, email string, code string, codeType CodeType) error
}

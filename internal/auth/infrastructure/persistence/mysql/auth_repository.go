// Package mysql 认证仓储的 GORM 实现
package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cognikit/cognikit/internal/auth/domain"
	"github.com/cognikit/cognikit/pkg/db"
)

type authRepository struct {
	db *db.DB
}

// NewAuthRepository 创建认证仓储
func NewAuthRepository(database *db.DB) domain.Repository {
	return &authRepository{db: database}
}

func (r *authRepository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *authRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *authRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *authRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *authRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *authRepository) FindSessionByAccessToken(ctx context.Context, token string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("access_token = ? AND revoked = ?", token, false).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *authRepository) FindSessionByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("refresh_token = ? AND revoked = ?", token, false).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *authRepository) UpdateSession(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *authRepository) RevokeSession(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", id).
		Update("revoked", true).Error
}

func (r *authRepository) RevokeUserSessions(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

func (r *authRepository) CreateCode(ctx context.Context, code *domain.VerificationCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *authRepository) FindValidCode(ctx context.Context, target string, code string, codeType domain.CodeType, now time.Time) (*domain.VerificationCode, error) {
	var vc domain.VerificationCode
	err := r.db.WithContext(ctx).
		Where("target = ? AND code = ? AND type = ? AND used_at IS NULL AND expires_at > ?",
			target, code, codeType, now).
		Order("created_at desc").
		First(&vc).Error
	if err != nil {
		return nil, err
	}
	return &vc, nil
}

func (r *authRepository) CreateUserWithSession(ctx context.Context, user *domain.User, session *domain.Session, usedCodeID string) error {
	return r.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		return markCodeUsed(tx, usedCodeID)
	})
}

func (r *authRepository) ResetPassword(ctx context.Context, userID string, passwordHash string, usedCodeID string) error {
	return r.db.WithTx(ctx, func(tx *gorm.DB) error {
		err := tx.Model(&domain.User{}).
			Where("id = ?", userID).
			Update("password_hash", passwordHash).Error
		if err != nil {
			return err
		}
		if err := markCodeUsed(tx, usedCodeID); err != nil {
			return err
		}
		return tx.Model(&domain.Session{}).
			Where("user_id = ? AND revoked = ?", userID, false).
			Update("revoked", true).Error
	})
}

func markCodeUsed(tx *gorm.DB, codeID string) error {
	return tx.Model(&domain.VerificationCode{}).
		Where("id = ?", codeID).
		Update("used_at", time.Now()).Error
}

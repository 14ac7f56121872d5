package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cognikit/cognikit/internal/auth/domain"
	"github.com/cognikit/cognikit/pkg/db"
)

func newTestRepo(t *testing.T) (domain.Repository, *gorm.DB) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.User{}, &domain.Session{}, &domain.VerificationCode{}))
	wrapped := &db.DB{DB: gdb}
	return NewAuthRepository(wrapped), gdb
}

func newUser(email string) *domain.User {
	hash := "$2a$10$fakehash"
	now := time.Now()
	return &domain.User{
		ID:            uuid.NewString(),
		Username:      "user_" + uuid.NewString()[:8],
		Email:         &email,
		EmailVerified: true,
		PasswordHash:  &hash,
		Status:        domain.StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func newSession(userID string) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:                    uuid.NewString(),
		UserID:                userID,
		AccessToken:           "access-" + uuid.NewString(),
		RefreshToken:          "refresh-" + uuid.NewString(),
		AccessTokenExpiresAt:  now.Add(15 * time.Minute),
		RefreshTokenExpiresAt: now.Add(168 * time.Hour),
		LastActiveAt:          now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func newCode(target string, codeType domain.CodeType) *domain.VerificationCode {
	now := time.Now()
	return &domain.VerificationCode{
		ID:        uuid.NewString(),
		Target:    target,
		Code:      "123456",
		Type:      codeType,
		ExpiresAt: now.Add(10 * time.Minute),
		CreatedAt: now,
	}
}

func TestCreateUserWithSession(t *testing.T) {
	repo, gdb := newTestRepo(t)
	ctx := context.Background()

	code := newCode("a@example.com", domain.CodeRegister)
	require.NoError(t, repo.CreateCode(ctx, code))

	user := newUser("a@example.com")
	session := newSession(user.ID)
	require.NoError(t, repo.CreateUserWithSession(ctx, user, session, code.ID))

	found, err := repo.FindUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	// 验证码已核销，不能再次使用
	var used domain.VerificationCode
	require.NoError(t, gdb.Where("id = ?", code.ID).First(&used).Error)
	assert.NotNil(t, used.UsedAt)

	_, err = repo.FindValidCode(ctx, "a@example.com", "123456", domain.CodeRegister, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindValidCode(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	code := newCode("b@example.com", domain.CodeRegister)
	require.NoError(t, repo.CreateCode(ctx, code))

	t.Run("valid code is found", func(t *testing.T) {
		found, err := repo.FindValidCode(ctx, "b@example.com", "123456", domain.CodeRegister, time.Now())
		require.NoError(t, err)
		assert.Equal(t, code.ID, found.ID)
	})

	t.Run("wrong code", func(t *testing.T) {
		_, err := repo.FindValidCode(ctx, "b@example.com", "654321", domain.CodeRegister, time.Now())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := repo.FindValidCode(ctx, "b@example.com", "123456", domain.CodeForgotPassword, time.Now())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("expired code", func(t *testing.T) {
		_, err := repo.FindValidCode(ctx, "b@example.com", "123456", domain.CodeRegister, time.Now().Add(time.Hour))
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestSessionLookupAndRevoke(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	user := newUser("c@example.com")
	code := newCode("c@example.com", domain.CodeRegister)
	require.NoError(t, repo.CreateCode(ctx, code))
	session := newSession(user.ID)
	require.NoError(t, repo.CreateUserWithSession(ctx, user, session, code.ID))

	found, err := repo.FindSessionByAccessToken(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.ID, found.ID)
	require.NotNil(t, found.User)
	assert.Equal(t, user.ID, found.User.ID)

	found, err = repo.FindSessionByRefreshToken(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, session.ID, found.ID)

	require.NoError(t, repo.RevokeSession(ctx, session.ID))

	_, err = repo.FindSessionByAccessToken(ctx, session.AccessToken)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.FindSessionByRefreshToken(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestResetPasswordRevokesAllSessions(t *testing.T) {
	repo, gdb := newTestRepo(t)
	ctx := context.Background()

	user := newUser("d@example.com")
	registerCode := newCode("d@example.com", domain.CodeRegister)
	require.NoError(t, repo.CreateCode(ctx, registerCode))
	first := newSession(user.ID)
	require.NoError(t, repo.CreateUserWithSession(ctx, user, first, registerCode.ID))
	second := newSession(user.ID)
	require.NoError(t, repo.CreateSession(ctx, second))

	resetCode := newCode("d@example.com", domain.CodeForgotPassword)
	require.NoError(t, repo.CreateCode(ctx, resetCode))

	require.NoError(t, repo.ResetPassword(ctx, user.ID, "$2a$10$newhash", resetCode.ID))

	updated, err := repo.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.PasswordHash)
	assert.Equal(t, "$2a$10$newhash", *updated.PasswordHash)

	var active int64
	require.NoError(t, gdb.Model(&domain.Session{}).
		Where("user_id = ? AND revoked = ?", user.ID, false).
		Count(&active).Error)
	assert.Zero(t, active)

	var used domain.VerificationCode
	require.NoError(t, gdb.Where("id = ?", resetCode.ID).First(&used).Error)
	assert.NotNil(t, used.UsedAt)
}

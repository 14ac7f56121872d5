// Package application 实现认证用例：验证码、注册、登录与会话管理
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cognikit/cognikit/internal/auth/domain"
	"github.com/cognikit/cognikit/pkg/apperr"
	"github.com/cognikit/cognikit/pkg/cache"
)

const (
	codeTTL        = 10 * time.Minute
	codeRateWindow = time.Hour
	codeRateLimit  = 5
)

// Config 认证服务配置
type Config struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Service 认证应用服务
type Service struct {
	repo   domain.Repository
	cache  *cache.RedisCache
	sender domain.CodeSender
	cfg    Config
	logger *slog.Logger
}

// NewService 创建认证服务
func NewService(repo domain.Repository, rc *cache.RedisCache, sender domain.CodeSender, cfg Config, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: rc, sender: sender, cfg: cfg, logger: logger}
}

// TokenPair 签发结果
type TokenPair struct {
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

// UserDTO 对外用户视图
type UserDTO struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Nickname      *string `json:"nickname"`
	Email         *string `json:"email"`
	EmailVerified bool    `json:"emailVerified"`
	Avatar        *string `json:"avatar"`
	Status        string  `json:"status"`
}

// AuthResult 登录或注册结果
type AuthResult struct {
	User   *UserDTO   `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}

// SendCode 生成并投递邮箱验证码，按邮箱限流。
// 注册要求邮箱未被占用，找回密码要求账号存在。
func (s *Service) SendCode(ctx context.Context, email string, codeType domain.CodeType) error {
	switch codeType {
	case domain.CodeRegister:
		if _, err := s.repo.FindUserByEmail(ctx, email); err == nil {
			return apperr.ErrEmailExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up email: %w", err)
		}
	case domain.CodeForgotPassword:
		if _, err := s.repo.FindUserByEmail(ctx, email); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrUserNotFound
			}
			return fmt.Errorf("failed to look up email: %w", err)
		}
	}

	rateKey := fmt.Sprintf("auth:code_rate:%s", email)
	count, err := s.cache.Incr(ctx, rateKey)
	if err != nil {
		return fmt.Errorf("failed to check code rate limit: %w", err)
	}
	if count == 1 {
		if err := s.cache.Expire(ctx, rateKey, codeRateWindow); err != nil {
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}
	if count > codeRateLimit {
		s.logger.WarnContext(ctx, "verification code rate limit exceeded", "email", email)
		return apperr.ErrTooManyRequests
	}

	code, err := newVerificationCode()
	if err != nil {
		return err
	}
	now := time.Now()
	record := &domain.VerificationCode{
		ID:        uuid.NewString(),
		Target:    email,
		Code:      code,
		Type:      codeType,
		ExpiresAt: now.Add(codeTTL),
		CreatedAt: now,
	}
	if err := s.repo.CreateCode(ctx, record); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	if err := s.sender.SendCode(ctx, email, code, codeType); err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}

	s.logger.InfoContext(ctx, "verification code sent", "email", email, "type", codeType)
	return nil
}

// Register 校验验证码并创建账号，同时签发首个会话
func (s *Service) Register(ctx context.Context, email, password, code string) (*AuthResult, error) {
	if _, err := s.repo.FindUserByEmail(ctx, email); err == nil {
		return nil, apperr.ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	vc, err := s.consumeCode(ctx, email, code, domain.CodeRegister)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	username, err := newUsername()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	hashStr := string(hash)
	user := &domain.User{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         &email,
		EmailVerified: true,
		PasswordHash:  &hashStr,
		Status:        domain.StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	session, tokens, err := s.newSession(user.ID, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateUserWithSession(ctx, user, session, vc.ID); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return &AuthResult{User: toUserDTO(user), Tokens: tokens}, nil
}

// Login 密码登录，identifier 可以是邮箱或用户名
func (s *Service) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	user, err := s.repo.FindUserByEmail(ctx, identifier)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.repo.FindUserByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.PasswordHash == nil {
		return nil, apperr.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	if err := checkStatus(user.Status); err != nil {
		return nil, err
	}

	now := time.Now()
	session, tokens, err := s.newSession(user.ID, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return &AuthResult{User: toUserDTO(user), Tokens: tokens}, nil
}

// RefreshToken 用刷新令牌轮换会话，旧会话即刻吊销
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	session, err := s.repo.FindSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	now := time.Now()
	if now.After(session.RefreshTokenExpiresAt) {
		return nil, apperr.ErrTokenExpired
	}
	if session.User != nil {
		if err := checkStatus(session.User.Status); err != nil {
			return nil, err
		}
	}

	next, tokens, err := s.newSession(session.UserID, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateSession(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}
	if err := s.repo.RevokeSession(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke old session: %w", err)
	}
	return tokens, nil
}

// Logout 吊销当前会话
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	session, err := s.repo.FindSessionByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up session: %w", err)
	}
	return s.repo.RevokeSession(ctx, session.ID)
}

// ResetPassword 验证码重置密码，并吊销全部历史会话
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	vc, err := s.consumeCode(ctx, email, code, domain.CodeForgotPassword)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.ResetPassword(ctx, user.ID, string(hash), vc.ID); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset", "user_id", user.ID)
	return nil
}

// VerifyAccessToken 校验访问令牌并返回用户 ID，供网关中间件使用
func (s *Service) VerifyAccessToken(ctx context.Context, token string) (string, error) {
	userID, err := parseAccessToken(s.cfg.JWTSecret, token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperr.ErrTokenExpired
		}
		return "", apperr.ErrInvalidToken
	}

	session, err := s.repo.FindSessionByAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.ErrInvalidToken
		}
		return "", fmt.Errorf("failed to look up session: %w", err)
	}
	if session.User != nil {
		if err := checkStatus(session.User.Status); err != nil {
			return "", err
		}
	}
	return userID, nil
}

// CurrentUser 返回用户资料
func (s *Service) CurrentUser(ctx context.Context, userID string) (*UserDTO, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return toUserDTO(user), nil
}

func (s *Service) consumeCode(ctx context.Context, email, code string, codeType domain.CodeType) (*domain.VerificationCode, error) {
	vc, err := s.repo.FindValidCode(ctx, email, code, codeType, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvalidCode
		}
		return nil, fmt.Errorf("failed to look up verification code: %w", err)
	}
	return vc, nil
}

func (s *Service) newSession(userID string, now time.Time) (*domain.Session, *TokenPair, error) {
	accessToken, accessExp, err := signAccessToken(s.cfg.JWTSecret, userID, now, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := newRefreshToken()
	if err != nil {
		return nil, nil, err
	}
	refreshExp := now.Add(s.cfg.RefreshTokenTTL)

	session := &domain.Session{
		ID:                    uuid.NewString(),
		UserID:                userID,
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: refreshExp,
		LastActiveAt:          now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	tokens := &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: refreshExp,
	}
	return session, tokens, nil
}

func checkStatus(status domain.UserStatus) error {
	switch status {
	case domain.StatusActive:
		return nil
	case domain.StatusBanned:
		return apperr.ErrAccountBanned
	case domain.StatusInactive:
		return apperr.ErrAccountInactive
	case domain.StatusDeleted:
		return apperr.ErrAccountDeleted
	default:
		return apperr.ErrUnauthorized
	}
}

func toUserDTO(user *domain.User) *UserDTO {
	return &UserDTO{
		ID:            user.ID,
		Username:      user.Username,
		Nickname:      user.Nickname,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Avatar:        user.Avatar,
		Status:        string(user.Status),
	}
}

// Package email 提供基于 Resend API 的验证码投递实现
package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cognikit/cognikit/internal/auth/domain"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendSender 通过 Resend 发送验证码邮件
type ResendSender struct {
	http   *resty.Client
	from   string
	logger *slog.Logger
}

// NewResendSender 创建发送器
func NewResendSender(apiKey, from string, logger *slog.Logger) *ResendSender {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &ResendSender{http: client, from: from, logger: logger}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendCode 发送验证码邮件
func (s *ResendSender) SendCode(ctx context.Context, email string, code string, codeType domain.CodeType) error {
	body := sendRequest{
		From:    s.from,
		To:      []string{email},
		Subject: subjectFor(codeType),
		HTML:    fmt.Sprintf("<p>Your verification code is <strong>%s</strong>. It expires in 10 minutes.</p>", code),
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(resendEndpoint)
	if err != nil {
		return fmt.Errorf("failed to call email provider: %w", err)
	}
	if resp.IsError() {
		s.logger.ErrorContext(ctx, "email provider returned error",
			"status", resp.StatusCode(), "body", string(resp.Body()))
		return fmt.Errorf("email provider returned status %d", resp.StatusCode())
	}

	s.logger.InfoContext(ctx, "verification email sent", "to", email, "type", codeType)
	return nil
}

func subjectFor(codeType domain.CodeType) string {
	switch codeType {
	case domain.CodeRegister:
		return "Confirm your registration"
	case domain.CodeForgotPassword:
		return "Reset your password"
	case domain.CodeLogin:
		return "Your login code"
	default:
		return "Your verification code"
	}
}

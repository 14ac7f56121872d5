// Package apperr 定义业务错误码与 HTTP 状态映射
package apperr

import (
	"errors"
	"net/http"
)

// Error 业务错误，携带错误码与 HTTP 状态
type Error struct {
	Code   string
	Status int
}

func (e *Error) Error() string {
	return e.Code
}

// New 创建业务错误
func New(code string, status int) *Error {
	return &Error{Code: code, Status: status}
}

// 鉴权与账号相关错误
var (
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized)
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusBadRequest)
	ErrInvalidCode        = New("INVALID_CODE", http.StatusBadRequest)
	ErrInvalidToken       = New("INVALID_TOKEN", http.StatusUnauthorized)
	ErrTokenExpired       = New("TOKEN_EXPIRED", http.StatusUnauthorized)
	ErrEmailExists        = New("EMAIL_EXISTS", http.StatusConflict)
	ErrUserNotFound       = New("USER_NOT_FOUND", http.StatusNotFound)
	ErrAccountBanned      = New("ACCOUNT_BANNED", http.StatusForbidden)
	ErrAccountInactive    = New("ACCOUNT_INACTIVE", http.StatusForbidden)
	ErrAccountDeleted     = New("ACCOUNT_DELETED", http.StatusForbidden)
	ErrTooManyRequests    = New("TOO_MANY_REQUESTS", http.StatusTooManyRequests)
)

// 资产与自选相关错误
var (
	ErrAssetNotFound          = New("ASSET_NOT_FOUND", http.StatusNotFound)
	ErrWatchlistForbidden     = New("WATCHLIST_FORBIDDEN", http.StatusForbidden)
	ErrWatchlistGroupNotFound = New("WATCHLIST_GROUP_NOT_FOUND", http.StatusNotFound)
	ErrWatchlistItemNotFound  = New("WATCHLIST_ITEM_NOT_FOUND", http.StatusNotFound)
	ErrWatchlistDuplicate     = New("WATCHLIST_DUPLICATE_ITEM", http.StatusConflict)
)

// From 提取业务错误；非业务错误返回 nil
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

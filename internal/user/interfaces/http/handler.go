// Package http 用户资料的 HTTP 接口
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cognikit/cognikit/internal/auth/application"
	"github.com/cognikit/cognikit/pkg/middleware"
)

// UserHandler 用户接口处理器
type UserHandler struct {
	auth *application.Service
}

// NewUserHandler 创建用户接口处理器
func NewUserHandler(auth *application.Service) *UserHandler {
	return &UserHandler{auth: auth}
}

// RegisterRoutes 注册路由
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	v1 := r.Group("/v1/users", auth)
	{
		v1.GET("/me", h.Me)
	}
}

// Me 返回当前登录用户
func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	user, err := h.auth.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

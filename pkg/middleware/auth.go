package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIDKey gin context key for authenticated user ID
const UserIDKey = "user_id"

// TokenVerifier 验证访问令牌并解析出用户 ID
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (string, error)
}

// GinAuth Gin 鉴权中间件：校验 Bearer 访问令牌并注入 user_id
func GinAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHORIZED"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		userID, err := verifier.VerifyAccessToken(c.Request.Context(), token)
		if err != nil {
			RespondError(c, err)
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// CurrentUserID 从 gin context 中取出鉴权后的用户 ID
func CurrentUserID(c *gin.Context) string {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

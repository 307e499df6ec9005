package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/ceb/internal/service"
	"github.com/d60-Lab/ceb/pkg/response"
)

const claimsKey = "auth_claims"

// TokenParser 解析会话令牌
type TokenParser interface {
	ParseToken(token string) (*service.Claims, error)
}

// Authenticate 从 Bearer 头或 cookie 读取令牌；无效令牌视为未登录，不中断请求
func Authenticate(p TokenParser, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(cookieName)
		}
		if token != "" {
			if claims, err := p.ParseToken(token); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

func bearerToken(h string) string {
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// CurrentUser 返回当前请求的登录信息
func CurrentUser(c *gin.Context) (*service.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*service.Claims)
	return claims, ok
}

// RequireLogin 页面访问控制，未登录跳转登录页
func RequireLogin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStaff 管理接口访问控制
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			response.Unauthorized(c, "authentication required")
			return
		}
		if !claims.Staff {
			response.Forbidden(c, "staff only")
			return
		}
		c.Next()
	}
}

// RequireAuth API 访问控制，未登录返回 401
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			response.Unauthorized(c, "authentication required")
			return
		}
		c.Next()
	}
}

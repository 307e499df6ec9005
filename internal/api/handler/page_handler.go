package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/ceb/internal/service"
	"github.com/d60-Lab/ceb/web"
)

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// LoginPage 渲染静态登录页
func (h *Handler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, web.LoginTemplate, gin.H{})
}

// Login 表单登录，成功后写入会话 cookie 并跳转列表页
func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, web.LoginTemplate, gin.H{"error": "username and password are required", "username": form.Username})
		return
	}
	user, err := h.authService.Authenticate(c.Request.Context(), form.Username, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.HTML(http.StatusUnauthorized, web.LoginTemplate, gin.H{"error": err.Error(), "username": form.Username})
		return
	}
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	token, exp, err := h.authService.IssueToken(user)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, token, int(time.Until(exp).Seconds()), "/", "", h.opts.SecureCookie, true)
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout 清除会话 cookie
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, "", -1, "/", "", h.opts.SecureCookie, true)
	c.Redirect(http.StatusSeeOther, "/login")
}

// Index 列表页：两类记录全量渲染到 reg/index.html
func (h *Handler) Index(c *gin.Context) {
	listing, err := h.listingService.Index(c.Request.Context())
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.HTML(http.StatusOK, web.IndexTemplate, listing.Context())
}

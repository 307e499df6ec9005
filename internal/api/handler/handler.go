package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/ceb/internal/repository"
	"github.com/d60-Lab/ceb/internal/service"
	"github.com/d60-Lab/ceb/pkg/response"
)

// Options 处理器用到的配置项
type Options struct {
	CookieName     string
	SecureCookie   bool
	MaxUploadBytes int64
}

// Handler 聚合页面与 API 处理器
type Handler struct {
	listingService service.ListingService
	recordService  service.RecordService
	authService    service.AuthService
	opts           Options
}

func New(listing service.ListingService, records service.RecordService, auth service.AuthService, opts Options) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = "ceb_session"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 8 << 20
	}
	return &Handler{listingService: listing, recordService: records, authService: auth, opts: opts}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// writeError 把服务层错误映射为 HTTP 状态码
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrUnsupportedImage):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

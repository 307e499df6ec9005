package router

import (
	"fmt"
	"html/template"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/ceb/config"
	"github.com/d60-Lab/ceb/docs"
	"github.com/d60-Lab/ceb/internal/api/handler"
	"github.com/d60-Lab/ceb/internal/api/middleware"
	"github.com/d60-Lab/ceb/internal/model"
	"github.com/d60-Lab/ceb/web"
)

const loginPath = "/login"

// Deps 路由依赖
type Deps struct {
	Handler *handler.Handler
	Tokens  middleware.TokenParser
	Ping    handler.Pinger
}

// Setup 注册中间件与全部路由
func Setup(cfg *config.Config, deps Deps) (*gin.Engine, error) {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode, gin.DebugMode:
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Media.MaxUploadBytes

	tpl, err := web.Templates(template.FuncMap{
		"mediaURL": func(rel string) string { return model.Table2{Image: rel}.ImageURL(cfg.Media.URLPrefix) },
	})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tpl)

	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Sentry(), middleware.Recovery())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(
		middleware.SafeHeader(),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)),
		middleware.Authenticate(deps.Tokens, cfg.JWT.CookieName),
	)

	r.Static(cfg.Media.URLPrefix, cfg.Media.Root)
	r.GET("/healthz", handler.Health(deps.Ping))
	if cfg.Swagger.Enabled {
		docs.SwaggerInfo.BasePath = "/"
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := deps.Handler
	r.GET(loginPath, h.LoginPage)
	r.POST(loginPath, h.Login)
	r.POST("/logout", h.Logout)

	pages := r.Group("/")
	api := r.Group("/api/v1")
	if cfg.Auth.ProtectIndex {
		pages.Use(middleware.RequireLogin(loginPath))
	}
	pages.GET("", h.Index)

	records := api.Group("/records")
	if cfg.Auth.ProtectIndex {
		records.Use(middleware.RequireAuth())
	}
	records.GET("", h.ListRecords)

	admin := api.Group("/admin", middleware.RequireStaff())
	{
		t1 := admin.Group("/table1")
		t1.POST("", h.CreateTable1)
		t1.GET("/:id", h.GetTable1)
		t1.PUT("/:id", h.UpdateTable1)
		t1.DELETE("/:id", h.DeleteTable1)

		t2 := admin.Group("/table2")
		t2.POST("", h.CreateTable2)
		t2.GET("/:id", h.GetTable2)
		t2.PUT("/:id", h.UpdateTable2)
		t2.DELETE("/:id", h.DeleteTable2)
	}

	return r, nil
}

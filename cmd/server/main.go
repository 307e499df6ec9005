package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/ceb/config"
	"github.com/d60-Lab/ceb/internal/api/handler"
	"github.com/d60-Lab/ceb/internal/api/router"
	"github.com/d60-Lab/ceb/internal/cache"
	"github.com/d60-Lab/ceb/internal/repository"
	"github.com/d60-Lab/ceb/internal/service"
	"github.com/d60-Lab/ceb/pkg/database"
	"github.com/d60-Lab/ceb/pkg/logger"
	"github.com/d60-Lab/ceb/pkg/tracing"
)

// @title ceb API
// @version 1.0
// @description Table1 / Table2 content board
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	rdb, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		// 缓存不可用时退化为直接读库
		logger.Warn("redis unavailable, listing cache disabled", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	table1Repo := repository.NewTable1Repository(db)
	table2Repo := repository.NewTable2Repository(db)
	userRepo := repository.NewUserRepository(db)

	listingSvc := service.NewListingService(table1Repo, table2Repo, cache.NewListingCache(rdb, cfg.Redis.ListingTTL))
	recordSvc := service.NewRecordService(table1Repo, table2Repo, service.NewFileMediaStore(cfg.Media.Root), listingSvc)
	authSvc := service.NewAuthService(userRepo, cfg.JWT)

	h := handler.New(listingSvc, recordSvc, authSvc, handler.Options{
		CookieName:     cfg.JWT.CookieName,
		SecureCookie:   cfg.Server.Mode == "release",
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
	})
	engine, err := router.Setup(cfg, router.Deps{
		Handler: h,
		Tokens:  authSvc,
		Ping:    func(ctx context.Context) error { return database.Ping(ctx, db) },
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

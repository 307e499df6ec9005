package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/d60-Lab/ceb/config"
	"github.com/d60-Lab/ceb/internal/repository"
	"github.com/d60-Lab/ceb/internal/service"
	"github.com/d60-Lab/ceb/pkg/database"
	"github.com/d60-Lab/ceb/pkg/logger"
)

// createadmin 创建可访问管理接口的用户
func main() {
	username := flag.String("username", "", "admin username")
	password := flag.String("password", "", "admin password (>= 8 chars)")
	staff := flag.Bool("staff", true, "grant access to the admin API")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createadmin -username NAME -password PASS")
		os.Exit(2)
	}

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

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer database.Close(db)

	auth := service.NewAuthService(repository.NewUserRepository(db), cfg.JWT)
	u, err := auth.CreateUser(context.Background(), *username, *password, *staff)
	if err != nil {
		logger.Fatal("create user", zap.String("username", *username), zap.Error(err))
	}
	logger.Info("user created", zap.Uint("id", u.ID), zap.String("username", u.Username), zap.Bool("staff", u.IsStaff))
}

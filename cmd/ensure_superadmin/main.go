package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"marketadmin/internal/bootstrap"
	"marketadmin/internal/config"
	"marketadmin/internal/database"
	"marketadmin/internal/observability"
	"marketadmin/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}

	res, err := bootstrap.EnsureSuperAdmin(context.Background(), repository.NewAccountRepository(db), cfg.Bootstrap, logger)
	if err != nil {
		logger.Fatal("ensure super admin failed", zap.Error(err))
	}
	logger.Info("super admin credentials ensured", zap.String("result", string(res)))
}

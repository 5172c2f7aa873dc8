package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"marketadmin/internal/config"
	"marketadmin/internal/database"
	"marketadmin/internal/observability"
	"marketadmin/internal/repository"
)

func main() {
	retention := flag.Duration("retention", 30*24*time.Hour, "keep revoked and expired refresh tokens this long")
	flag.Parse()

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

	cutoff := time.Now().UTC().Add(-*retention)
	n, err := repository.NewRefreshTokenRepository(db).DeleteStale(context.Background(), cutoff)
	if err != nil {
		logger.Fatal("cleanup refresh_tokens failed", zap.Error(err))
	}
	logger.Info("auth cleanup completed", zap.Int64("refresh_tokens", n), zap.Time("cutoff", cutoff))
}

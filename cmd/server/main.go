package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nulzo/ai-usage-analyzer/cmd"
	"github.com/nulzo/ai-usage-analyzer/internal/analytics"
	"github.com/nulzo/ai-usage-analyzer/internal/archive"
	"github.com/nulzo/ai-usage-analyzer/internal/config"
	"github.com/nulzo/ai-usage-analyzer/internal/events"
	"github.com/nulzo/ai-usage-analyzer/internal/platform/logger"
	"github.com/nulzo/ai-usage-analyzer/internal/platform/otel"
	"github.com/nulzo/ai-usage-analyzer/internal/server"
	"github.com/nulzo/ai-usage-analyzer/internal/server/validator"
	"github.com/nulzo/ai-usage-analyzer/internal/store/sqlite"
)

func main() {
	logger.Initialize(logger.DefaultConfig())
	log := logger.Get()
	defer logger.Sync()

	go cmd.CheckForUpdates()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	validator.InitValidator()

	shutdownTracer, err := otel.InitTracer("ai-usage-analyzer", cfg.Server.Env, log, os.Stdout)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	repo, err := sqlite.NewSQLiteStorage(cfg.Database.DSN, log)
	if err != nil {
		log.Fatal("Failed to open event store", zap.Error(err))
	}
	defer repo.Close()

	var archiver events.Archiver = archive.Noop{}
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		archiver = archive.NewRedisArchiver(client, cfg.Redis.ArchiveTTL, log)
		log.Info("Prompt archiver enabled", zap.String("addr", cfg.Redis.Addr))
	}

	processor := events.NewProcessor(archiver, log)
	eventsSvc := events.NewService(repo, processor, log)
	analyticsSvc := analytics.NewService(repo)

	srv := server.New(cfg, log, eventsSvc, analyticsSvc)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting AI Usage Analyzer API", zap.String("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	if err := shutdownTracer(ctx); err != nil {
		log.Error("Tracer shutdown failed", zap.Error(err))
	}
}

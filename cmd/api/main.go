package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/NitinGurawaliya/watch-dog/internal/cache"
	"github.com/NitinGurawaliya/watch-dog/internal/config"
	"github.com/NitinGurawaliya/watch-dog/internal/dedup"
	"github.com/NitinGurawaliya/watch-dog/internal/geo"
	"github.com/NitinGurawaliya/watch-dog/internal/handler"
	"github.com/NitinGurawaliya/watch-dog/internal/logger"
	"github.com/NitinGurawaliya/watch-dog/internal/realtime"
	"github.com/NitinGurawaliya/watch-dog/internal/repository/postgres"
	"github.com/NitinGurawaliya/watch-dog/internal/service"
	"github.com/NitinGurawaliya/watch-dog/internal/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.ServiceEnvironment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		if err := log.Sync(); err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting API service",
		zap.String("environment", cfg.ServiceEnvironment),
		zap.String("port", cfg.ServiceAPIPort))

	ctx := context.Background()

	// Initialize Postgres
	pgClient, err := postgres.NewClient(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to create Postgres client", zap.Error(err))
	}
	defer func() {
		if err := pgClient.Close(); err != nil {
			log.Error("Failed to close Postgres client", zap.Error(err))
		}
	}()

	if err := pgClient.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}

	eventRepo := postgres.NewEventRepository(pgClient, log)
	projectRepo := postgres.NewProjectRepository(pgClient, log)

	// Redis is optional; without it the project cache is a no-op.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to ping Redis", zap.Error(err))
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("Failed to close Redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connection established", zap.String("addr", cfg.RedisAddr))
	} else {
		log.Info("Redis not configured, project cache disabled")
	}
	projectCache := cache.NewRedisProjectCache(rdb, log)

	// Geo resolution stays off the network unless explicitly enabled.
	var resolver geo.Resolver = geo.NoopResolver{}
	if cfg.GeoLookupEnabled {
		resolver = geo.NewHTTPResolver(cfg.GeoLookupBaseURL, cfg.GeoLookupTimeout(), log)
	}

	// Real-time pipeline
	registry := realtime.NewRegistry(log)
	statsService := stats.NewService(eventRepo, log)
	broadcaster := realtime.NewBroadcaster(statsService, registry, log)

	// Ingestion pipeline
	deduper := dedup.New(eventRepo, cfg.DedupWindow(), log)
	trackService := service.NewTrackService(projectRepo, projectCache, deduper, resolver, broadcaster, log)
	projectService := service.NewProjectService(projectRepo, projectCache, log)

	h := handler.NewHandler(trackService, projectService, statsService, registry, broadcaster, handler.Options{
		JWTSecret:     []byte(cfg.JWTSecret),
		PublicBaseURL: cfg.PublicBaseURL,
		Tick:          cfg.RealtimeTick(),
	}, log)

	srv := &http.Server{
		Addr:    ":" + cfg.ServiceAPIPort,
		Handler: h,
	}

	go func() {
		log.Info("API server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
}

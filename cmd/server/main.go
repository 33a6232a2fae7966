package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/alumnihub/internal/bootstrap"
	"anoa.com/alumnihub/internal/config"
	"anoa.com/alumnihub/internal/server"
	"anoa.com/alumnihub/pkg/database"
	"anoa.com/alumnihub/pkg/logger"
	"anoa.com/alumnihub/pkg/validator"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatalf("failed to load config: %v", err)
	}

	log := logger.Setup(cfg.AppEnv, cfg.LogLevel)
	validator.Register()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.Seed(db); err != nil {
		log.Fatalf("failed to seed reference data: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := connectRedis(ctx, cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv := server.NewServer(cfg, database.NewHandle(database.GetDB(), cfg.StoreTimeout), redisClient)
	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
	log.Info("server stopped")
}

// connectRedis returns nil when REDIS_URL is unset or unreachable. Pushes
// and the message rate limit are then disabled.
func connectRedis(ctx context.Context, redisURL string) *redis.Client {
	if redisURL == "" {
		logger.L().Warn("REDIS_URL not set, realtime push and message rate limit disabled")
		return nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.WithError(err).Warn("invalid REDIS_URL, realtime push disabled")
		return nil
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("redis unreachable, realtime push disabled")
		_ = client.Close()
		return nil
	}
	logger.L().Info("connected to redis")
	return client
}

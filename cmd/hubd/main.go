package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"creatorhub-realtime/config"
	"creatorhub-realtime/internal/hub"
	"creatorhub-realtime/internal/relay"
	"creatorhub-realtime/internal/server"
	"creatorhub-realtime/pkg/jwt"
	"creatorhub-realtime/pkg/log"
	"creatorhub-realtime/pkg/redis"
)

// hubd is the local development notification hub: it serves the realtime
// channel the client subsystem connects to and relays events published on
// redis to the matching subject.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config:", err)
		return
	}

	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx := context.Background()
	logger.Info(ctx, "Starting notification hub...")

	redisClient, err := redis.NewClient(redis.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		UseTLS:       cfg.Redis.UseTLS,
		MaxRetries:   cfg.Redis.MaxRetries,
		MinIdleConns: cfg.Redis.MinIdleConns,
		PoolSize:     cfg.Redis.PoolSize,
		PoolTimeout:  cfg.Redis.PoolTimeout,
	})
	if err != nil {
		logger.Errorf(ctx, "Failed to connect to Redis: %v", err)
		return
	}
	defer redisClient.Close()
	logger.Infof(ctx, "Redis connected successfully to %s", cfg.Redis.Addr)

	jwtValidator := jwt.NewValidator(jwt.Config{
		SecretKey: cfg.JWT.SecretKey,
	})
	if jwtValidator.Permissive() {
		logger.Warn(ctx, "no JWT secret configured, accepting any token")
	}

	h := hub.New(logger, cfg.WS.MaxConnections)
	go h.Run()
	logger.Info(ctx, "Hub started")

	subscriber := relay.NewSubscriber(redisClient, h, logger)
	if err := subscriber.Start(); err != nil {
		logger.Errorf(ctx, "Failed to start relay subscriber: %v", err)
		return
	}
	logger.Info(ctx, "Relay subscriber started")

	channelHandler := hub.NewHandler(h, jwtValidator, logger, hub.WSConfig{
		PongWait:   cfg.WS.PongWait,
		PingPeriod: cfg.WS.PingInterval,
		WriteWait:  cfg.WS.WriteWait,
	})

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	channelHandler.SetupRoutes(router)

	srv := server.New(server.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		Router:      router,
		Logger:      logger,
		Hub:         h,
		RedisClient: redisClient,
		Subscriber:  subscriber,
	})

	go func() {
		if err := srv.Start(); err != nil {
			logger.Errorf(ctx, "Server error: %v", err)
		}
	}()

	logger.Infof(ctx, "Notification hub listening on %s:%d", cfg.Server.Host, cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := subscriber.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "Error shutting down relay subscriber: %v", err)
	}
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "Error shutting down hub: %v", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "Error shutting down server: %v", err)
	}

	logger.Info(ctx, "Shutdown complete")
}

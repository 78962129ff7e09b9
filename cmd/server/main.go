package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/flowlens/flowlens/internal/adapter/cache"
	httpadapter "github.com/flowlens/flowlens/internal/adapter/http"
	"github.com/flowlens/flowlens/internal/adapter/persistence"
	"github.com/flowlens/flowlens/internal/adapter/source"
	"github.com/flowlens/flowlens/internal/config"
	"github.com/flowlens/flowlens/internal/logger"
	"github.com/flowlens/flowlens/internal/ports"
	"github.com/flowlens/flowlens/internal/usecase"
)

func main() {
	ctx := context.Background()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.NewStructuredLogger(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "flowlens",
	})
	structuredLogger.Info(ctx, "application starting", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		structuredLogger.Error(ctx, "failed to open database", err, nil)
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		structuredLogger.Error(ctx, "failed to ping database", err, nil)
		log.Fatalf("Failed to ping database: %v", err)
	}
	structuredLogger.Info(ctx, "database connection established", nil)

	store := persistence.NewPostgresTicketStore(db)

	var ticketCache ports.TicketCache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		structuredLogger.Warn(ctx, "redis unavailable, running without cache", map[string]interface{}{
			"addr":  cfg.GetRedisAddr(),
			"error": err.Error(),
		})
	} else {
		ticketCache = cache.NewRedisTicketCache(redisClient, cfg.Analysis.CacheTTL)
		defer redisClient.Close()
	}

	var ticketSource ports.TicketSource
	if cfg.Analysis.SourceFile != "" {
		ticketSource = source.NewFileSource(cfg.Analysis.SourceFile)
		structuredLogger.Info(ctx, "ticket source configured", map[string]interface{}{
			"file": cfg.Analysis.SourceFile,
		})
	}

	flowUseCase := usecase.NewFlowUseCase(
		store,
		ticketCache,
		ticketSource,
		nil,
		structuredLogger,
		cfg.Analysis.FutureDays,
	)

	flowHandler := httpadapter.NewFlowHandler(flowUseCase)
	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, flowHandler, structuredLogger)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "server failed", err, nil)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "server exited", nil)
}

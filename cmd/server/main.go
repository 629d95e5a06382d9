package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/arcadelab/gamehub/internal/admin"
	"github.com/arcadelab/gamehub/internal/factory"
	"github.com/arcadelab/gamehub/internal/server"
	"github.com/arcadelab/gamehub/internal/services/worker"
	redisstorage "github.com/arcadelab/gamehub/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
	}

	serverCfg := server.DefaultConfig()
	if addr := os.Getenv("GAMEHUB_ADDR"); addr != "" {
		serverCfg.Addr = addr
	}
	cfg.ServerConfig = serverCfg

	workerCfg := worker.DefaultConfig()
	if dir := os.Getenv("GAMEHUB_GAMES_DIR"); dir != "" {
		workerCfg.GamesDir = dir
	}
	cfg.WorkerConfig = workerCfg

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Admin/diagnostics HTTP server
	adminCfg := admin.DefaultServerConfig()
	if addr := os.Getenv("GAMEHUB_ADMIN_ADDR"); addr != "" {
		adminCfg.Addr = addr
	}
	adminServer := admin.NewServer(admin.NewRouter(app, logger), adminCfg, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	if err := app.Lobby.Listen(); err != nil {
		logger.Error("failed to bind lobby listener", slog.String("error", err.Error()))
		os.Exit(1)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- app.Lobby.Serve(ctx)
	}()
	go func() {
		errCh <- adminServer.Start()
	}()

	logger.Info("server started", slog.String("addr", app.Lobby.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	if err := app.Lobby.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := adminServer.Shutdown(context.Background()); err != nil {
		logger.Error("admin shutdown error", slog.String("error", err.Error()))
	}

	// Persist volatile state so a restarted server can be inspected
	// against what was live at shutdown
	if err := app.SaveState(context.Background()); err != nil {
		logger.Error("failed to save state snapshot", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tgvidbot/internal/api"
	"tgvidbot/internal/api/handler"
	"tgvidbot/internal/bot"
	"tgvidbot/internal/config"
	"tgvidbot/internal/fetch"
	"tgvidbot/internal/media"
	"tgvidbot/internal/pipeline"
	"tgvidbot/internal/worker"
	"tgvidbot/internal/workspace"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tgvidbot %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Seed the environment from a .env file when one is present; deployed
	// instances set real environment variables instead.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env file")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tgvidbot",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if level := cfg.Log.SlogLevel(); level != slog.LevelInfo {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))
		slog.SetDefault(logger)
	}

	// Ensure the workspace parent directory exists
	if err := os.MkdirAll(cfg.Media.WorkDir, 0755); err != nil {
		logger.Error("failed to create work directory", "error", err)
		os.Exit(1)
	}

	// Initialize dependencies
	workspaces := workspace.NewManager(cfg.Media.WorkDir)

	fetcher, err := fetch.New(cfg.Fetch, logger)
	if err != nil {
		logger.Error("failed to initialize fetcher", "error", err)
		os.Exit(1)
	}

	tool, err := media.NewTool(cfg.Media, logger)
	if err != nil {
		logger.Error("failed to initialize media tool", "error", err)
		os.Exit(1)
	}

	pl := pipeline.New(workspaces, fetcher, tool, cfg.Telegram.MaxFileSize, logger)

	// Initialize worker pool
	pool := worker.NewPool(
		worker.Config{Workers: cfg.Worker.Count},
		logger,
	)

	tgBot, err := bot.New(cfg.Telegram, pl, pool, logger)
	if err != nil {
		logger.Error("failed to initialize telegram bot", "error", err)
		os.Exit(1)
	}

	// Setup router
	healthHandler := handler.NewHealthHandler()
	router := api.NewRouter(healthHandler)

	// Start worker pool
	pool.Start()

	// Start the update loop
	botCtx, stopBot := context.WithCancel(context.Background())
	go tgBot.Run(botCtx)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Stop accepting new updates
	stopBot()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Stop workers (allow in-flight requests to complete)
	if err := pool.Stop(25 * time.Second); err != nil {
		logger.Error("worker pool shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

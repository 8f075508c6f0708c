package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DonaldPG/pytaaa-web/internal/api"
	"github.com/DonaldPG/pytaaa-web/internal/api/handlers"
	"github.com/DonaldPG/pytaaa-web/internal/ingest"
	"github.com/DonaldPG/pytaaa-web/internal/store"
	"github.com/DonaldPG/pytaaa-web/pkg/config"
	"github.com/DonaldPG/pytaaa-web/pkg/database"
	"github.com/DonaldPG/pytaaa-web/pkg/logger"
	"github.com/DonaldPG/pytaaa-web/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Start the REST API server.

Endpoints:
  GET  /health
  GET  /api/v1/models
  GET  /api/v1/models/{id}
  GET  /api/v1/models/compare
  GET  /api/v1/models/{id}/performance
  GET  /api/v1/models/{id}/holdings
  GET  /api/v1/models/{id}/holdings/{date}
  GET  /api/v1/models/{id}/snapshots
  GET  /api/v1/models/{id}/backtest
  GET  /api/v1/models/backtest/compare
  GET  /api/v1/models/selection/history
  POST /api/v1/ingest
  GET  /api/v1/ws/updates

Example:
  go run ./cmd/pytaaa api
  go run ./cmd/pytaaa api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)
	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Connected to database")

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	// Repositories
	models := store.NewModelRepository(db.Pool)
	performance := store.NewPerformanceRepository(db.Pool)
	snapshots := store.NewSnapshotRepository(db.Pool)
	backtests := store.NewBacktestRepository(db.Pool)
	ranks := store.NewRankRepository(db.Pool)

	// Websocket hub doubles as the ingest notifier
	updates := handlers.NewUpdatesHandler(log)

	ingestService := ingest.NewService(models, performance, snapshots, backtests, ranks, log, updates)
	fetcher := ingest.NewFetcher(log, cfg.Ingest.RequestsPerSecond)

	cache := redis.NewCache(redisClient, "pytaaa")

	router := api.NewRouter(api.Handlers{
		Models:    handlers.NewModelHandler(models, performance, log),
		Portfolio: handlers.NewPortfolioHandler(snapshots, log),
		Backtest:  handlers.NewBacktestHandler(backtests, log),
		Selection: handlers.NewSelectionHandler(backtests, cache, log),
		Ingest:    handlers.NewIngestHandler(ingestService, fetcher, cfg, log),
		Updates:   updates,
	}, log)

	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

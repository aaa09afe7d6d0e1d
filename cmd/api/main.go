package main

// @title tilescout API
// @version 1.0.0
// @description Personal outdoor activity analytics. Imports GPX and FIT files
// @description or Strava activities, renders activity maps, explorer tile
// @description coverage and ride heatmaps.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/tilescout/tilescout/docs"
	"github.com/tilescout/tilescout/internal/config"
	httpDelivery "github.com/tilescout/tilescout/internal/delivery/http"
	"github.com/tilescout/tilescout/internal/delivery/http/handler"
	"github.com/tilescout/tilescout/internal/importer"
	"github.com/tilescout/tilescout/internal/infrastructure/strava"
	"github.com/tilescout/tilescout/internal/pkg/logger"
	"github.com/tilescout/tilescout/internal/repository/cache"
	"github.com/tilescout/tilescout/internal/repository/postgres"
	redisRepo "github.com/tilescout/tilescout/internal/repository/redis"
	"github.com/tilescout/tilescout/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting tilescout API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Int("explorer_zoom", cfg.Explorer.Zoom),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()
	log.Info("PostgreSQL connected")

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()
	log.Info("Redis connected")

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}
	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}
	log.Info("All connections healthy")

	// 6. Initialize repositories
	activityRepo := postgres.NewActivityRepository(db, log)
	tileRepo := postgres.NewTileRepository(db, log)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
	log.Info("Repositories initialized")

	// 7. Initialize use cases
	stravaClient := strava.NewClient(&cfg.Strava, log)

	activityUC := usecase.NewActivityUseCase(activityRepo, log, cfg.Athlete.MaxHR)
	explorerUC := usecase.NewExplorerUseCase(tileRepo, cacheRepo, log, cfg.Explorer.Zoom, cfg.Cache.ExplorerTTL)
	exportUC := usecase.NewExportUseCase(explorerUC, cacheRepo, log, cfg.Cache.ExportTTL)
	heatmapUC := usecase.NewHeatmapUseCase(activityRepo, cacheRepo, log, cfg.Heatmap.MaxPerPixel, cfg.Cache.HeatmapTTL)
	statsUC := usecase.NewStatsUseCase(activityRepo, explorerUC, cacheRepo, log, cfg.Cache.StatsTTL)
	importUC := usecase.NewImportUseCase(
		importer.New(log),
		activityRepo,
		tileRepo,
		cacheRepo,
		streamRepo,
		stravaClient,
		log,
		cfg.Explorer.Zoom,
		cfg.Import.Dir,
	)
	log.Info("Use cases initialized")

	// 8. Initialize HTTP handlers
	activityHandler := handler.NewActivityHandler(activityUC, log)
	explorerHandler := handler.NewExplorerHandler(explorerUC, exportUC, log)
	exportHandler := handler.NewExportHandler(exportUC, log)
	heatmapHandler := handler.NewHeatmapHandler(heatmapUC, log)
	statsHandler := handler.NewStatsHandler(statsUC, log)
	uploadHandler := handler.NewUploadHandler(importUC, log)

	pagesHandler, err := handler.NewPagesHandler(activityUC, explorerUC, log)
	if err != nil {
		log.Fatal("Failed to initialize page templates", zap.Error(err))
	}
	log.Info("HTTP handlers initialized")

	// 9. Initialize HTTP server
	server := httpDelivery.NewServer(
		cfg,
		log,
		activityHandler,
		explorerHandler,
		exportHandler,
		heatmapHandler,
		statsHandler,
		uploadHandler,
		pagesHandler,
	)
	log.Info("HTTP server initialized")

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}

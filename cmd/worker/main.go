package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/config"
	"github.com/tilescout/tilescout/internal/importer"
	"github.com/tilescout/tilescout/internal/infrastructure/strava"
	"github.com/tilescout/tilescout/internal/pkg/logger"
	"github.com/tilescout/tilescout/internal/repository/cache"
	"github.com/tilescout/tilescout/internal/repository/postgres"
	redisRepo "github.com/tilescout/tilescout/internal/repository/redis"
	"github.com/tilescout/tilescout/internal/usecase"
	"github.com/tilescout/tilescout/internal/worker"
	"github.com/tilescout/tilescout/internal/worker/ingest"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting tilescout ingest worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.String("import_dir", cfg.Import.Dir),
		zap.Duration("scan_interval", cfg.Worker.ScanInterval))

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

	// 5. Initialize repositories
	activityRepo := postgres.NewActivityRepository(db, log)
	tileRepo := postgres.NewTileRepository(db, log)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	// 6. Initialize use cases
	stravaClient := strava.NewClient(&cfg.Strava, log)
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

	// 7. Initialize workers
	ingestWorker := ingest.NewIngestWorker(
		streamRepo,
		importUC,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.MaxRetries,
		log,
	)
	scanWorker := ingest.NewScanWorker(
		activityRepo,
		streamRepo,
		cfg.Import.Dir,
		cfg.Worker.ScanInterval,
		log,
	)

	// 8. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(ingestWorker)
	workerManager.Register(scanWorker)

	if cfg.Worker.StravaSyncEnabled && stravaClient.Configured() {
		workerManager.Register(ingest.NewStravaSyncWorker(
			importUC,
			cfg.Worker.StravaSyncEvery,
			log,
		))
	} else {
		log.Info("Strava sync worker disabled")
	}

	// 9. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}

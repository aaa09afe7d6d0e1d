package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/usecase"
	"github.com/tilescout/tilescout/internal/worker"
)

// StravaSyncWorker runs an incremental Strava sync on a timer.
type StravaSyncWorker struct {
	*worker.BaseWorker
	importUC *usecase.ImportUseCase
	interval time.Duration
}

func NewStravaSyncWorker(
	importUC *usecase.ImportUseCase,
	interval time.Duration,
	logger *zap.Logger,
) *StravaSyncWorker {
	return &StravaSyncWorker{
		BaseWorker: worker.NewBaseWorker("strava-sync", "", logger),
		importUC:   importUC,
		interval:   interval,
	}
}

func (w *StravaSyncWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting StravaSyncWorker", zap.Duration("interval", w.interval))

	w.sync(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case <-ticker.C:
			w.sync(ctx)
		}
	}
}

func (w *StravaSyncWorker) sync(ctx context.Context) {
	logger := w.Logger()

	imported, err := w.importUC.SyncStrava(ctx, false)
	if err != nil {
		logger.Error("Strava sync failed", zap.Error(err))
		return
	}

	if imported > 0 {
		logger.Info("Strava sync finished", zap.Int("imported", imported))
	}
}

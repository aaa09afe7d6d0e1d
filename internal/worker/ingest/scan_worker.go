package ingest

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/domain/repository"
	"github.com/tilescout/tilescout/internal/worker"
)

// ScanWorker periodically walks the import directory and enqueues activity
// files not imported yet.
type ScanWorker struct {
	*worker.BaseWorker
	activityRepo repository.ActivityRepository
	streamRepo   repository.StreamRepository
	dir          string
	interval     time.Duration
}

func NewScanWorker(
	activityRepo repository.ActivityRepository,
	streamRepo repository.StreamRepository,
	dir string,
	interval time.Duration,
	logger *zap.Logger,
) *ScanWorker {
	return &ScanWorker{
		BaseWorker:   worker.NewBaseWorker("directory-scan", "", logger),
		activityRepo: activityRepo,
		streamRepo:   streamRepo,
		dir:          dir,
		interval:     interval,
	}
}

func (w *ScanWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting ScanWorker",
		zap.String("dir", w.dir),
		zap.Duration("interval", w.interval))

	// Scan once at startup, then on the ticker.
	w.scan(ctx)

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
			w.scan(ctx)
		}
	}
}

func (w *ScanWorker) scan(ctx context.Context) {
	logger := w.Logger()

	queued := 0
	err := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".gpx" && ext != ".fit" {
			return nil
		}

		exists, err := w.activityRepo.ExistsBySourcePath(ctx, path)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		if err := w.streamRepo.PublishIngest(ctx, domain.ActivityIngestEvent{
			Source: domain.SourceFile,
			Path:   path,
		}); err != nil {
			return err
		}
		queued++
		return nil
	})
	if err != nil {
		logger.Error("Directory scan failed", zap.String("dir", w.dir), zap.Error(err))
		return
	}

	if queued > 0 {
		logger.Info("Queued activity files", zap.Int("count", queued))
	}
}

package repository

import (
	"context"
	"time"

	"github.com/tilescout/tilescout/internal/domain"
)

// CacheRepository is the byte-level cache plus typed helpers for the
// expensive explorer artifacts.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	GetExplorerSummary(ctx context.Context, zoom int) (*domain.ExplorerSummary, error)
	SetExplorerSummary(ctx context.Context, summary *domain.ExplorerSummary, ttl time.Duration) error

	GetHeatmapTile(ctx context.Context, z, x, y int) ([]byte, error)
	SetHeatmapTile(ctx context.Context, z, x, y int, png []byte, ttl time.Duration) error

	// InvalidateExplorer drops all derived explorer/export/stats keys.
	// Called after a successful import.
	InvalidateExplorer(ctx context.Context) error
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/domain/repository"
)

// Key layout. Derived explorer artifacts share the "explorer:" prefix so one
// invalidation sweep covers summary, geojson, exports and stats.
const (
	keyExplorerPrefix  = "explorer:"
	keyExplorerSummary = "explorer:summary:%d"
	keyHeatmapTile     = "heatmap:%d:%d:%d"
	keyHeatmapPrefix   = "heatmap:"
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(r *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: r.Client(),
		logger: r.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return val > 0, nil
}

func (r *cacheRepository) GetExplorerSummary(ctx context.Context, zoom int) (*domain.ExplorerSummary, error) {
	data, err := r.Get(ctx, fmt.Sprintf(keyExplorerSummary, zoom))
	if err != nil || data == nil {
		return nil, err
	}

	var summary domain.ExplorerSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		r.logger.Warn("Corrupt cached summary, dropping", zap.Error(err))
		_ = r.Delete(ctx, fmt.Sprintf(keyExplorerSummary, zoom))
		return nil, nil
	}
	return &summary, nil
}

func (r *cacheRepository) SetExplorerSummary(ctx context.Context, summary *domain.ExplorerSummary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	return r.Set(ctx, fmt.Sprintf(keyExplorerSummary, summary.Zoom), data, ttl)
}

func (r *cacheRepository) GetHeatmapTile(ctx context.Context, z, x, y int) ([]byte, error) {
	return r.Get(ctx, fmt.Sprintf(keyHeatmapTile, z, x, y))
}

func (r *cacheRepository) SetHeatmapTile(ctx context.Context, z, x, y int, png []byte, ttl time.Duration) error {
	return r.Set(ctx, fmt.Sprintf(keyHeatmapTile, z, x, y), png, ttl)
}

// InvalidateExplorer scans and deletes all derived keys. SCAN keeps the sweep
// non-blocking on large keyspaces.
func (r *cacheRepository) InvalidateExplorer(ctx context.Context) error {
	for _, prefix := range []string{keyExplorerPrefix, keyHeatmapPrefix} {
		iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
				r.logger.Error("Failed to invalidate key",
					zap.String("key", iter.Val()),
					zap.Error(err))
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("cache invalidate scan: %w", err)
		}
	}

	r.logger.Info("Explorer cache invalidated")
	return nil
}

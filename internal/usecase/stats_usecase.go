package usecase

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/domain/repository"
	"github.com/tilescout/tilescout/internal/usecase/dto"
)

const keyStats = "explorer:stats"

type StatsUseCase struct {
	activityRepo repository.ActivityRepository
	explorerUC   *ExplorerUseCase
	cacheRepo    repository.CacheRepository
	logger       *zap.Logger
	cacheTTL     time.Duration
}

func NewStatsUseCase(
	activityRepo repository.ActivityRepository,
	explorerUC *ExplorerUseCase,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *StatsUseCase {
	return &StatsUseCase{
		activityRepo: activityRepo,
		explorerUC:   explorerUC,
		cacheRepo:    cacheRepo,
		logger:       logger,
		cacheTTL:     cacheTTL,
	}
}

// GetStatistics bundles the activity totals with the explorer summary and
// the distance-per-year chart spec for the stats view.
func (uc *StatsUseCase) GetStatistics(ctx context.Context) (*dto.StatsResponse, error) {
	stats, err := uc.statistics(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := uc.explorerUC.GetSummary(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.StatsResponse{
		Statistics:         *stats,
		Explorer:           summary,
		YearlyDistancePlot: yearlyDistancePlotSpec(stats.ByYear),
	}, nil
}

func (uc *StatsUseCase) statistics(ctx context.Context) (*domain.Statistics, error) {
	if data, err := uc.cacheRepo.Get(ctx, keyStats); err == nil && data != nil {
		var stats domain.Statistics
		if err := json.Unmarshal(data, &stats); err == nil {
			return &stats, nil
		}
		// Corrupt entry, rebuild below.
		_ = uc.cacheRepo.Delete(ctx, keyStats)
	}

	byKind, err := uc.activityRepo.TotalsByKind(ctx)
	if err != nil {
		uc.logger.Error("Failed to aggregate by kind", zap.Error(err))
		return nil, err
	}

	byYear, err := uc.activityRepo.TotalsByYear(ctx)
	if err != nil {
		uc.logger.Error("Failed to aggregate by year", zap.Error(err))
		return nil, err
	}

	stats := &domain.Statistics{
		ByKind:      byKind,
		ByYear:      byYear,
		LastUpdated: time.Now().UTC(),
	}
	for _, k := range byKind {
		stats.TotalActivities += k.Count
		stats.TotalDistanceKm += k.DistanceKm
		stats.TotalElapsedSec += k.ElapsedSec
	}

	if data, err := json.Marshal(stats); err == nil {
		if err := uc.cacheRepo.Set(ctx, keyStats, data, uc.cacheTTL); err != nil {
			uc.logger.Warn("Failed to cache statistics", zap.Error(err))
		}
	}

	return stats, nil
}

// yearlyDistancePlotSpec is the Vega-Lite spec of the distance-per-year bar
// chart on the stats view.
func yearlyDistancePlotSpec(byYear []domain.YearTotals) map[string]interface{} {
	values := make([]map[string]interface{}, 0, len(byYear))
	for _, y := range byYear {
		values = append(values, map[string]interface{}{
			"year":        y.Year,
			"distance_km": y.DistanceKm,
		})
	}

	return map[string]interface{}{
		"$schema": "https://vega.github.io/schema/vega-lite/v5.json",
		"data":    map[string]interface{}{"values": values},
		"mark":    "bar",
		"encoding": map[string]interface{}{
			"x": map[string]interface{}{"field": "year", "type": "ordinal"},
			"y": map[string]interface{}{"field": "distance_km", "type": "quantitative", "title": "km"},
		},
	}
}

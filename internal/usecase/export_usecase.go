package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tkrajina/gpxgo/gpx"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/domain/repository"
)

// Export cache keys live under the explorer prefix so the post-import
// invalidation sweep clears them together with the summary.
const (
	keyExportExploredGeoJSON = "explorer:export:explored.geojson"
	keyExportExploredGPX     = "explorer:export:explored.gpx"
	keyExportMissingGeoJSON  = "explorer:export:missing_tiles.geojson"
	keyExportMissingGPX      = "explorer:export:missing_tiles.gpx"

	gpxCreator = "tilescout"
)

type ExportUseCase struct {
	explorerUC *ExplorerUseCase
	cacheRepo  repository.CacheRepository
	logger     *zap.Logger
	cacheTTL   time.Duration
}

func NewExportUseCase(
	explorerUC *ExplorerUseCase,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *ExportUseCase {
	return &ExportUseCase{
		explorerUC: explorerUC,
		cacheRepo:  cacheRepo,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

func (uc *ExportUseCase) ExploredGeoJSON(ctx context.Context) ([]byte, error) {
	return uc.cached(ctx, keyExportExploredGeoJSON, func(ctx context.Context) ([]byte, error) {
		fc, err := uc.explorerUC.GetExploredGeoJSON(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(fc)
	})
}

func (uc *ExportUseCase) MissingGeoJSON(ctx context.Context) ([]byte, error) {
	return uc.cached(ctx, keyExportMissingGeoJSON, func(ctx context.Context) ([]byte, error) {
		fc, err := uc.explorerUC.GetMissingGeoJSON(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(fc)
	})
}

// ExploredGPX exports the center of every explored tile as a GPX waypoint,
// for devices and apps that cannot display GeoJSON overlays.
func (uc *ExportUseCase) ExploredGPX(ctx context.Context) ([]byte, error) {
	return uc.cached(ctx, keyExportExploredGPX, func(ctx context.Context) ([]byte, error) {
		points, err := uc.explorerUC.ExploredTileCenters(ctx)
		if err != nil {
			return nil, err
		}
		return waypointGPX("Explored tiles", points)
	})
}

func (uc *ExportUseCase) MissingGPX(ctx context.Context) ([]byte, error) {
	return uc.cached(ctx, keyExportMissingGPX, func(ctx context.Context) ([]byte, error) {
		points, err := uc.explorerUC.MissingTileCenters(ctx)
		if err != nil {
			return nil, err
		}
		return waypointGPX("Missing tiles", points)
	})
}

func (uc *ExportUseCase) cached(ctx context.Context, key string, build func(context.Context) ([]byte, error)) ([]byte, error) {
	if data, err := uc.cacheRepo.Get(ctx, key); err == nil && data != nil {
		return data, nil
	}

	data, err := build(ctx)
	if err != nil {
		return nil, err
	}

	if err := uc.cacheRepo.Set(ctx, key, data, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache export", zap.String("key", key), zap.Error(err))
	}

	return data, nil
}

func waypointGPX(name string, points []domain.Point) ([]byte, error) {
	doc := &gpx.GPX{
		Creator: gpxCreator,
		Name:    name,
	}
	for i, p := range points {
		doc.Waypoints = append(doc.Waypoints, gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  p.Lat,
				Longitude: p.Lon,
			},
			Name: fmt.Sprintf("%s %d", name, i+1),
		})
	}
	return doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
}

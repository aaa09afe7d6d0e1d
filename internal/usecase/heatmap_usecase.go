package usecase

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"time"

	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/domain/repository"
	apperrors "github.com/tilescout/tilescout/internal/pkg/errors"
	"github.com/tilescout/tilescout/internal/pkg/tiles"
)

const tileSize = 256

type HeatmapUseCase struct {
	activityRepo repository.ActivityRepository
	cacheRepo    repository.CacheRepository
	logger       *zap.Logger
	maxPerPixel  int
	cacheTTL     time.Duration
}

func NewHeatmapUseCase(
	activityRepo repository.ActivityRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	maxPerPixel int,
	cacheTTL time.Duration,
) *HeatmapUseCase {
	return &HeatmapUseCase{
		activityRepo: activityRepo,
		cacheRepo:    cacheRepo,
		logger:       logger,
		maxPerPixel:  maxPerPixel,
		cacheTTL:     cacheTTL,
	}
}

// RenderTile produces the 256x256 PNG heatmap overlay for one slippy tile.
// Point counts are accumulated per pixel, capped so a commute ridden daily
// cannot wash out the rest, histogram-equalized so rarely and frequently
// ridden roads both stay visible, then smoothed with a Gaussian kernel
// before the colormap.
func (uc *HeatmapUseCase) RenderTile(ctx context.Context, z, x, y int) ([]byte, error) {
	if !tiles.ValidTile(z, x, y) {
		return nil, apperrors.ErrInvalidTileCoordinates
	}

	if cached, err := uc.cacheRepo.GetHeatmapTile(ctx, z, x, y); err == nil && cached != nil {
		return cached, nil
	}

	b := tiles.TileBounds(x, y, z)
	points, err := uc.activityRepo.PointsInBounds(ctx, domain.BoundingBox{
		MinLat: b.MinLat,
		MinLon: b.MinLon,
		MaxLat: b.MaxLat,
		MaxLon: b.MaxLon,
	})
	if err != nil {
		uc.logger.Error("Failed to load heatmap points",
			zap.Int("z", z), zap.Int("x", x), zap.Int("y", y),
			zap.Error(err))
		return nil, err
	}

	counts := uc.accumulate(points, z, x, y)
	img := renderHeatmap(counts)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperrors.ErrInternalServer.WithDetails(map[string]interface{}{
			"error": err.Error(),
		})
	}
	data := buf.Bytes()

	if err := uc.cacheRepo.SetHeatmapTile(ctx, z, x, y, data, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache heatmap tile", zap.Error(err))
	}

	return data, nil
}

func (uc *HeatmapUseCase) accumulate(points []domain.TrackPoint, z, x, y int) *[tileSize][tileSize]int {
	var counts [tileSize][tileSize]int
	for _, p := range points {
		fx, fy := tiles.LatLonToXY(p.Lat, p.Lon, z)
		px := int((fx - float64(x)) * tileSize)
		py := int((fy - float64(y)) * tileSize)
		if px < 0 || px >= tileSize || py < 0 || py >= tileSize {
			continue
		}
		if counts[py][px] < uc.maxPerPixel {
			counts[py][px]++
		}
	}
	return &counts
}

// renderHeatmap equalizes the count histogram and applies the "hot"
// colormap. Empty pixels stay fully transparent.
func renderHeatmap(counts *[tileSize][tileSize]int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, tileSize, tileSize))

	// Histogram over nonzero counts only, so sparse tiles still use the
	// full color range.
	maxCount := 0
	for py := 0; py < tileSize; py++ {
		for px := 0; px < tileSize; px++ {
			if counts[py][px] > maxCount {
				maxCount = counts[py][px]
			}
		}
	}
	if maxCount == 0 {
		return img
	}

	hist := make([]int, maxCount+1)
	total := 0
	for py := 0; py < tileSize; py++ {
		for px := 0; px < tileSize; px++ {
			if c := counts[py][px]; c > 0 {
				hist[c]++
				total++
			}
		}
	}

	// cdf[c] in (0, 1]; equalization stretches whatever count distribution
	// the tile has across the colormap.
	cdf := make([]float64, maxCount+1)
	running := 0
	for c := 1; c <= maxCount; c++ {
		running += hist[c]
		cdf[c] = float64(running) / float64(total)
	}

	intensity := new([tileSize][tileSize]float64)
	for py := 0; py < tileSize; py++ {
		for px := 0; px < tileSize; px++ {
			if c := counts[py][px]; c > 0 {
				intensity[py][px] = cdf[c]
			}
		}
	}

	// Kernel density estimation with a normal kernel, sigma one pixel, so
	// single-track roads render as a soft band instead of a 1px hard line.
	intensity = gaussianBlur(intensity)

	peak := 0.0
	for py := 0; py < tileSize; py++ {
		for px := 0; px < tileSize; px++ {
			if intensity[py][px] > peak {
				peak = intensity[py][px]
			}
		}
	}
	if peak == 0 {
		return img
	}

	for py := 0; py < tileSize; py++ {
		for px := 0; px < tileSize; px++ {
			v := intensity[py][px] / peak
			if v == 0 {
				continue
			}
			img.SetNRGBA(px, py, hotColor(v))
		}
	}

	return img
}

// blurKernel is a normalized 1D Gaussian with sigma 1, radius 2.
var blurKernel = [5]float64{0.05449, 0.24420, 0.40262, 0.24420, 0.05449}

// gaussianBlur applies the kernel separably; out-of-range taps are skipped.
func gaussianBlur(src *[tileSize][tileSize]float64) *[tileSize][tileSize]float64 {
	tmp := new([tileSize][tileSize]float64)
	for py := 0; py < tileSize; py++ {
		for px := 0; px < tileSize; px++ {
			var sum float64
			for k := -2; k <= 2; k++ {
				x := px + k
				if x < 0 || x >= tileSize {
					continue
				}
				sum += src[py][x] * blurKernel[k+2]
			}
			tmp[py][px] = sum
		}
	}

	dst := new([tileSize][tileSize]float64)
	for py := 0; py < tileSize; py++ {
		for px := 0; px < tileSize; px++ {
			var sum float64
			for k := -2; k <= 2; k++ {
				y := py + k
				if y < 0 || y >= tileSize {
					continue
				}
				sum += tmp[y][px] * blurKernel[k+2]
			}
			dst[py][px] = sum
		}
	}
	return dst
}

// hotColor maps t in [0, 1] through the classic black-red-yellow-white ramp.
func hotColor(t float64) color.NRGBA {
	r := clampUnit(t * 3.0)
	g := clampUnit(t*3.0 - 1.0)
	b := clampUnit(t*3.0 - 2.0)
	return color.NRGBA{
		R: uint8(r * 255),
		G: uint8(g * 255),
		B: uint8(b * 255),
		A: 200,
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

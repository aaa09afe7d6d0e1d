package usecase

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	apperrors "github.com/tilescout/tilescout/internal/pkg/errors"
	"github.com/tilescout/tilescout/internal/pkg/tiles"
)

func newHeatmapForTest(points []domain.TrackPoint) (*HeatmapUseCase, *MockCacheRepository) {
	repo := new(MockActivityRepository)
	repo.On("PointsInBounds", mock.Anything, mock.Anything).Return(points, nil)

	cacheRepo := new(MockCacheRepository)
	cacheRepo.On("GetHeatmapTile", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	cacheRepo.On("SetHeatmapTile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	return NewHeatmapUseCase(repo, cacheRepo, zap.NewNop(), 30, time.Hour), cacheRepo
}

func TestRenderTile_InvalidCoordinates(t *testing.T) {
	uc, _ := newHeatmapForTest(nil)

	_, err := uc.RenderTile(context.Background(), 14, -1, 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidTileCoordinates, err)
}

func TestRenderTile_EmptyTileIsTransparent(t *testing.T) {
	uc, _ := newHeatmapForTest(nil)

	data, err := uc.RenderTile(context.Background(), 14, 8515, 5503)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())

	_, _, _, a := img.At(128, 128).RGBA()
	assert.Zero(t, a)
}

func TestRenderTile_PointsLightUpPixels(t *testing.T) {
	// Center of the Bonn tile at zoom 14.
	b := tiles.TileBounds(8515, 5503, 14)
	lat, lon := b.Center()

	points := make([]domain.TrackPoint, 10)
	for i := range points {
		points[i] = domain.TrackPoint{Lat: lat, Lon: lon}
	}

	uc, _ := newHeatmapForTest(points)

	data, err := uc.RenderTile(context.Background(), 14, 8515, 5503)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	found := false
	for py := 0; py < 256 && !found; py++ {
		for px := 0; px < 256; px++ {
			if _, _, _, a := img.At(px, py).RGBA(); a > 0 {
				found = true
				break
			}
		}
	}
	assert.True(t, found, "expected at least one lit pixel")
}

func TestRenderHeatmap_KernelSpreadsIntensity(t *testing.T) {
	counts := new([tileSize][tileSize]int)
	counts[128][128] = 5

	img := renderHeatmap(counts)

	center := img.NRGBAAt(128, 128)
	next := img.NRGBAAt(129, 128)
	far := img.NRGBAAt(134, 128)

	// The kernel lights the pixels around a track, center brightest, and
	// dies off within its radius.
	assert.NotZero(t, center.A)
	assert.NotZero(t, next.A)
	assert.Zero(t, far.A)
	assert.GreaterOrEqual(t, center.G, next.G)
}

func TestRenderTile_CacheHit(t *testing.T) {
	cached := []byte("png-bytes")

	repo := new(MockActivityRepository)
	cacheRepo := new(MockCacheRepository)
	cacheRepo.On("GetHeatmapTile", mock.Anything, 14, 8515, 5503).Return(cached, nil)

	uc := NewHeatmapUseCase(repo, cacheRepo, zap.NewNop(), 30, time.Hour)

	data, err := uc.RenderTile(context.Background(), 14, 8515, 5503)
	require.NoError(t, err)
	assert.Equal(t, cached, data)
	repo.AssertNotCalled(t, "PointsInBounds", mock.Anything, mock.Anything)
}

func TestHotColor_Ramp(t *testing.T) {
	low := hotColor(0.1)
	high := hotColor(1.0)

	// Low intensity is dark red, full intensity is white.
	assert.Greater(t, low.R, low.G)
	assert.Equal(t, uint8(255), high.R)
	assert.Equal(t, uint8(255), high.G)
	assert.Equal(t, uint8(255), high.B)
}

package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
)

func newExportForTest(t *testing.T, tiles []domain.Tile) (*ExportUseCase, *MockCacheRepository) {
	t.Helper()

	explorerUC, _ := newExplorerForTest(t, tiles)

	cacheRepo := new(MockCacheRepository)
	cacheRepo.On("Get", mock.Anything, mock.Anything).Return(nil, nil)
	cacheRepo.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	return NewExportUseCase(explorerUC, cacheRepo, zap.NewNop(), time.Hour), cacheRepo
}

func TestExploredGeoJSON_ValidFeatureCollection(t *testing.T) {
	visit := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	uc, _ := newExportForTest(t, blockTiles(100, 200, 2, 2, visit))

	data, err := uc.ExploredGeoJSON(context.Background())
	require.NoError(t, err)

	var fc domain.FeatureCollection
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 4)
}

func TestMissingGPX_WaypointPerHaloTile(t *testing.T) {
	visit := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	uc, _ := newExportForTest(t, []domain.Tile{tileAt(8515, 5503, visit)})

	data, err := uc.MissingGPX(context.Background())
	require.NoError(t, err)

	xml := string(data)
	assert.Contains(t, xml, "<gpx")
	assert.Equal(t, 4, strings.Count(xml, "<wpt"))
}

func TestExploredGeoJSON_ServedFromCache(t *testing.T) {
	cached := []byte(`{"type":"FeatureCollection","features":[]}`)

	explorerUC, _ := newExplorerForTest(t, nil)
	cacheRepo := new(MockCacheRepository)
	cacheRepo.On("Get", mock.Anything, keyExportExploredGeoJSON).Return(cached, nil)

	uc := NewExportUseCase(explorerUC, cacheRepo, zap.NewNop(), time.Hour)

	data, err := uc.ExploredGeoJSON(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached, data)
}

package tiles_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tilescout/tilescout/internal/pkg/tiles"
)

func TestLatLonToTile(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lon  float64
		zoom int
		x    int
		y    int
	}{
		{"origin at zoom 0", 0, 0, 0, 0, 0},
		{"greenwich at zoom 1", 51.4779, 0.0015, 1, 1, 0},
		{"bonn at zoom 14", 50.7374, 7.0982, 14, 8515, 5503},
		{"southern hemisphere", -33.8688, 151.2093, 14, 15073, 9831},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tiles.LatLonToTile(tt.lat, tt.lon, tt.zoom)
			assert.Equal(t, tt.x, x)
			assert.Equal(t, tt.y, y)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	// The tile computed for a point must contain that point.
	points := []struct{ lat, lon float64 }{
		{50.7374, 7.0982},
		{-33.8688, 151.2093},
		{64.1466, -21.9426},
		{0.0001, -0.0001},
	}

	for _, p := range points {
		x, y := tiles.LatLonToTile(p.lat, p.lon, 14)
		b := tiles.TileBounds(x, y, 14)
		assert.True(t, b.Contains(p.lat, p.lon),
			"tile (%d,%d) bounds %+v should contain %f,%f", x, y, b, p.lat, p.lon)
	}
}

func TestTileBoundsOrdering(t *testing.T) {
	b := tiles.TileBounds(8515, 5503, 14)
	assert.Less(t, b.MinLat, b.MaxLat)
	assert.Less(t, b.MinLon, b.MaxLon)

	lat, lon := b.Center()
	assert.True(t, b.Contains(lat, lon))
}

func TestTilePolygonClosed(t *testing.T) {
	ring := tiles.TilePolygon(8515, 5503, 14)
	assert.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4])
}

func TestValidTile(t *testing.T) {
	assert.True(t, tiles.ValidTile(14, 0, 0))
	assert.True(t, tiles.ValidTile(14, (1<<14)-1, (1<<14)-1))
	assert.False(t, tiles.ValidTile(14, 1<<14, 0))
	assert.False(t, tiles.ValidTile(14, -1, 0))
	assert.False(t, tiles.ValidTile(-1, 0, 0))
	assert.False(t, tiles.ValidTile(20, 0, 0))
}

func TestPoleClamping(t *testing.T) {
	// Latitudes beyond the Mercator cutoff must still map to a valid tile.
	x, y := tiles.LatLonToTile(89.9, 0, 14)
	assert.True(t, tiles.ValidTile(14, x, y))

	x, y = tiles.LatLonToTile(-89.9, 0, 14)
	assert.True(t, tiles.ValidTile(14, x, y))
}

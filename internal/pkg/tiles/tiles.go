// Package tiles implements slippy-map tile arithmetic in the Web Mercator
// projection, following the OSM slippy map tilenames convention.
package tiles

import "math"

const (
	// MaxZoom is the deepest zoom level accepted anywhere in the service.
	MaxZoom = 19

	// MaxLatitude is the Web Mercator latitude cutoff.
	MaxLatitude = 85.0511287798
)

// ValidZoom reports whether z is a usable zoom level.
func ValidZoom(z int) bool {
	return z >= 0 && z <= MaxZoom
}

// ValidTile reports whether (x, y) addresses a tile at zoom z.
func ValidTile(z, x, y int) bool {
	if !ValidZoom(z) {
		return false
	}
	n := 1 << uint(z)
	return x >= 0 && x < n && y >= 0 && y < n
}

// LatLonToXY projects a coordinate to fractional tile coordinates at zoom z.
func LatLonToXY(lat, lon float64, z int) (float64, float64) {
	lat = clampLat(lat)
	n := float64(int(1) << uint(z))
	x := (lon + 180.0) / 360.0 * n
	latRad := lat * math.Pi / 180.0
	y := (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n
	return x, y
}

// LatLonToTile returns the integer tile containing the coordinate at zoom z.
func LatLonToTile(lat, lon float64, z int) (int, int) {
	x, y := LatLonToXY(lat, lon, z)
	n := (1 << uint(z)) - 1
	return clampInt(int(math.Floor(x)), 0, n), clampInt(int(math.Floor(y)), 0, n)
}

// TileToLatLon returns the north-west corner of the tile.
func TileToLatLon(x, y, z int) (float64, float64) {
	n := float64(int(1) << uint(z))
	lon := float64(x)/n*360.0 - 180.0
	latRad := math.Atan(math.Sinh(math.Pi * (1.0 - 2.0*float64(y)/n)))
	return latRad * 180.0 / math.Pi, lon
}

// Bounds describes the geographic extent of a tile.
type Bounds struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// TileBounds returns the bounding box of tile (x, y) at zoom z.
func TileBounds(x, y, z int) Bounds {
	north, west := TileToLatLon(x, y, z)
	south, east := TileToLatLon(x+1, y+1, z)
	return Bounds{
		MinLat: south,
		MinLon: west,
		MaxLat: north,
		MaxLon: east,
	}
}

// Center returns the midpoint of b.
func (b Bounds) Center() (float64, float64) {
	return (b.MinLat + b.MaxLat) / 2.0, (b.MinLon + b.MaxLon) / 2.0
}

// Contains reports whether the point lies inside b.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// TilePolygon returns the tile outline as a closed GeoJSON ring in
// [lon, lat] order, first point repeated last.
func TilePolygon(x, y, z int) [][2]float64 {
	b := TileBounds(x, y, z)
	return [][2]float64{
		{b.MinLon, b.MaxLat},
		{b.MaxLon, b.MaxLat},
		{b.MaxLon, b.MinLat},
		{b.MinLon, b.MinLat},
		{b.MinLon, b.MaxLat},
	}
}

func clampLat(lat float64) float64 {
	if lat > MaxLatitude {
		return MaxLatitude
	}
	if lat < -MaxLatitude {
		return -MaxLatitude
	}
	return lat
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

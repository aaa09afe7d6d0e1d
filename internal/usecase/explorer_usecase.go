package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/domain/repository"
	"github.com/tilescout/tilescout/internal/pkg/tiles"
)

// Tile fill colors on the explorer map.
const (
	colorExplored   = "#4363d8"
	colorCluster    = "#3cb44b"
	colorMaxCluster = "#e6194b"
	colorMissing    = "#9e9e9e"
)

// Age gradient endpoints: oldest first visits render red, newest green.
var (
	ageOldColor = [3]int{0xd7, 0x19, 0x1c}
	ageNewColor = [3]int{0x1a, 0x96, 0x41}
)

type tileKey struct {
	X int
	Y int
}

// explorerState is the fully derived view of the tile set: membership,
// clusters and the largest explored square. Built once per computation and
// shared between the summary and both GeoJSON exports.
type explorerState struct {
	Zoom       int
	Tiles      map[tileKey]*domain.Tile
	Cluster    map[tileKey]int // cluster tile -> size of its component
	MaxCluster int
	SquareSize int
	SquareX    int
	SquareY    int
	OldestTime time.Time
	NewestTime time.Time
}

type ExplorerUseCase struct {
	tileRepo  repository.TileRepository
	cacheRepo repository.CacheRepository
	logger    *zap.Logger
	zoom      int
	cacheTTL  time.Duration
}

func NewExplorerUseCase(
	tileRepo repository.TileRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	zoom int,
	cacheTTL time.Duration,
) *ExplorerUseCase {
	return &ExplorerUseCase{
		tileRepo:  tileRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
		zoom:      zoom,
		cacheTTL:  cacheTTL,
	}
}

func (uc *ExplorerUseCase) Zoom() int {
	return uc.zoom
}

func (uc *ExplorerUseCase) GetSummary(ctx context.Context) (*domain.ExplorerSummary, error) {
	if cached, err := uc.cacheRepo.GetExplorerSummary(ctx, uc.zoom); err == nil && cached != nil {
		return cached, nil
	}

	state, err := uc.buildState(ctx)
	if err != nil {
		return nil, err
	}

	summary := uc.summaryFromState(state)

	if err := uc.cacheRepo.SetExplorerSummary(ctx, summary, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache explorer summary", zap.Error(err))
	}

	return summary, nil
}

// GetExploredGeoJSON renders every explored tile as a polygon feature.
// Each feature carries both the cluster color and the age color; the page
// shows exactly one of the two layers at a time.
func (uc *ExplorerUseCase) GetExploredGeoJSON(ctx context.Context) (*domain.FeatureCollection, error) {
	state, err := uc.buildState(ctx)
	if err != nil {
		return nil, err
	}

	fc := domain.NewFeatureCollection()
	for key, tile := range state.Tiles {
		clusterSize := state.Cluster[key]

		color := colorExplored
		if clusterSize > 0 {
			color = colorCluster
			if clusterSize == state.MaxCluster {
				color = colorMaxCluster
			}
		}

		fc.Features = append(fc.Features, domain.NewPolygon(
			tiles.TilePolygon(key.X, key.Y, state.Zoom),
			map[string]interface{}{
				"x":                   key.X,
				"y":                   key.Y,
				"zoom":                state.Zoom,
				"first_visit_date":    tile.FirstVisit.Format("2006-01-02"),
				"first_activity_id":   tile.FirstActivityID.String(),
				"first_activity_name": tile.FirstActivityName,
				"visit_count":         tile.VisitCount,
				"cluster_size":        clusterSize,
				"color":               color,
				"age_color":           ageColor(tile.FirstVisit, state.OldestTime, state.NewestTime),
			},
		))
	}

	return fc, nil
}

// GetMissingGeoJSON renders the halo of unexplored tiles: every tile that
// is a 4-neighbor of an explored tile but not explored itself.
func (uc *ExplorerUseCase) GetMissingGeoJSON(ctx context.Context) (*domain.FeatureCollection, error) {
	state, err := uc.buildState(ctx)
	if err != nil {
		return nil, err
	}

	fc := domain.NewFeatureCollection()
	for _, key := range missingTiles(state) {
		fc.Features = append(fc.Features, domain.NewPolygon(
			tiles.TilePolygon(key.X, key.Y, state.Zoom),
			map[string]interface{}{
				"x":     key.X,
				"y":     key.Y,
				"zoom":  state.Zoom,
				"color": colorMissing,
			},
		))
	}

	return fc, nil
}

// MissingTileCenters returns the center point of each missing tile, for the
// GPX waypoint export.
func (uc *ExplorerUseCase) MissingTileCenters(ctx context.Context) ([]domain.Point, error) {
	state, err := uc.buildState(ctx)
	if err != nil {
		return nil, err
	}

	keys := missingTiles(state)
	points := make([]domain.Point, 0, len(keys))
	for _, key := range keys {
		lat, lon := tiles.TileBounds(key.X, key.Y, state.Zoom).Center()
		points = append(points, domain.Point{Lat: lat, Lon: lon})
	}
	return points, nil
}

// ExploredTileCenters returns the center point of each explored tile.
func (uc *ExplorerUseCase) ExploredTileCenters(ctx context.Context) ([]domain.Point, error) {
	state, err := uc.buildState(ctx)
	if err != nil {
		return nil, err
	}

	points := make([]domain.Point, 0, len(state.Tiles))
	for key := range state.Tiles {
		lat, lon := tiles.TileBounds(key.X, key.Y, state.Zoom).Center()
		points = append(points, domain.Point{Lat: lat, Lon: lon})
	}
	return points, nil
}

func (uc *ExplorerUseCase) buildState(ctx context.Context) (*explorerState, error) {
	list, err := uc.tileRepo.ListByZoom(ctx, uc.zoom)
	if err != nil {
		uc.logger.Error("Failed to load tiles", zap.Int("zoom", uc.zoom), zap.Error(err))
		return nil, err
	}

	state := &explorerState{
		Zoom:    uc.zoom,
		Tiles:   make(map[tileKey]*domain.Tile, len(list)),
		Cluster: make(map[tileKey]int),
	}
	for i := range list {
		t := &list[i]
		state.Tiles[tileKey{t.X, t.Y}] = t
		if state.OldestTime.IsZero() || t.FirstVisit.Before(state.OldestTime) {
			state.OldestTime = t.FirstVisit
		}
		if t.FirstVisit.After(state.NewestTime) {
			state.NewestTime = t.FirstVisit
		}
	}

	computeClusters(state)
	computeLargestSquare(state)

	return state, nil
}

func (uc *ExplorerUseCase) summaryFromState(state *explorerState) *domain.ExplorerSummary {
	summary := &domain.ExplorerSummary{
		Zoom:            state.Zoom,
		NumTiles:        len(state.Tiles),
		NumClusterTiles: len(state.Cluster),
		MaxClusterSize:  state.MaxCluster,
		SquareSize:      state.SquareSize,
		SquareX:         state.SquareX,
		SquareY:         state.SquareY,
	}

	if len(state.Tiles) > 0 {
		minX, maxX, minY, maxY := boundsOf(state.Tiles)
		b := tiles.TileBounds((minX+maxX)/2, (minY+maxY)/2, state.Zoom)
		lat, lon := b.Center()
		summary.Center = domain.Point{Lat: lat, Lon: lon}
	}

	return summary
}

var neighborOffsets = [4]tileKey{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// computeClusters marks cluster tiles (explored tiles whose four direct
// neighbors are all explored) and sizes their connected components.
// Components connect through 4-adjacency between cluster tiles only.
func computeClusters(state *explorerState) {
	isCluster := func(key tileKey) bool {
		if _, ok := state.Tiles[key]; !ok {
			return false
		}
		for _, d := range neighborOffsets {
			if _, ok := state.Tiles[tileKey{key.X + d.X, key.Y + d.Y}]; !ok {
				return false
			}
		}
		return true
	}

	clusterSet := make(map[tileKey]bool)
	for key := range state.Tiles {
		if isCluster(key) {
			clusterSet[key] = true
		}
	}

	visited := make(map[tileKey]bool, len(clusterSet))
	for start := range clusterSet {
		if visited[start] {
			continue
		}

		component := []tileKey{start}
		visited[start] = true
		for i := 0; i < len(component); i++ {
			cur := component[i]
			for _, d := range neighborOffsets {
				next := tileKey{cur.X + d.X, cur.Y + d.Y}
				if clusterSet[next] && !visited[next] {
					visited[next] = true
					component = append(component, next)
				}
			}
		}

		for _, key := range component {
			state.Cluster[key] = len(component)
		}
		if len(component) > state.MaxCluster {
			state.MaxCluster = len(component)
		}
	}
}

// computeLargestSquare finds the biggest axis-aligned square made entirely
// of explored tiles. Standard dynamic programming over the bounding grid:
// side[x][y] is the side of the largest square whose bottom-right tile is
// (x, y).
func computeLargestSquare(state *explorerState) {
	if len(state.Tiles) == 0 {
		return
	}

	minX, maxX, minY, maxY := boundsOf(state.Tiles)
	w := maxX - minX + 1
	h := maxY - minY + 1

	side := make([][]int, w)
	for i := range side {
		side[i] = make([]int, h)
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if _, ok := state.Tiles[tileKey{minX + x, minY + y}]; !ok {
				continue
			}
			side[x][y] = 1
			if x > 0 && y > 0 {
				side[x][y] = 1 + min3(side[x-1][y], side[x][y-1], side[x-1][y-1])
			}
			if side[x][y] > state.SquareSize {
				state.SquareSize = side[x][y]
				state.SquareX = minX + x - side[x][y] + 1
				state.SquareY = minY + y - side[x][y] + 1
			}
		}
	}
}

func missingTiles(state *explorerState) []tileKey {
	seen := make(map[tileKey]bool)
	var keys []tileKey
	for key := range state.Tiles {
		for _, d := range neighborOffsets {
			next := tileKey{key.X + d.X, key.Y + d.Y}
			if _, explored := state.Tiles[next]; explored || seen[next] {
				continue
			}
			if !tiles.ValidTile(state.Zoom, next.X, next.Y) {
				continue
			}
			seen[next] = true
			keys = append(keys, next)
		}
	}
	return keys
}

func boundsOf(set map[tileKey]*domain.Tile) (minX, maxX, minY, maxY int) {
	first := true
	for key := range set {
		if first {
			minX, maxX, minY, maxY = key.X, key.X, key.Y, key.Y
			first = false
			continue
		}
		if key.X < minX {
			minX = key.X
		}
		if key.X > maxX {
			maxX = key.X
		}
		if key.Y < minY {
			minY = key.Y
		}
		if key.Y > maxY {
			maxY = key.Y
		}
	}
	return
}

func ageColor(visit, oldest, newest time.Time) string {
	frac := 1.0
	if span := newest.Sub(oldest); span > 0 {
		frac = float64(visit.Sub(oldest)) / float64(span)
	}
	r := lerp(ageOldColor[0], ageNewColor[0], frac)
	g := lerp(ageOldColor[1], ageNewColor[1], frac)
	b := lerp(ageOldColor[2], ageNewColor[2], frac)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func lerp(a, b int, frac float64) int {
	return a + int(frac*float64(b-a)+0.5)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

package postgres

import (
	"context"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/domain/repository"
	"github.com/tilescout/tilescout/internal/pkg/errors"
)

type tileRepository struct {
	db     *DB
	logger *zap.Logger
}

func NewTileRepository(db *DB, logger *zap.Logger) repository.TileRepository {
	return &tileRepository{
		db:     db,
		logger: logger,
	}
}

func (r *tileRepository) UpsertVisits(ctx context.Context, visits []domain.TileVisit) error {
	if len(visits) == 0 {
		return nil
	}

	n := len(visits)
	zooms := make([]int64, n)
	xs := make([]int64, n)
	ys := make([]int64, n)
	visited := make([]time.Time, n)
	activityIDs := make([]string, n)
	activityNames := make([]string, n)
	for i, v := range visits {
		zooms[i] = int64(v.Zoom)
		xs[i] = int64(v.X)
		ys[i] = int64(v.Y)
		visited[i] = v.VisitedAt
		activityIDs[i] = v.ActivityID.String()
		activityNames[i] = v.ActivityName
	}

	// Earliest visit wins for first_visit; re-visits bump the counters.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tiles (zoom, x, y, first_visit, first_activity_id, first_activity_name, last_visit, visit_count)
		SELECT t.zoom, t.x, t.y, t.visited_at, t.activity_id::uuid, t.activity_name, t.visited_at, 1
		FROM unnest(
			$1::bigint[], $2::bigint[], $3::bigint[],
			$4::timestamptz[], $5::text[], $6::text[]
		) AS t(zoom, x, y, visited_at, activity_id, activity_name)
		ON CONFLICT (zoom, x, y) DO UPDATE SET
			first_visit         = LEAST(tiles.first_visit, EXCLUDED.first_visit),
			first_activity_id   = CASE WHEN EXCLUDED.first_visit < tiles.first_visit
			                           THEN EXCLUDED.first_activity_id ELSE tiles.first_activity_id END,
			first_activity_name = CASE WHEN EXCLUDED.first_visit < tiles.first_visit
			                           THEN EXCLUDED.first_activity_name ELSE tiles.first_activity_name END,
			last_visit          = GREATEST(tiles.last_visit, EXCLUDED.last_visit),
			visit_count         = tiles.visit_count + 1`,
		pq.Array(zooms), pq.Array(xs), pq.Array(ys),
		pq.Array(visited), pq.Array(activityIDs), pq.Array(activityNames),
	)
	if err != nil {
		r.logger.Error("Failed to upsert tile visits",
			zap.Int("count", n),
			zap.Error(err))
		return errors.ErrDatabaseError
	}

	return nil
}

func (r *tileRepository) ListByZoom(ctx context.Context, zoom int) ([]domain.Tile, error) {
	tiles := []domain.Tile{}
	err := r.db.SelectContext(ctx, &tiles, `
		SELECT zoom, x, y, first_visit, first_activity_id, first_activity_name, last_visit, visit_count
		FROM tiles
		WHERE zoom = $1
		ORDER BY x, y`, zoom)
	if err != nil {
		r.logger.Error("Failed to list tiles", zap.Int("zoom", zoom), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return tiles, nil
}


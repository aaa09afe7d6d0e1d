package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/domain/repository"
	"github.com/tilescout/tilescout/internal/pkg/errors"
)

type activityRepository struct {
	db     *DB
	logger *zap.Logger
}

func NewActivityRepository(db *DB, logger *zap.Logger) repository.ActivityRepository {
	return &activityRepository{
		db:     db,
		logger: logger,
	}
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity, track *domain.Track) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return errors.ErrDatabaseError
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO activities (
			id, name, kind, commute, distance_km, elapsed_sec, moving_sec,
			start_time, calories, equipment, source, source_path, strava_id,
			num_points, avg_speed_kmh, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		activity.ID, activity.Name, activity.Kind, activity.Commute,
		activity.DistanceKm, activity.ElapsedSec, activity.MovingSec,
		activity.StartTime, activity.Calories, activity.Equipment,
		activity.Source, activity.SourcePath, activity.StravaID,
		activity.NumPoints, activity.AvgSpeedKmh, activity.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert activity",
			zap.String("id", activity.ID.String()),
			zap.Error(err))
		return errors.ErrDatabaseError
	}

	// Bulk insert of the track via unnest over parallel column arrays.
	n := len(track.Points)
	idxs := make([]int64, n)
	lats := make([]float64, n)
	lons := make([]float64, n)
	elevations := make([]float64, n)
	times := make([]time.Time, n)
	heartRates := make([]int64, n)
	speeds := make([]float64, n)
	for i, p := range track.Points {
		idxs[i] = int64(i)
		lats[i] = p.Lat
		lons[i] = p.Lon
		elevations[i] = p.Elevation
		times[i] = p.Time
		heartRates[i] = int64(p.HeartRate)
		speeds[i] = p.SpeedKmh
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO activity_points (activity_id, idx, lat, lon, elevation, recorded_at, heart_rate, speed_kmh)
		SELECT $1, t.idx, t.lat, t.lon, t.elevation, t.recorded_at, t.heart_rate, t.speed_kmh
		FROM unnest(
			$2::bigint[], $3::float8[], $4::float8[], $5::float8[],
			$6::timestamptz[], $7::bigint[], $8::float8[]
		) AS t(idx, lat, lon, elevation, recorded_at, heart_rate, speed_kmh)`,
		activity.ID,
		pq.Array(idxs), pq.Array(lats), pq.Array(lons), pq.Array(elevations),
		pq.Array(times), pq.Array(heartRates), pq.Array(speeds),
	)
	if err != nil {
		r.logger.Error("Failed to insert track points",
			zap.String("id", activity.ID.String()),
			zap.Int("points", n),
			zap.Error(err))
		return errors.ErrDatabaseError
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit activity insert", zap.Error(err))
		return errors.ErrDatabaseError
	}

	return nil
}

func (r *activityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	var activity domain.Activity
	err := r.db.GetContext(ctx, &activity,
		`SELECT * FROM activities WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrActivityNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get activity", zap.String("id", id.String()), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return &activity, nil
}

func (r *activityRepository) List(ctx context.Context, filter domain.ActivityFilter) ([]domain.Activity, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if len(filter.Kinds) > 0 {
		where += fmt.Sprintf(" AND kind = ANY($%d)", argIdx)
		args = append(args, pq.Array(filter.Kinds))
		argIdx++
	}
	if filter.Commute != nil {
		where += fmt.Sprintf(" AND commute = $%d", argIdx)
		args = append(args, *filter.Commute)
		argIdx++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM activities"+where, args...); err != nil {
		r.logger.Error("Failed to count activities", zap.Error(err))
		return nil, 0, errors.ErrDatabaseError
	}

	query := "SELECT * FROM activities" + where + " ORDER BY start_time DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	activities := []domain.Activity{}
	if err := r.db.SelectContext(ctx, &activities, query, args...); err != nil {
		r.logger.Error("Failed to list activities", zap.Error(err))
		return nil, 0, errors.ErrDatabaseError
	}

	return activities, total, nil
}

func (r *activityRepository) GetTrack(ctx context.Context, id uuid.UUID) (*domain.Track, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT lat, lon, elevation, recorded_at, heart_rate, speed_kmh
		FROM activity_points
		WHERE activity_id = $1
		ORDER BY idx`, id)
	if err != nil {
		r.logger.Error("Failed to get track", zap.String("id", id.String()), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	defer rows.Close()

	track := &domain.Track{ActivityID: id}
	for rows.Next() {
		var p domain.TrackPoint
		if err := rows.Scan(&p.Lat, &p.Lon, &p.Elevation, &p.Time, &p.HeartRate, &p.SpeedKmh); err != nil {
			r.logger.Error("Failed to scan track point", zap.Error(err))
			return nil, errors.ErrDatabaseError
		}
		track.Points = append(track.Points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError
	}

	if len(track.Points) == 0 {
		// No points means no such activity (points are written transactionally).
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}

	return track, nil
}

func (r *activityRepository) PointsInBounds(ctx context.Context, bounds domain.BoundingBox) ([]domain.TrackPoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT lat, lon, elevation, recorded_at, heart_rate, speed_kmh
		FROM activity_points
		WHERE lat BETWEEN $1 AND $2 AND lon BETWEEN $3 AND $4`,
		bounds.MinLat, bounds.MaxLat, bounds.MinLon, bounds.MaxLon)
	if err != nil {
		r.logger.Error("Failed to query points in bounds", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	defer rows.Close()

	var points []domain.TrackPoint
	for rows.Next() {
		var p domain.TrackPoint
		if err := rows.Scan(&p.Lat, &p.Lon, &p.Elevation, &p.Time, &p.HeartRate, &p.SpeedKmh); err != nil {
			r.logger.Error("Failed to scan point", zap.Error(err))
			return nil, errors.ErrDatabaseError
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError
	}

	return points, nil
}

func (r *activityRepository) ExistsByStravaID(ctx context.Context, stravaID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM activities WHERE strava_id = $1)`, stravaID)
	if err != nil {
		r.logger.Error("Failed to check strava id", zap.Int64("strava_id", stravaID), zap.Error(err))
		return false, errors.ErrDatabaseError
	}
	return exists, nil
}

func (r *activityRepository) ExistsBySourcePath(ctx context.Context, path string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM activities WHERE source_path = $1)`, path)
	if err != nil {
		r.logger.Error("Failed to check source path", zap.String("path", path), zap.Error(err))
		return false, errors.ErrDatabaseError
	}
	return exists, nil
}

func (r *activityRepository) LatestStartTime(ctx context.Context) (int64, error) {
	var ts sql.NullInt64
	err := r.db.GetContext(ctx, &ts,
		`SELECT EXTRACT(EPOCH FROM MAX(start_time))::bigint FROM activities`)
	if err != nil {
		r.logger.Error("Failed to get latest start time", zap.Error(err))
		return 0, errors.ErrDatabaseError
	}
	if !ts.Valid {
		return 0, nil
	}
	return ts.Int64, nil
}

func (r *activityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete activity", zap.String("id", id.String()), zap.Error(err))
		return errors.ErrDatabaseError
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrActivityNotFound
	}
	return nil
}

func (r *activityRepository) TotalsByKind(ctx context.Context) ([]domain.KindTotals, error) {
	totals := []domain.KindTotals{}
	err := r.db.SelectContext(ctx, &totals, `
		SELECT kind,
		       COUNT(*)              AS count,
		       COALESCE(SUM(distance_km), 0) AS distance_km,
		       COALESCE(SUM(elapsed_sec), 0) AS elapsed_sec
		FROM activities
		GROUP BY kind
		ORDER BY count DESC`)
	if err != nil {
		r.logger.Error("Failed to aggregate by kind", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return totals, nil
}

func (r *activityRepository) TotalsByYear(ctx context.Context) ([]domain.YearTotals, error) {
	totals := []domain.YearTotals{}
	err := r.db.SelectContext(ctx, &totals, `
		SELECT EXTRACT(YEAR FROM start_time)::int AS year,
		       COUNT(*)              AS count,
		       COALESCE(SUM(distance_km), 0) AS distance_km,
		       COALESCE(SUM(elapsed_sec), 0) AS elapsed_sec
		FROM activities
		GROUP BY year
		ORDER BY year DESC`)
	if err != nil {
		r.logger.Error("Failed to aggregate by year", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return totals, nil
}

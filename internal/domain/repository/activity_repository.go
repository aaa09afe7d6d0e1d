package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tilescout/tilescout/internal/domain"
)

// ActivityRepository persists activities and their tracks.
type ActivityRepository interface {
	// Create stores the activity together with its track points.
	Create(ctx context.Context, activity *domain.Activity, track *domain.Track) error

	// GetByID returns the activity or errors.ErrActivityNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error)

	// List returns activities ordered by start time descending.
	List(ctx context.Context, filter domain.ActivityFilter) ([]domain.Activity, int, error)

	// GetTrack returns the full point sequence of one activity.
	GetTrack(ctx context.Context, id uuid.UUID) (*domain.Track, error)

	// PointsInBounds returns all stored points inside the box, across
	// activities. Used by heatmap tile rendering.
	PointsInBounds(ctx context.Context, bounds domain.BoundingBox) ([]domain.TrackPoint, error)

	// ExistsByStravaID reports whether a Strava activity was already imported.
	ExistsByStravaID(ctx context.Context, stravaID int64) (bool, error)

	// ExistsBySourcePath reports whether a local file was already imported.
	ExistsBySourcePath(ctx context.Context, path string) (bool, error)

	// LatestStartTime returns the most recent activity start, zero when empty.
	LatestStartTime(ctx context.Context) (int64, error)

	// Delete removes the activity and its points.
	Delete(ctx context.Context, id uuid.UUID) error

	// TotalsByKind aggregates for the stats endpoint.
	TotalsByKind(ctx context.Context) ([]domain.KindTotals, error)

	// TotalsByYear aggregates for the stats endpoint.
	TotalsByYear(ctx context.Context) ([]domain.YearTotals, error)
}

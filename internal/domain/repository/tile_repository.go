package repository

import (
	"context"

	"github.com/tilescout/tilescout/internal/domain"
)

// TileRepository persists explorer tile state.
type TileRepository interface {
	// UpsertVisits records tile crossings. The earliest first_visit wins;
	// visit_count and last_visit are updated on conflict.
	UpsertVisits(ctx context.Context, visits []domain.TileVisit) error

	// ListByZoom returns every explored tile at the zoom level.
	ListByZoom(ctx context.Context, zoom int) ([]domain.Tile, error)
}

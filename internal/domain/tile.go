package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tile is one explored explorer tile at the configured explorer zoom.
type Tile struct {
	Zoom              int       `json:"zoom" db:"zoom"`
	X                 int       `json:"x" db:"x"`
	Y                 int       `json:"y" db:"y"`
	FirstVisit        time.Time `json:"first_visit" db:"first_visit"`
	FirstActivityID   uuid.UUID `json:"first_activity_id" db:"first_activity_id"`
	FirstActivityName string    `json:"first_activity_name" db:"first_activity_name"`
	LastVisit         time.Time `json:"last_visit" db:"last_visit"`
	VisitCount        int       `json:"visit_count" db:"visit_count"`
}

// TileVisit records that an activity crossed a tile. Used for batch upserts
// during import; first_visit semantics are resolved by the repository.
type TileVisit struct {
	Zoom         int
	X            int
	Y            int
	VisitedAt    time.Time
	ActivityID   uuid.UUID
	ActivityName string
}

// ExplorerSummary is the headline figures of the explorer page. The counts
// are displayed verbatim by handlers and templates.
type ExplorerSummary struct {
	Zoom            int   `json:"zoom"`
	NumTiles        int   `json:"num_tiles"`
	NumClusterTiles int   `json:"num_cluster_tiles"`
	MaxClusterSize  int   `json:"max_cluster_size"`
	SquareSize      int   `json:"square_size"`
	SquareX         int   `json:"square_x"`
	SquareY         int   `json:"square_y"`
	Center          Point `json:"center"`
}

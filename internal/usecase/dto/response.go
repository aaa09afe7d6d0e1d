package dto

import (
	"github.com/google/uuid"

	"github.com/tilescout/tilescout/internal/domain"
)

// ActivityListResponse is one page of the activity listing.
type ActivityListResponse struct {
	Activities []domain.Activity `json:"activities"`
	Total      int               `json:"total"`
}

// HeartRateZonesResponse carries the per-zone seconds plus a ready-to-embed
// Vega-Lite bar spec. Nil at the handler level means the activity has no HR
// data and the page omits the section.
type HeartRateZonesResponse struct {
	Zones    *domain.HeartRateZones `json:"zones"`
	PlotSpec map[string]interface{} `json:"plot_spec"`
}

// StatsResponse joins the activity totals with the explorer summary and a
// ready-to-embed Vega-Lite spec of distance per year.
type StatsResponse struct {
	domain.Statistics
	Explorer           *domain.ExplorerSummary `json:"explorer"`
	YearlyDistancePlot map[string]interface{}  `json:"yearly_distance_plot"`
}

// UploadResponse acknowledges an imported activity file.
type UploadResponse struct {
	ActivityID uuid.UUID `json:"activity_id"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	NumPoints  int       `json:"num_points"`
}

// SyncResponse reports how many activities a Strava sync imported.
type SyncResponse struct {
	Imported int `json:"imported"`
}

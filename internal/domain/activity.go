package domain

import (
	"time"

	"github.com/google/uuid"
)

// Activity kinds as stored. Strava sport types and FIT sports are normalized
// to this small set at import time.
const (
	KindRide  = "ride"
	KindRun   = "run"
	KindWalk  = "walk"
	KindHike  = "hike"
	KindSki   = "ski"
	KindOther = "other"
)

// ActivitySource identifies where an activity came from.
const (
	SourceFile   = "file"
	SourceStrava = "strava"
)

// Activity is a single recorded outdoor activity.
type Activity struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Kind        string    `json:"kind" db:"kind"`
	Commute     bool      `json:"commute" db:"commute"`
	DistanceKm  float64   `json:"distance_km" db:"distance_km"`
	ElapsedSec  int64     `json:"elapsed_sec" db:"elapsed_sec"`
	MovingSec   int64     `json:"moving_sec" db:"moving_sec"`
	StartTime   time.Time `json:"start_time" db:"start_time"`
	Calories    float64   `json:"calories" db:"calories"`
	Equipment   string    `json:"equipment" db:"equipment"`
	Source      string    `json:"source" db:"source"`
	SourcePath  string    `json:"source_path,omitempty" db:"source_path"`
	StravaID    *int64    `json:"strava_id,omitempty" db:"strava_id"`
	NumPoints   int       `json:"num_points" db:"num_points"`
	AvgSpeedKmh float64   `json:"avg_speed_kmh" db:"avg_speed_kmh"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TrackPoint is one sample of a recorded track.
type TrackPoint struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Elevation float64   `json:"elevation"`
	Time      time.Time `json:"time"`
	HeartRate int       `json:"heart_rate,omitempty"`
	SpeedKmh  float64   `json:"speed_kmh,omitempty"`
}

// Track is the full point sequence of one activity.
type Track struct {
	ActivityID uuid.UUID    `json:"activity_id"`
	Points     []TrackPoint `json:"points"`
}

// Bounds returns the track's geographic extent, false when the track is empty.
func (t *Track) Bounds() (BoundingBox, bool) {
	if len(t.Points) == 0 {
		return BoundingBox{}, false
	}
	bb := BoundingBox{
		MinLat: t.Points[0].Lat,
		MaxLat: t.Points[0].Lat,
		MinLon: t.Points[0].Lon,
		MaxLon: t.Points[0].Lon,
	}
	for _, p := range t.Points[1:] {
		if p.Lat < bb.MinLat {
			bb.MinLat = p.Lat
		}
		if p.Lat > bb.MaxLat {
			bb.MaxLat = p.Lat
		}
		if p.Lon < bb.MinLon {
			bb.MinLon = p.Lon
		}
		if p.Lon > bb.MaxLon {
			bb.MaxLon = p.Lon
		}
	}
	return bb, true
}

// HasHeartRate reports whether any point carries a heart rate sample.
func (t *Track) HasHeartRate() bool {
	for _, p := range t.Points {
		if p.HeartRate > 0 {
			return true
		}
	}
	return false
}

// HeartRateZones is time spent per zone, for the activity detail plot.
// Zones are indexed 1..5; payload is nil when the track has no HR samples.
type HeartRateZones struct {
	ActivityID uuid.UUID `json:"activity_id"`
	MaxHR      int       `json:"max_hr"`
	Seconds    [5]int64  `json:"seconds_in_zone"`
}

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	Kinds   []string
	Commute *bool
	Limit   int
	Offset  int
}

// KindTotals aggregates activities of one kind for the stats page.
type KindTotals struct {
	Kind       string  `json:"kind" db:"kind"`
	Count      int     `json:"count" db:"count"`
	DistanceKm float64 `json:"distance_km" db:"distance_km"`
	ElapsedSec int64   `json:"elapsed_sec" db:"elapsed_sec"`
}

// YearTotals aggregates activities of one calendar year.
type YearTotals struct {
	Year       int     `json:"year" db:"year"`
	Count      int     `json:"count" db:"count"`
	DistanceKm float64 `json:"distance_km" db:"distance_km"`
	ElapsedSec int64   `json:"elapsed_sec" db:"elapsed_sec"`
}

// Statistics is the aggregate view served by the stats endpoint.
type Statistics struct {
	TotalActivities int          `json:"total_activities"`
	TotalDistanceKm float64      `json:"total_distance_km"`
	TotalElapsedSec int64        `json:"total_elapsed_sec"`
	ByKind          []KindTotals `json:"by_kind"`
	ByYear          []YearTotals `json:"by_year"`
	LastUpdated     time.Time    `json:"last_updated"`
}

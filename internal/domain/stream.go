package domain

import "github.com/google/uuid"

// Stream names for the ingest pipeline.
const (
	StreamActivityIngest = "stream:activity:ingest"
	StreamActivityDone   = "stream:activity:done"
)

// ActivityIngestEvent asks the worker to import one activity.
// For file imports Path is set; for Strava imports StravaID is set.
type ActivityIngestEvent struct {
	Source   string `json:"source"`
	Path     string `json:"path,omitempty"`
	StravaID int64  `json:"strava_id,omitempty"`
}

// ActivityDoneEvent reports a finished import.
type ActivityDoneEvent struct {
	ActivityID uuid.UUID `json:"activity_id"`
	Source     string    `json:"source"`
	NumPoints  int       `json:"num_points"`
	NumTiles   int       `json:"num_tiles"`
	Error      string    `json:"error,omitempty"`
}

// StreamMessage is a raw message read from a Redis stream.
type StreamMessage struct {
	ID   string
	Data []byte
}

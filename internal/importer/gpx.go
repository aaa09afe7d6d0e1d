package importer

import (
	"fmt"
	"strings"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/tilescout/tilescout/internal/domain"
)

// decodeGPX parses a GPX file. Track segments are preferred; route points are
// a fallback for files exported without tracks.
func decodeGPX(path string) (*rawActivity, error) {
	gpxFile, err := gpx.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse gpx: %w", err)
	}
	return convertGPX(gpxFile)
}

// decodeGPXBytes is the in-memory variant used by upload handling and tests.
func decodeGPXBytes(data []byte) (*rawActivity, error) {
	gpxFile, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse gpx: %w", err)
	}
	return convertGPX(gpxFile)
}

func convertGPX(gpxFile *gpx.GPX) (*rawActivity, error) {
	raw := &rawActivity{}

	var trackType string
	for _, track := range gpxFile.Tracks {
		if raw.name == "" {
			raw.name = track.Name
		}
		if trackType == "" {
			trackType = track.Type
		}
		for _, segment := range track.Segments {
			for i := range segment.Points {
				raw.points = append(raw.points, gpxPoint(&segment.Points[i]))
			}
		}
	}

	if len(raw.points) == 0 {
		for _, route := range gpxFile.Routes {
			if raw.name == "" {
				raw.name = route.Name
			}
			for i := range route.Points {
				raw.points = append(raw.points, gpxPoint(&route.Points[i]))
			}
		}
	}

	if raw.name == "" {
		raw.name = gpxFile.Name
	}
	raw.kind = normalizeKind(trackType)

	return raw, nil
}

func gpxPoint(p *gpx.GPXPoint) domain.TrackPoint {
	return domain.TrackPoint{
		Lat:       p.Point.Latitude,
		Lon:       p.Point.Longitude,
		Elevation: p.Elevation.Value(),
		Time:      p.Timestamp,
	}
}

// normalizeKind maps GPX <type> and Strava sport strings onto the stored kinds.
func normalizeKind(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ride", "cycling", "biking", "ebikeride", "virtualride", "1":
		return domain.KindRide
	case "run", "running", "virtualrun", "9":
		return domain.KindRun
	case "walk", "walking":
		return domain.KindWalk
	case "hike", "hiking":
		return domain.KindHike
	case "ski", "nordicski", "alpineski", "backcountryski":
		return domain.KindSki
	case "":
		return ""
	default:
		return domain.KindOther
	}
}

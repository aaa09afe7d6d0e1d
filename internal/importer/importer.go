// Package importer decodes recorded activity files (GPX, FIT) into domain
// activities with full track point sequences.
package importer

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	apperrors "github.com/tilescout/tilescout/internal/pkg/errors"
	"github.com/tilescout/tilescout/internal/pkg/utils"
)

// minTrackPoints is the minimum number of usable points for an import.
const minTrackPoints = 2

type Importer struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Importer {
	return &Importer{logger: logger}
}

// ImportFile decodes the file at path into an activity and its track.
// The format is chosen by extension; unknown extensions are rejected.
func (i *Importer) ImportFile(path string) (*domain.Activity, *domain.Track, error) {
	var (
		raw *rawActivity
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gpx":
		raw, err = decodeGPX(path)
	case ".fit":
		raw, err = decodeFIT(path)
	default:
		return nil, nil, apperrors.ErrUnsupportedFormat.WithDetails(map[string]interface{}{
			"path": path,
		})
	}
	if err != nil {
		i.logger.Error("Failed to decode activity file",
			zap.String("path", path),
			zap.Error(err))
		return nil, nil, apperrors.ErrImportFailed.WithDetails(map[string]interface{}{
			"path":   path,
			"reason": err.Error(),
		})
	}

	return i.build(raw, path)
}

// rawActivity is the decoder output before enrichment.
type rawActivity struct {
	name       string
	kind       string
	points     []domain.TrackPoint
	distanceKm float64
	elapsedSec int64
	calories   float64
}

// build fills in derived fields the file did not carry and mints the ID.
func (i *Importer) build(raw *rawActivity, path string) (*domain.Activity, *domain.Track, error) {
	points := dropInvalidPoints(raw.points)
	if dropped := len(raw.points) - len(points); dropped > 0 {
		i.logger.Warn("Dropped out-of-range track points",
			zap.String("path", path),
			zap.Int("dropped", dropped))
	}
	if len(points) < minTrackPoints {
		return nil, nil, apperrors.ErrEmptyTrack
	}

	id := uuid.New()
	points = enrichSpeeds(points)

	startTime := points[0].Time
	if raw.elapsedSec == 0 && !points[len(points)-1].Time.IsZero() && !startTime.IsZero() {
		raw.elapsedSec = int64(points[len(points)-1].Time.Sub(startTime).Seconds())
	}
	if raw.distanceKm == 0 {
		raw.distanceKm = trackDistanceKm(points)
	}

	name := raw.name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	kind := raw.kind
	if kind == "" {
		kind = domain.KindOther
	}

	activity := &domain.Activity{
		ID:         id,
		Name:       name,
		Kind:       kind,
		DistanceKm: raw.distanceKm,
		ElapsedSec: raw.elapsedSec,
		MovingSec:  movingSeconds(points),
		StartTime:  startTime,
		Calories:   raw.calories,
		Source:     domain.SourceFile,
		SourcePath: path,
		NumPoints:  len(points),
		CreatedAt:  time.Now().UTC(),
	}
	if activity.ElapsedSec > 0 {
		activity.AvgSpeedKmh = activity.DistanceKm / (float64(activity.ElapsedSec) / 3600.0)
	}

	track := &domain.Track{
		ActivityID: id,
		Points:     points,
	}

	i.logger.Info("Activity decoded",
		zap.String("path", path),
		zap.String("kind", activity.Kind),
		zap.Float64("distance_km", activity.DistanceKm),
		zap.Int("points", len(points)))

	return activity, track, nil
}

// dropInvalidPoints removes points outside the WGS84 coordinate range.
// Corrupt recordings sometimes carry overflowed or zeroed GPS fixes.
func dropInvalidPoints(points []domain.TrackPoint) []domain.TrackPoint {
	kept := points[:0:0]
	for _, p := range points {
		if utils.ValidateCoordinates(p.Lat, p.Lon) {
			kept = append(kept, p)
		}
	}
	return kept
}

// trackDistanceKm accumulates haversine distance over the point sequence.
func trackDistanceKm(points []domain.TrackPoint) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += utils.HaversineDistance(
			points[i-1].Lat, points[i-1].Lon,
			points[i].Lat, points[i].Lon,
		)
	}
	return total
}

// enrichSpeeds fills SpeedKmh from point-to-point deltas where the decoder
// did not provide speed.
func enrichSpeeds(points []domain.TrackPoint) []domain.TrackPoint {
	for i := 1; i < len(points); i++ {
		if points[i].SpeedKmh > 0 {
			continue
		}
		dt := points[i].Time.Sub(points[i-1].Time).Seconds()
		if dt <= 0 {
			continue
		}
		dKm := utils.HaversineDistance(
			points[i-1].Lat, points[i-1].Lon,
			points[i].Lat, points[i].Lon,
		)
		points[i].SpeedKmh = dKm / (dt / 3600.0)
	}
	return points
}

// movingSeconds counts time between consecutive points faster than 1 km/h.
func movingSeconds(points []domain.TrackPoint) int64 {
	var moving int64
	for i := 1; i < len(points); i++ {
		dt := points[i].Time.Sub(points[i-1].Time).Seconds()
		if dt <= 0 {
			continue
		}
		if points[i].SpeedKmh >= 1.0 {
			moving += int64(dt)
		}
	}
	return moving
}

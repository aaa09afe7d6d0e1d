package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/domain/repository"
	"github.com/tilescout/tilescout/internal/usecase/dto"
)

const defaultListLimit = 50

// speedBands maps per-segment speed to the line color of the activity map.
// Bounds are km/h upper limits; the last color catches everything faster.
var speedBands = []struct {
	UpToKmh float64
	Color   string
}{
	{5, "#2c7bb6"},
	{10, "#00a6ca"},
	{15, "#90cc60"},
	{20, "#f9d057"},
	{25, "#f29e2e"},
	{0, "#d7191c"},
}

func speedColor(kmh float64) string {
	for _, band := range speedBands[:len(speedBands)-1] {
		if kmh < band.UpToKmh {
			return band.Color
		}
	}
	return speedBands[len(speedBands)-1].Color
}

type ActivityUseCase struct {
	activityRepo repository.ActivityRepository
	logger       *zap.Logger
	maxHR        int
}

func NewActivityUseCase(
	activityRepo repository.ActivityRepository,
	logger *zap.Logger,
	maxHR int,
) *ActivityUseCase {
	return &ActivityUseCase{
		activityRepo: activityRepo,
		logger:       logger,
		maxHR:        maxHR,
	}
}

func (uc *ActivityUseCase) List(ctx context.Context, req dto.ListActivitiesRequest) (*dto.ActivityListResponse, error) {
	if req.Limit == 0 {
		req.Limit = defaultListLimit
	}

	filter := domain.ActivityFilter{
		Kinds:   req.Kinds,
		Commute: req.Commute,
		Limit:   req.Limit,
		Offset:  req.Page * req.Limit,
	}

	activities, total, err := uc.activityRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Error("Failed to list activities", zap.Error(err))
		return nil, err
	}

	return &dto.ActivityListResponse{
		Activities: activities,
		Total:      total,
	}, nil
}

func (uc *ActivityUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	return uc.activityRepo.GetByID(ctx, id)
}

// GetTrackGeoJSON returns the activity line split into speed-colored
// LineString segments. Consecutive points in the same speed band share a
// segment; each segment carries its color so the map styles it directly.
func (uc *ActivityUseCase) GetTrackGeoJSON(ctx context.Context, id uuid.UUID) (*domain.FeatureCollection, error) {
	track, err := uc.activityRepo.GetTrack(ctx, id)
	if err != nil {
		return nil, err
	}

	fc := domain.NewFeatureCollection()
	points := track.Points
	if len(points) < 2 {
		return fc, nil
	}

	segStart := 0
	segColor := speedColor(points[1].SpeedKmh)
	for i := 2; i <= len(points); i++ {
		var color string
		if i < len(points) {
			color = speedColor(points[i].SpeedKmh)
		}
		if i == len(points) || color != segColor {
			coords := make([][2]float64, 0, i-segStart)
			for _, p := range points[segStart:i] {
				coords = append(coords, [2]float64{p.Lon, p.Lat})
			}
			fc.Features = append(fc.Features, domain.NewLineString(coords, map[string]interface{}{
				"color": segColor,
			}))
			// Segments share their boundary point so the line stays connected.
			segStart = i - 1
			segColor = color
		}
	}

	return fc, nil
}

// GetHeartRateZones buckets track time into five zones at 50..90% of max HR.
// Returns nil when the track carries no heart rate samples; the activity
// page omits the plot section in that case.
func (uc *ActivityUseCase) GetHeartRateZones(ctx context.Context, id uuid.UUID) (*dto.HeartRateZonesResponse, error) {
	track, err := uc.activityRepo.GetTrack(ctx, id)
	if err != nil {
		return nil, err
	}

	if !track.HasHeartRate() {
		return nil, nil
	}

	zones := &domain.HeartRateZones{
		ActivityID: id,
		MaxHR:      uc.maxHR,
	}

	// Zone lower bounds as fractions of max HR; zone 1 starts at 50%.
	bounds := [5]float64{0.5, 0.6, 0.7, 0.8, 0.9}

	for i := 1; i < len(track.Points); i++ {
		p := track.Points[i]
		if p.HeartRate <= 0 {
			continue
		}
		dt := p.Time.Sub(track.Points[i-1].Time).Seconds()
		if dt <= 0 {
			continue
		}
		frac := float64(p.HeartRate) / float64(uc.maxHR)
		zone := 0
		for z := len(bounds) - 1; z >= 0; z-- {
			if frac >= bounds[z] {
				zone = z
				break
			}
		}
		zones.Seconds[zone] += int64(dt)
	}

	return &dto.HeartRateZonesResponse{
		Zones:    zones,
		PlotSpec: heartRateZonePlotSpec(zones),
	}, nil
}

// heartRateZonePlotSpec builds the Vega-Lite bar spec embedded on the
// activity page.
func heartRateZonePlotSpec(zones *domain.HeartRateZones) map[string]interface{} {
	values := make([]map[string]interface{}, 0, 5)
	for i, secs := range zones.Seconds {
		values = append(values, map[string]interface{}{
			"zone":    fmt.Sprintf("Z%d", i+1),
			"minutes": float64(secs) / 60.0,
		})
	}

	return map[string]interface{}{
		"$schema":     "https://vega.github.io/schema/vega-lite/v5.json",
		"description": "Time in heart rate zones",
		"data":        map[string]interface{}{"values": values},
		"mark":        "bar",
		"encoding": map[string]interface{}{
			"x": map[string]interface{}{"field": "zone", "type": "nominal", "sort": nil},
			"y": map[string]interface{}{"field": "minutes", "type": "quantitative", "title": "minutes"},
			"color": map[string]interface{}{
				"field": "zone", "type": "nominal", "legend": nil,
				"scale": map[string]interface{}{"scheme": "redyellowgreen", "reverse": true},
			},
		},
	}
}

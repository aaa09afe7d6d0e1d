package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/usecase/dto"
)

func trackOf(points []domain.TrackPoint) *domain.Track {
	return &domain.Track{ActivityID: uuid.New(), Points: points}
}

func TestList_DefaultLimit(t *testing.T) {
	repo := new(MockActivityRepository)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f domain.ActivityFilter) bool {
		return f.Limit == defaultListLimit && f.Offset == 0
	})).Return([]domain.Activity{}, 0, nil)

	uc := NewActivityUseCase(repo, zap.NewNop(), 185)

	resp, err := uc.List(context.Background(), dto.ListActivitiesRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Total)
	repo.AssertExpectations(t)
}

func TestList_PageOffset(t *testing.T) {
	repo := new(MockActivityRepository)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f domain.ActivityFilter) bool {
		return f.Limit == 20 && f.Offset == 40
	})).Return([]domain.Activity{{Name: "Ride"}}, 41, nil)

	uc := NewActivityUseCase(repo, zap.NewNop(), 185)

	resp, err := uc.List(context.Background(), dto.ListActivitiesRequest{Page: 2, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 41, resp.Total)
	require.Len(t, resp.Activities, 1)
}

func TestGetHeartRateZones_NoHeartRateData(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	points := []domain.TrackPoint{
		{Lat: 50.0, Lon: 7.0, Time: start},
		{Lat: 50.001, Lon: 7.0, Time: start.Add(time.Minute)},
	}

	id := uuid.New()
	repo := new(MockActivityRepository)
	repo.On("GetTrack", mock.Anything, id).Return(trackOf(points), nil)

	uc := NewActivityUseCase(repo, zap.NewNop(), 185)

	resp, err := uc.GetHeartRateZones(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestGetHeartRateZones_Buckets(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	maxHR := 200

	// 60 s at 55% (zone 1), 60 s at 75% (zone 3), 60 s at 95% (zone 5).
	points := []domain.TrackPoint{
		{Lat: 50.0, Lon: 7.0, Time: start, HeartRate: 110},
		{Lat: 50.001, Lon: 7.0, Time: start.Add(1 * time.Minute), HeartRate: 110},
		{Lat: 50.002, Lon: 7.0, Time: start.Add(2 * time.Minute), HeartRate: 150},
		{Lat: 50.003, Lon: 7.0, Time: start.Add(3 * time.Minute), HeartRate: 190},
	}

	id := uuid.New()
	repo := new(MockActivityRepository)
	repo.On("GetTrack", mock.Anything, id).Return(trackOf(points), nil)

	uc := NewActivityUseCase(repo, zap.NewNop(), maxHR)

	resp, err := uc.GetHeartRateZones(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, int64(60), resp.Zones.Seconds[0])
	assert.Equal(t, int64(0), resp.Zones.Seconds[1])
	assert.Equal(t, int64(60), resp.Zones.Seconds[2])
	assert.Equal(t, int64(0), resp.Zones.Seconds[3])
	assert.Equal(t, int64(60), resp.Zones.Seconds[4])

	require.NotNil(t, resp.PlotSpec)
	assert.Equal(t, "bar", resp.PlotSpec["mark"])
}

func TestGetTrackGeoJSON_SpeedSegments(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	// Two slow points then two fast ones: exactly two color segments.
	points := []domain.TrackPoint{
		{Lat: 50.0, Lon: 7.0, Time: start, SpeedKmh: 0},
		{Lat: 50.001, Lon: 7.0, Time: start.Add(time.Minute), SpeedKmh: 4},
		{Lat: 50.002, Lon: 7.0, Time: start.Add(2 * time.Minute), SpeedKmh: 4.5},
		{Lat: 50.003, Lon: 7.0, Time: start.Add(3 * time.Minute), SpeedKmh: 30},
	}

	id := uuid.New()
	repo := new(MockActivityRepository)
	repo.On("GetTrack", mock.Anything, id).Return(trackOf(points), nil)

	uc := NewActivityUseCase(repo, zap.NewNop(), 185)

	fc, err := uc.GetTrackGeoJSON(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	assert.Equal(t, speedColor(4), fc.Features[0].Properties["color"])
	assert.Equal(t, speedColor(30), fc.Features[1].Properties["color"])

	// Segments share their boundary point so the rendered line is gapless.
	first := fc.Features[0].Geometry.Coordinates.([][2]float64)
	second := fc.Features[1].Geometry.Coordinates.([][2]float64)
	assert.Equal(t, first[len(first)-1], second[0])
}

func TestGetTrackGeoJSON_ShortTrack(t *testing.T) {
	id := uuid.New()
	repo := new(MockActivityRepository)
	repo.On("GetTrack", mock.Anything, id).Return(trackOf([]domain.TrackPoint{{Lat: 50, Lon: 7}}), nil)

	uc := NewActivityUseCase(repo, zap.NewNop(), 185)

	fc, err := uc.GetTrackGeoJSON(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, fc.Features)
}

func TestSpeedColor_Bands(t *testing.T) {
	assert.Equal(t, "#2c7bb6", speedColor(2))
	assert.Equal(t, "#00a6ca", speedColor(7))
	assert.Equal(t, "#d7191c", speedColor(40))
}

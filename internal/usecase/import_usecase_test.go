package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/config"
	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/importer"
	"github.com/tilescout/tilescout/internal/infrastructure/strava"
	apperrors "github.com/tilescout/tilescout/internal/pkg/errors"
)

const importTestGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test">
  <trk>
    <name>Commute</name>
    <type>cycling</type>
    <trkseg>
      <trkpt lat="50.7374" lon="7.0982"><time>2024-05-01T09:00:00Z</time></trkpt>
      <trkpt lat="50.7380" lon="7.0990"><time>2024-05-01T09:01:00Z</time></trkpt>
      <trkpt lat="50.7390" lon="7.1000"><time>2024-05-01T09:02:00Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

type importMocks struct {
	activityRepo *MockActivityRepository
	tileRepo     *MockTileRepository
	cacheRepo    *MockCacheRepository
	streamRepo   *MockStreamRepository
}

func newImportForTest(t *testing.T) (*ImportUseCase, *importMocks) {
	t.Helper()

	m := &importMocks{
		activityRepo: new(MockActivityRepository),
		tileRepo:     new(MockTileRepository),
		cacheRepo:    new(MockCacheRepository),
		streamRepo:   new(MockStreamRepository),
	}

	logger := zap.NewNop()
	uc := NewImportUseCase(
		importer.New(logger),
		m.activityRepo,
		m.tileRepo,
		m.cacheRepo,
		m.streamRepo,
		strava.NewClient(&config.StravaConfig{}, logger),
		logger,
		14,
		t.TempDir(),
	)
	return uc, m
}

func writeTestGPX(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "commute.gpx")
	require.NoError(t, os.WriteFile(path, []byte(importTestGPX), 0o644))
	return path
}

func TestImportFile_PersistsActivityAndTiles(t *testing.T) {
	uc, m := newImportForTest(t)
	path := writeTestGPX(t)

	m.activityRepo.On("ExistsBySourcePath", mock.Anything, path).Return(false, nil)
	m.activityRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.tileRepo.On("UpsertVisits", mock.Anything, mock.MatchedBy(func(visits []domain.TileVisit) bool {
		// All three points fall inside one zoom-14 tile; the batch must be
		// deduplicated down to a single visit.
		return len(visits) == 1 && visits[0].Zoom == 14 && visits[0].X == 8515 && visits[0].Y == 5503
	})).Return(nil)
	m.streamRepo.On("PublishDone", mock.Anything, mock.Anything).Return(nil)
	m.cacheRepo.On("InvalidateExplorer", mock.Anything).Return(nil)

	activity, err := uc.ImportFile(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, activity)

	assert.Equal(t, "Commute", activity.Name)
	assert.Equal(t, domain.KindRide, activity.Kind)
	assert.Equal(t, domain.SourceFile, activity.Source)

	m.tileRepo.AssertExpectations(t)
	m.cacheRepo.AssertExpectations(t)
}

func TestImportFile_SkipsAlreadyImported(t *testing.T) {
	uc, m := newImportForTest(t)
	path := writeTestGPX(t)

	m.activityRepo.On("ExistsBySourcePath", mock.Anything, path).Return(true, nil)

	activity, err := uc.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Nil(t, activity)
	m.activityRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestImportUpload_RejectsUnknownExtension(t *testing.T) {
	uc, _ := newImportForTest(t)

	_, err := uc.ImportUpload(context.Background(), "activity.tcx", []byte("data"))
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnsupportedFormat.Code, appErr.Code)
}

func TestImportUpload_StoresFileInImportDir(t *testing.T) {
	uc, m := newImportForTest(t)

	m.activityRepo.On("ExistsBySourcePath", mock.Anything, mock.Anything).Return(false, nil)
	m.activityRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.tileRepo.On("UpsertVisits", mock.Anything, mock.Anything).Return(nil)
	m.streamRepo.On("PublishDone", mock.Anything, mock.Anything).Return(nil)
	m.cacheRepo.On("InvalidateExplorer", mock.Anything).Return(nil)

	activity, err := uc.ImportUpload(context.Background(), "ride.gpx", []byte(importTestGPX))
	require.NoError(t, err)
	require.NotNil(t, activity)

	// The upload survives on disk for the scan worker to recognize.
	_, statErr := os.Stat(filepath.Join(uc.importDir, "ride.gpx"))
	assert.NoError(t, statErr)
}

func TestSyncStrava_Unconfigured(t *testing.T) {
	uc, _ := newImportForTest(t)

	_, err := uc.SyncStrava(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrStravaUnavailable, err)
}

func TestTileVisits_Dedupe(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	activity := &domain.Activity{ID: uuid.New(), Name: "Ride", StartTime: start}

	// Two points in the Bonn tile, one far away.
	track := &domain.Track{Points: []domain.TrackPoint{
		{Lat: 50.7374, Lon: 7.0982},
		{Lat: 50.7375, Lon: 7.0983},
		{Lat: -33.8688, Lon: 151.2093},
	}}

	visits := tileVisits(activity, track, 14)
	require.Len(t, visits, 2)

	for _, v := range visits {
		assert.Equal(t, 14, v.Zoom)
		assert.Equal(t, activity.ID, v.ActivityID)
		assert.Equal(t, start, v.VisitedAt)
	}
}

func TestKindFromSportType(t *testing.T) {
	assert.Equal(t, domain.KindRide, kindFromSportType("GravelRide"))
	assert.Equal(t, domain.KindRun, kindFromSportType("TrailRun"))
	assert.Equal(t, domain.KindHike, kindFromSportType("Hike"))
	assert.Equal(t, domain.KindSki, kindFromSportType("NordicSki"))
	assert.Equal(t, domain.KindOther, kindFromSportType("Kayaking"))
}

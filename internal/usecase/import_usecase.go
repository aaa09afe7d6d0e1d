package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/domain/repository"
	"github.com/tilescout/tilescout/internal/importer"
	"github.com/tilescout/tilescout/internal/infrastructure/strava"
	apperrors "github.com/tilescout/tilescout/internal/pkg/errors"
	"github.com/tilescout/tilescout/internal/pkg/tiles"
)

type ImportUseCase struct {
	importer     *importer.Importer
	activityRepo repository.ActivityRepository
	tileRepo     repository.TileRepository
	cacheRepo    repository.CacheRepository
	streamRepo   repository.StreamRepository
	stravaClient *strava.Client
	logger       *zap.Logger
	zoom         int
	importDir    string
}

func NewImportUseCase(
	imp *importer.Importer,
	activityRepo repository.ActivityRepository,
	tileRepo repository.TileRepository,
	cacheRepo repository.CacheRepository,
	streamRepo repository.StreamRepository,
	stravaClient *strava.Client,
	logger *zap.Logger,
	zoom int,
	importDir string,
) *ImportUseCase {
	return &ImportUseCase{
		importer:     imp,
		activityRepo: activityRepo,
		tileRepo:     tileRepo,
		cacheRepo:    cacheRepo,
		streamRepo:   streamRepo,
		stravaClient: stravaClient,
		logger:       logger,
		zoom:         zoom,
		importDir:    importDir,
	}
}

// ImportFile decodes and persists a local activity file. Files already
// imported (matched by source path) are skipped without error so the scan
// worker can re-publish the whole directory safely.
func (uc *ImportUseCase) ImportFile(ctx context.Context, path string) (*domain.Activity, error) {
	exists, err := uc.activityRepo.ExistsBySourcePath(ctx, path)
	if err != nil {
		return nil, err
	}
	if exists {
		uc.logger.Debug("File already imported, skipping", zap.String("path", path))
		return nil, nil
	}

	activity, track, err := uc.importer.ImportFile(path)
	if err != nil {
		return nil, err
	}

	if err := uc.persist(ctx, activity, track); err != nil {
		return nil, err
	}
	return activity, nil
}

// ImportUpload stores an uploaded file in the import directory and imports
// it. Keeping the file on disk lets the scan worker treat uploads and synced
// files uniformly.
func (uc *ImportUseCase) ImportUpload(ctx context.Context, filename string, data []byte) (*domain.Activity, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".gpx" && ext != ".fit" {
		return nil, apperrors.ErrUnsupportedFormat.WithDetails(map[string]interface{}{
			"filename": filename,
		})
	}

	if err := os.MkdirAll(uc.importDir, 0o755); err != nil {
		return nil, apperrors.ErrImportFailed.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}

	path := filepath.Join(uc.importDir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, apperrors.ErrImportFailed.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}

	activity, err := uc.ImportFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, apperrors.ErrImportFailed.WithDetails(map[string]interface{}{
			"reason": "file was already imported",
		})
	}
	return activity, nil
}

// ImportStravaActivity fetches one Strava activity with its streams and
// persists it. Already imported activities are skipped.
func (uc *ImportUseCase) ImportStravaActivity(ctx context.Context, stravaID int64) (*domain.Activity, error) {
	if !uc.stravaClient.Configured() {
		return nil, apperrors.ErrStravaUnavailable
	}

	exists, err := uc.activityRepo.ExistsByStravaID(ctx, stravaID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	summary, err := uc.stravaClient.GetActivity(ctx, stravaID)
	if err != nil {
		return nil, apperrors.ErrStravaUnavailable.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}

	return uc.importStravaSummary(ctx, summary)
}

// SyncStrava walks the athlete's Strava activities and imports every one not
// seen before. With full set, the walk starts from the beginning of time;
// otherwise it starts after the latest stored activity.
func (uc *ImportUseCase) SyncStrava(ctx context.Context, full bool) (int, error) {
	if !uc.stravaClient.Configured() {
		return 0, apperrors.ErrStravaUnavailable
	}

	var after int64
	if !full {
		latest, err := uc.activityRepo.LatestStartTime(ctx)
		if err != nil {
			return 0, err
		}
		after = latest
	}

	imported := 0
	for page := 1; ; page++ {
		summaries, err := uc.stravaClient.ListActivities(ctx, page, after)
		if err != nil {
			return imported, apperrors.ErrStravaUnavailable.WithDetails(map[string]interface{}{
				"reason": err.Error(),
			})
		}
		if len(summaries) == 0 {
			return imported, nil
		}

		for i := range summaries {
			exists, err := uc.activityRepo.ExistsByStravaID(ctx, summaries[i].ID)
			if err != nil {
				return imported, err
			}
			if exists {
				continue
			}
			if _, err := uc.importStravaSummary(ctx, &summaries[i]); err != nil {
				uc.logger.Error("Failed to import Strava activity",
					zap.Int64("strava_id", summaries[i].ID),
					zap.Error(err))
				continue
			}
			imported++
		}
	}
}

func (uc *ImportUseCase) importStravaSummary(ctx context.Context, summary *strava.SummaryActivity) (*domain.Activity, error) {
	streams, err := uc.stravaClient.GetStreams(ctx, summary.ID)
	if err != nil {
		return nil, apperrors.ErrStravaUnavailable.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}
	if len(streams.LatLng) < 2 {
		return nil, apperrors.ErrEmptyTrack
	}

	startTime, err := summary.StartTime()
	if err != nil {
		return nil, apperrors.ErrImportFailed.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}

	points := make([]domain.TrackPoint, 0, len(streams.LatLng))
	for i, ll := range streams.LatLng {
		p := domain.TrackPoint{
			Lat:  ll[0],
			Lon:  ll[1],
			Time: startTime,
		}
		if i < len(streams.Time) {
			p.Time = startTime.Add(time.Duration(streams.Time[i]) * time.Second)
		}
		if i < len(streams.Altitude) {
			p.Elevation = streams.Altitude[i]
		}
		if i < len(streams.HeartRate) {
			p.HeartRate = streams.HeartRate[i]
		}
		points = append(points, p)
	}

	id := uuid.New()
	stravaID := summary.ID
	activity := &domain.Activity{
		ID:         id,
		Name:       summary.Name,
		Kind:       kindFromSportType(summary.SportType),
		Commute:    summary.Commute,
		DistanceKm: summary.Distance / 1000.0,
		ElapsedSec: summary.ElapsedTime,
		MovingSec:  summary.MovingTime,
		StartTime:  startTime,
		Calories:   summary.Calories,
		Equipment:  summary.GearID,
		Source:     domain.SourceStrava,
		StravaID:   &stravaID,
		NumPoints:  len(points),
		CreatedAt:  time.Now().UTC(),
	}
	if activity.ElapsedSec > 0 {
		activity.AvgSpeedKmh = activity.DistanceKm / (float64(activity.ElapsedSec) / 3600.0)
	}

	track := &domain.Track{ActivityID: id, Points: points}
	if err := uc.persist(ctx, activity, track); err != nil {
		return nil, err
	}
	return activity, nil
}

// persist stores the activity, records its tile visits and invalidates all
// derived explorer artifacts.
func (uc *ImportUseCase) persist(ctx context.Context, activity *domain.Activity, track *domain.Track) error {
	if err := uc.activityRepo.Create(ctx, activity, track); err != nil {
		return err
	}

	visits := tileVisits(activity, track, uc.zoom)
	if len(visits) > 0 {
		if err := uc.tileRepo.UpsertVisits(ctx, visits); err != nil {
			uc.logger.Error("Failed to record tile visits",
				zap.String("activity_id", activity.ID.String()),
				zap.Error(err))
			return err
		}
	}

	if err := uc.streamRepo.PublishDone(ctx, domain.ActivityDoneEvent{
		ActivityID: activity.ID,
		Source:     activity.Source,
		NumPoints:  activity.NumPoints,
		NumTiles:   len(visits),
	}); err != nil {
		uc.logger.Warn("Failed to publish done event", zap.Error(err))
	}

	if err := uc.cacheRepo.InvalidateExplorer(ctx); err != nil {
		uc.logger.Warn("Failed to invalidate explorer cache", zap.Error(err))
	}

	uc.logger.Info("Activity imported",
		zap.String("activity_id", activity.ID.String()),
		zap.String("kind", activity.Kind),
		zap.Int("tiles", len(visits)))
	return nil
}

// tileVisits maps the track onto explorer tiles, one visit per distinct tile.
// The dedup matters: the repository bumps visit_count per row, and a batch
// must not touch the same tile twice.
func tileVisits(activity *domain.Activity, track *domain.Track, zoom int) []domain.TileVisit {
	seen := make(map[tileKey]bool)
	var visits []domain.TileVisit
	for _, p := range track.Points {
		x, y := tiles.LatLonToTile(p.Lat, p.Lon, zoom)
		key := tileKey{x, y}
		if seen[key] {
			continue
		}
		seen[key] = true
		visits = append(visits, domain.TileVisit{
			Zoom:         zoom,
			X:            x,
			Y:            y,
			VisitedAt:    activity.StartTime,
			ActivityID:   activity.ID,
			ActivityName: activity.Name,
		})
	}
	return visits
}

// kindFromSportType maps Strava sport types onto the small internal set.
func kindFromSportType(sportType string) string {
	switch strings.ToLower(sportType) {
	case "ride", "mountainbikeride", "gravelride", "virtualride", "emountainbikeride", "ebikeride":
		return domain.KindRide
	case "run", "trailrun", "virtualrun":
		return domain.KindRun
	case "walk":
		return domain.KindWalk
	case "hike":
		return domain.KindHike
	case "alpineski", "backcountryski", "nordicski", "snowboard":
		return domain.KindSki
	default:
		return domain.KindOther
	}
}

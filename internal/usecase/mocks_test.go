package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/tilescout/tilescout/internal/domain"
)

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, activity *domain.Activity, track *domain.Track) error {
	args := m.Called(ctx, activity, track)
	return args.Error(0)
}

func (m *MockActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityRepository) List(ctx context.Context, filter domain.ActivityFilter) ([]domain.Activity, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Activity), args.Int(1), args.Error(2)
}

func (m *MockActivityRepository) GetTrack(ctx context.Context, id uuid.UUID) (*domain.Track, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Track), args.Error(1)
}

func (m *MockActivityRepository) PointsInBounds(ctx context.Context, bounds domain.BoundingBox) ([]domain.TrackPoint, error) {
	args := m.Called(ctx, bounds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrackPoint), args.Error(1)
}

func (m *MockActivityRepository) ExistsByStravaID(ctx context.Context, stravaID int64) (bool, error) {
	args := m.Called(ctx, stravaID)
	return args.Bool(0), args.Error(1)
}

func (m *MockActivityRepository) ExistsBySourcePath(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockActivityRepository) LatestStartTime(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockActivityRepository) TotalsByKind(ctx context.Context) ([]domain.KindTotals, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KindTotals), args.Error(1)
}

func (m *MockActivityRepository) TotalsByYear(ctx context.Context) ([]domain.YearTotals, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.YearTotals), args.Error(1)
}

type MockTileRepository struct {
	mock.Mock
}

func (m *MockTileRepository) UpsertVisits(ctx context.Context, visits []domain.TileVisit) error {
	args := m.Called(ctx, visits)
	return args.Error(0)
}

func (m *MockTileRepository) ListByZoom(ctx context.Context, zoom int) ([]domain.Tile, error) {
	args := m.Called(ctx, zoom)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tile), args.Error(1)
}

type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) GetExplorerSummary(ctx context.Context, zoom int) (*domain.ExplorerSummary, error) {
	args := m.Called(ctx, zoom)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExplorerSummary), args.Error(1)
}

func (m *MockCacheRepository) SetExplorerSummary(ctx context.Context, summary *domain.ExplorerSummary, ttl time.Duration) error {
	args := m.Called(ctx, summary, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) GetHeatmapTile(ctx context.Context, z, x, y int) ([]byte, error) {
	args := m.Called(ctx, z, x, y)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) SetHeatmapTile(ctx context.Context, z, x, y int, png []byte, ttl time.Duration) error {
	args := m.Called(ctx, z, x, y, png, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) InvalidateExplorer(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishIngest(ctx context.Context, event domain.ActivityIngestEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishDone(ctx context.Context, event domain.ActivityDoneEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockStreamRepository) Consume(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) Ack(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

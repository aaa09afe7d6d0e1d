package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/domain/repository"
)

// Unused interface methods panic via the embedded nil interface.
type stubActivityRepo struct {
	repository.ActivityRepository
	existing map[string]bool
}

func (s *stubActivityRepo) ExistsBySourcePath(_ context.Context, path string) (bool, error) {
	return s.existing[path], nil
}

type stubStreamRepo struct {
	repository.StreamRepository
	published []domain.ActivityIngestEvent
	acked     []string
}

func (s *stubStreamRepo) PublishIngest(_ context.Context, event domain.ActivityIngestEvent) error {
	s.published = append(s.published, event)
	return nil
}

func (s *stubStreamRepo) Ack(_ context.Context, _, _, messageID string) error {
	s.acked = append(s.acked, messageID)
	return nil
}

func TestScan_QueuesOnlyNewActivityFiles(t *testing.T) {
	dir := t.TempDir()

	newFile := filepath.Join(dir, "new.gpx")
	knownFile := filepath.Join(dir, "known.fit")
	require.NoError(t, os.WriteFile(newFile, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(knownFile, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	activityRepo := &stubActivityRepo{existing: map[string]bool{knownFile: true}}
	streamRepo := &stubStreamRepo{}

	w := NewScanWorker(activityRepo, streamRepo, dir, time.Minute, zap.NewNop())
	w.scan(context.Background())

	require.Len(t, streamRepo.published, 1)
	assert.Equal(t, domain.SourceFile, streamRepo.published[0].Source)
	assert.Equal(t, newFile, streamRepo.published[0].Path)
}

func TestHandleMessage_AcksCorruptPayload(t *testing.T) {
	streamRepo := &stubStreamRepo{}

	w := NewIngestWorker(streamRepo, nil, "group", 3, zap.NewNop())
	w.handleMessage(context.Background(), domain.StreamMessage{
		ID:   "1-0",
		Data: []byte("not json"),
	})

	assert.Equal(t, []string{"1-0"}, streamRepo.acked)
}

func TestHandleMessage_RedeliveredFailureDropsAfterMaxRetries(t *testing.T) {
	streamRepo := &stubStreamRepo{}

	// Unknown source makes process fail every time.
	w := NewIngestWorker(streamRepo, nil, "group", 2, zap.NewNop())
	msg := domain.StreamMessage{ID: "2-0", Data: []byte(`{"source":"carrier-pigeon"}`)}

	// A failed delivery stays un-acked so the consumer reclaims it from the
	// pending list and hands it back under the same message ID.
	w.handleMessage(context.Background(), msg)
	assert.Empty(t, streamRepo.acked)

	// The reclaimed delivery exhausts the budget: acked away, state released.
	w.handleMessage(context.Background(), msg)
	assert.Equal(t, []string{"2-0"}, streamRepo.acked)
	assert.Empty(t, w.attempts)
}

// Package ingest hosts the background workers of the import pipeline: the
// stream consumer, the directory scanner and the Strava sync loop.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/domain/repository"
	"github.com/tilescout/tilescout/internal/usecase"
	"github.com/tilescout/tilescout/internal/worker"
)

// IngestWorker consumes activity ingest events and runs the import.
type IngestWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	importUC     *usecase.ImportUseCase
	consumerName string
	maxRetries   int

	// attempts tracks per-message delivery counts so poisoned messages get
	// acked away instead of looping forever.
	attempts map[string]int
}

func NewIngestWorker(
	streamRepo repository.StreamRepository,
	importUC *usecase.ImportUseCase,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *IngestWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &IngestWorker{
		BaseWorker:   worker.NewBaseWorker("activity-ingest", consumerGroup, logger),
		streamRepo:   streamRepo,
		importUC:     importUC,
		consumerName: consumerName,
		maxRetries:   maxRetries,
		attempts:     make(map[string]int),
	}
}

func (w *IngestWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting IngestWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamActivityIngest, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	messages, err := w.streamRepo.Consume(ctx, domain.StreamActivityIngest, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				logger.Info("Message channel closed")
				return nil
			}
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *IngestWorker) handleMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger()

	var event domain.ActivityIngestEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Warn("Failed to parse message, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		w.ack(ctx, msg.ID)
		return
	}

	if err := w.process(ctx, event); err != nil {
		w.attempts[msg.ID]++
		if w.attempts[msg.ID] < w.maxRetries {
			logger.Warn("Import failed, leaving for redelivery",
				zap.String("message_id", msg.ID),
				zap.Int("attempt", w.attempts[msg.ID]),
				zap.Error(err))
			return
		}
		logger.Error("Import failed after max retries, dropping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}

	w.ack(ctx, msg.ID)
}

func (w *IngestWorker) process(ctx context.Context, event domain.ActivityIngestEvent) error {
	switch event.Source {
	case domain.SourceFile:
		_, err := w.importUC.ImportFile(ctx, event.Path)
		return err
	case domain.SourceStrava:
		_, err := w.importUC.ImportStravaActivity(ctx, event.StravaID)
		return err
	default:
		return fmt.Errorf("unknown event source %q", event.Source)
	}
}

func (w *IngestWorker) ack(ctx context.Context, messageID string) {
	delete(w.attempts, messageID)
	if err := w.streamRepo.Ack(ctx, domain.StreamActivityIngest, w.ConsumerGroup(), messageID); err != nil {
		w.Logger().Error("Failed to ack message",
			zap.String("message_id", messageID),
			zap.Error(err))
	}
}

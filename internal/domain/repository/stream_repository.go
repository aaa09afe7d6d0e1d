package repository

import (
	"context"

	"github.com/tilescout/tilescout/internal/domain"
)

// StreamRepository is the Redis-streams transport of the ingest pipeline.
type StreamRepository interface {
	// CreateConsumerGroup creates the group, tolerating BUSYGROUP.
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// PublishIngest enqueues an import request.
	PublishIngest(ctx context.Context, event domain.ActivityIngestEvent) error

	// PublishDone reports a finished import.
	PublishDone(ctx context.Context, event domain.ActivityDoneEvent) error

	// Consume reads messages via XReadGroup; the channel closes when ctx is done.
	Consume(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error)

	// Ack acknowledges a processed message.
	Ack(ctx context.Context, stream, group, messageID string) error
}

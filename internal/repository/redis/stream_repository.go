package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/domain/repository"
)

// pendingMinIdle is how long a delivered-but-unacked entry must sit idle
// before it is reclaimed and redelivered. Keeps entries a crashed or failed
// consumer left behind from staying in the pending list forever.
const pendingMinIdle = 30 * time.Second

type streamRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewStreamRepository(client *redis.Client, logger *zap.Logger) repository.StreamRepository {
	return &streamRepository{
		client: client,
		logger: logger,
	}
}

func (r *streamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	// Start the group at "$" (new messages only); MKSTREAM creates the
	// stream if it does not exist yet.
	err := r.client.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil {
		if err.Error() == "BUSYGROUP Consumer Group name already exists" {
			r.logger.Debug("Consumer group already exists",
				zap.String("stream", stream),
				zap.String("group", group))
			return nil
		}
		r.logger.Error("Failed to create consumer group",
			zap.String("stream", stream),
			zap.String("group", group),
			zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	r.logger.Info("Consumer group created",
		zap.String("stream", stream),
		zap.String("group", group))
	return nil
}

func (r *streamRepository) PublishIngest(ctx context.Context, event domain.ActivityIngestEvent) error {
	return r.publish(ctx, domain.StreamActivityIngest, event)
}

func (r *streamRepository) PublishDone(ctx context.Context, event domain.ActivityDoneEvent) error {
	return r.publish(ctx, domain.StreamActivityDone, event)
}

func (r *streamRepository) publish(ctx context.Context, stream string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal stream event: %w", err)
	}

	err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	if err != nil {
		r.logger.Error("Failed to publish stream event",
			zap.String("stream", stream),
			zap.Error(err))
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	r.logger.Debug("Stream event published", zap.String("stream", stream))
	return nil
}

func (r *streamRepository) Consume(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	msgChan := make(chan domain.StreamMessage, 10)

	go func() {
		defer close(msgChan)

		for {
			select {
			case <-ctx.Done():
				r.logger.Info("Stream consumer stopped",
					zap.String("stream", stream),
					zap.String("consumer", consumer))
				return
			default:
				// Reclaim entries whose previous delivery was never acked,
				// whether by this process or a crashed one. This is the
				// redelivery path for failed imports.
				claimed, _, err := r.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
					Stream:   stream,
					Group:    group,
					Consumer: consumer,
					MinIdle:  pendingMinIdle,
					Start:    "0-0",
					Count:    10,
				}).Result()
				if err != nil && err != redis.Nil && ctx.Err() == nil {
					r.logger.Error("Failed to claim pending messages",
						zap.String("stream", stream),
						zap.Error(err))
				}
				if !r.forward(ctx, msgChan, claimed) {
					return
				}

				// Block up to a second waiting for undelivered messages.
				result, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
					Group:    group,
					Consumer: consumer,
					Streams:  []string{stream, ">"},
					Count:    10,
					Block:    1 * time.Second,
				}).Result()

				if err != nil {
					if err == redis.Nil {
						continue
					}
					if ctx.Err() != nil {
						return
					}
					r.logger.Error("Failed to read from stream",
						zap.String("stream", stream),
						zap.Error(err))
					time.Sleep(time.Second)
					continue
				}

				for _, res := range result {
					if !r.forward(ctx, msgChan, res.Messages) {
						return
					}
				}
			}
		}
	}()

	return msgChan, nil
}

// forward pushes messages onto the consumer channel. Returns false when the
// context ended and the consumer loop should exit.
func (r *streamRepository) forward(ctx context.Context, msgChan chan<- domain.StreamMessage, messages []redis.XMessage) bool {
	for _, msg := range messages {
		data, ok := msg.Values["data"].(string)
		if !ok {
			r.logger.Warn("Message does not contain 'data' field",
				zap.String("message_id", msg.ID))
			continue
		}

		select {
		case msgChan <- domain.StreamMessage{
			ID:   msg.ID,
			Data: []byte(data),
		}:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (r *streamRepository) Ack(ctx context.Context, stream, group, messageID string) error {
	if err := r.client.XAck(ctx, stream, group, messageID).Err(); err != nil {
		r.logger.Error("Failed to ack message",
			zap.String("stream", stream),
			zap.String("message_id", messageID),
			zap.Error(err))
		return fmt.Errorf("failed to ack message: %w", err)
	}
	return nil
}

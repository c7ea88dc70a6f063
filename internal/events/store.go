package events

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the redis stream domain events are appended to.
const DefaultStream = "loja:events"

// RedisStreamStore appends events to a redis stream for downstream consumers.
type RedisStreamStore struct {
	Client *redis.Client
	Stream string
	MaxLen int64
}

func (s RedisStreamStore) stream() string {
	if s.Stream == "" {
		return DefaultStream
	}
	return s.Stream
}

// Append writes the event to the stream.
func (s RedisStreamStore) Append(ctx context.Context, event Event) error {
	if s.Client == nil {
		return errors.New("events: redis client not configured")
	}
	args := &redis.XAddArgs{
		Stream: s.stream(),
		Values: map[string]any{
			"id":           event.ID,
			"topic":        event.Topic,
			"aggregate_id": event.AggregateID,
			"payload":      string(event.Payload),
			"occurred_at":  event.OccurredAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		},
	}
	if s.MaxLen > 0 {
		args.MaxLen = s.MaxLen
		args.Approx = true
	}
	return s.Client.XAdd(ctx, args).Err()
}

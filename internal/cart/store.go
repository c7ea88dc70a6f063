package cart

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSnapshotMissing reports an absent snapshot. Callers treat it the same as
// an empty cart.
var ErrSnapshotMissing = errors.New("cart: snapshot missing")

// Store is the key-value persistence collaborator: load and save an opaque
// serialized snapshot by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}

// RedisStore persists snapshots in Redis with a TTL refreshed on every write.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func (s RedisStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

// Get loads the raw snapshot for key.
func (s RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.Client == nil {
		return nil, errors.New("cart: redis client not configured")
	}
	data, err := s.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotMissing
		}
		return nil, err
	}
	return data, nil
}

// Set writes the raw snapshot for key.
func (s RedisStore) Set(ctx context.Context, key string, blob []byte) error {
	if s.Client == nil {
		return errors.New("cart: redis client not configured")
	}
	return s.Client.Set(ctx, key, blob, s.ttl()).Err()
}

// Delete removes the snapshot for key.
func (s RedisStore) Delete(ctx context.Context, key string) error {
	if s.Client == nil {
		return errors.New("cart: redis client not configured")
	}
	return s.Client.Del(ctx, key).Err()
}

package health

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisChecker probes the redis dependency with a bounded ping.
type RedisChecker struct {
	Client *redis.Client
}

// PingRedis pings redis within the timeout.
func (c RedisChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Client.Ping(ctx).Err()
}

var _ Checker = RedisChecker{}

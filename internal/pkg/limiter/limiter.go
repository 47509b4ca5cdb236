package limiter

import (
	"context"
	"errors"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

var ErrRateLimited = errors.New("rate limited")

type Limiter struct {
	limiter *redis_rate.Limiter
}

func NewLimiter(client redis.UniversalClient) (*Limiter, error) {
	if client == nil {
		return nil, errors.New("limiter: redis client is required")
	}
	return &Limiter{redis_rate.NewLimiter(client)}, nil
}

// Allow consumes one token for key. ErrRateLimited means the bucket is empty; any
// other error is an infrastructure failure that callers decide how to treat.
func (l *Limiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) error {
	res, err := l.limiter.Allow(ctx, key, limit)
	if err != nil {
		return err
	}
	if res.Allowed == 0 {
		return ErrRateLimited
	}
	return nil
}

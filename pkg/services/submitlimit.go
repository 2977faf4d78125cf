package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// LimitDecision tells the caller whether the attempt was admitted and, when
// it was not, when the window resets.
type LimitDecision struct {
	ResetAt time.Time
	Allowed bool
}

// SubmitLimiter bounds verification submission attempts per user within a
// rolling window. Keyed state lives in the limiter's own store, never in
// process globals, so multiple server instances share one budget.
type SubmitLimiter interface {
	Check(ctx context.Context, key string) (LimitDecision, error)
}

// limiterCommands is the slice of the Redis API the limiter touches.
// *redis.Client satisfies it.
type limiterCommands interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

type redisSubmitLimiter struct {
	client limiterCommands
	window time.Duration
	limit  int64
}

// NewRedisSubmitLimiter builds a limiter over Redis with an INCR+EXPIRE
// window starting at the first attempt.
func NewRedisSubmitLimiter(client limiterCommands, limit int64, window time.Duration) SubmitLimiter {
	return &redisSubmitLimiter{client: client, limit: limit, window: window}
}

func (l *redisSubmitLimiter) Check(ctx context.Context, key string) (LimitDecision, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return LimitDecision{}, errors.Wrap(err, "rate limit incr")
	}

	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return LimitDecision{}, errors.Wrap(err, "rate limit expire")
		}
	}

	ttl, err := l.client.TTL(ctx, redisKey).Result()
	if err != nil {
		return LimitDecision{}, errors.Wrap(err, "rate limit ttl")
	}
	if ttl < 0 {
		ttl = l.window
	}

	return LimitDecision{
		Allowed: count <= l.limit,
		ResetAt: time.Now().Add(ttl),
	}, nil
}

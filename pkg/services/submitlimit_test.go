package services

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLimiterClient keeps counters and expirations in memory and records
// which keys received an EXPIRE, so tests can pin down the command sequence.
type fakeLimiterClient struct {
	counts  map[string]int64
	ttls    map[string]time.Duration
	expired []string
}

func newFakeLimiterClient() *fakeLimiterClient {
	return &fakeLimiterClient{
		counts: make(map[string]int64),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeLimiterClient) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeLimiterClient) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.ttls[key] = expiration
	f.expired = append(f.expired, key)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeLimiterClient) TTL(ctx context.Context, key string) *redis.DurationCmd {
	ttl, ok := f.ttls[key]
	if !ok {
		// Redis reports -1 for a key with no expiration set.
		ttl = -1
	}
	return redis.NewDurationResult(ttl, nil)
}

func TestSubmitLimiterAdmitsUpToLimitThenDenies(t *testing.T) {
	client := newFakeLimiterClient()
	limiter := NewRedisSubmitLimiter(client, 3, 24*time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := limiter.Check(ctx, "verification:submit:abc")
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "attempt %d should be admitted", i+1)
	}

	decision, err := limiter.Check(ctx, "verification:submit:abc")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), decision.ResetAt, 5*time.Second)
}

func TestSubmitLimiterStartsWindowOnFirstAttemptOnly(t *testing.T) {
	client := newFakeLimiterClient()
	limiter := NewRedisSubmitLimiter(client, 3, 24*time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := limiter.Check(ctx, "verification:submit:abc")
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"ratelimit:verification:submit:abc"}, client.expired)
	assert.Equal(t, 24*time.Hour, client.ttls["ratelimit:verification:submit:abc"])
}

func TestSubmitLimiterKeysAreIndependent(t *testing.T) {
	client := newFakeLimiterClient()
	limiter := NewRedisSubmitLimiter(client, 1, 24*time.Hour)
	ctx := context.Background()

	first, err := limiter.Check(ctx, "verification:submit:abc")
	require.NoError(t, err)
	denied, err := limiter.Check(ctx, "verification:submit:abc")
	require.NoError(t, err)
	other, err := limiter.Check(ctx, "verification:submit:def")
	require.NoError(t, err)

	assert.True(t, first.Allowed)
	assert.False(t, denied.Allowed)
	assert.True(t, other.Allowed)
}

func TestSubmitLimiterFallsBackToWindowWhenTTLMissing(t *testing.T) {
	// An evicted or EXPIRE-less key reports a negative TTL; the limiter
	// reports a full window rather than a reset in the past.
	client := newFakeLimiterClient()
	client.counts["ratelimit:verification:submit:abc"] = 1

	limiter := NewRedisSubmitLimiter(client, 3, time.Hour)

	decision, err := limiter.Check(context.Background(), "verification:submit:abc")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Empty(t, client.expired)
	assert.WithinDuration(t, time.Now().Add(time.Hour), decision.ResetAt, 5*time.Second)
}

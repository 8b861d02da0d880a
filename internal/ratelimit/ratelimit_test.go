package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/kpi/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestDisabledLimiterAllows(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	limiter, err := NewRedemptionLimiter(lc, config.Config{}, config.NewStaticSettings(config.DefaultAPISettings()), zap.NewNop())
	require.NoError(t, err)
	assert.False(t, limiter.Enabled())

	res, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	var nilLimiter *RedemptionLimiter
	res, err = nilLimiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestEnabledLimiterRequiresAddr(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := config.Config{RateLimit: config.RateLimitConfig{Enabled: true}}

	_, err := NewRedemptionLimiter(lc, cfg, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestTokenBucketRejectsBadInput(t *testing.T) {
	var bucket *TokenBucket
	_, err := bucket.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
	assert.Nil(t, NewTokenBucket(nil))
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, 50*time.Second, defaultBucketTTL(0.2, 5))
	assert.Equal(t, time.Second, defaultBucketTTL(100, 1))
	assert.Equal(t, time.Second, defaultBucketTTL(0, 0))
}

func TestNewResultRetryAfter(t *testing.T) {
	res := newResult(false, 0, 1_000, 0.5, 5)
	assert.False(t, res.Allowed)
	assert.Equal(t, 2*time.Second, res.RetryAfter)
	assert.Equal(t, time.UnixMilli(1_000).Add(2*time.Second), res.ResetTime)

	res = newResult(true, 3, 1_000, 0.5, 5)
	assert.True(t, res.Allowed)
	assert.Equal(t, 3, res.Remaining)
	assert.Zero(t, res.RetryAfter)
}

func TestCasts(t *testing.T) {
	assert.Equal(t, int64(1), castToInt(int64(1)))
	assert.Equal(t, int64(2), castToInt(2.9))
	assert.Equal(t, 1.5, castToFloat("1.5"))
	assert.Equal(t, 0.0, castToFloat("x"))
	assert.Equal(t, 4.0, castToFloat(int64(4)))
}

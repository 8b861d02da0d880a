package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/kpi/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyRedeemClient = "kpi:otk:redeem:%s"

// RedemptionLimiter throttles one-time key redemption per client. Rate and
// burst are read from the live API settings on every call.
type RedemptionLimiter struct {
	enabled  bool
	bucket   *TokenBucket
	settings *config.SettingsHolder
}

func NewRedemptionLimiter(lc fx.Lifecycle, cfg config.Config, settings *config.SettingsHolder, log *zap.Logger) (*RedemptionLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return &RedemptionLimiter{settings: settings}, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	log.Named("ratelimit").Info("one-time key redemption rate limit enabled", zap.String("redis_addr", addr))

	return NewRedemptionLimiterWithBucket(NewTokenBucket(client), settings), nil
}

func NewRedemptionLimiterWithBucket(bucket *TokenBucket, settings *config.SettingsHolder) *RedemptionLimiter {
	return &RedemptionLimiter{
		enabled:  bucket != nil,
		bucket:   bucket,
		settings: settings,
	}
}

func (l *RedemptionLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *RedemptionLimiter) Allow(ctx context.Context, client string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	client = strings.TrimSpace(client)
	if client == "" {
		client = "unknown"
	}
	s := l.settings.Get()
	return l.bucket.Allow(ctx, fmt.Sprintf(keyRedeemClient, client), s.RedeemRate, s.RedeemBurst)
}

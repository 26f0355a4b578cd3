package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/sightcare/netra/internal/config"
)

const keyIntakeIP = "intake:ip:%s"

// IntakeLimiter guards the public pledge intake endpoint per client IP.
// A nil limiter means rate limiting is disabled and everything passes.
type IntakeLimiter struct {
	enabled bool

	bucket *TokenBucket

	rate  float64
	burst int
}

func NewIntakeLimiter(cfg config.Config) (*IntakeLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.IntakeRate <= 0 || limitCfg.IntakeBurst <= 0 {
		return nil, errors.New("intake rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &IntakeLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    limitCfg.IntakeRate,
		burst:   limitCfg.IntakeBurst,
	}, nil
}

func (l *IntakeLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *IntakeLimiter) AllowIP(ctx context.Context, ip string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyIntakeIP, strings.TrimSpace(ip)), l.rate, l.burst)
}

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smallbiznis/catalog/internal/config"
)

const keyWriteClient = "catalog:write:client:%s"

type bucket interface {
	Allow(ctx context.Context, key string, rate float64, burst int) (*Result, error)
}

// WriteLimiter throttles product writes per client address.
type WriteLimiter struct {
	bucket bucket
	rate   float64
	burst  int
}

// NewWriteLimiter returns nil when rate limiting is disabled.
func NewWriteLimiter(tb *TokenBucket, cfg config.Config) (*WriteLimiter, error) {
	if !cfg.RateLimit.Enabled || tb == nil {
		return nil, nil
	}
	return newWriteLimiter(tb, cfg.RateLimit.WriteRate, cfg.RateLimit.WriteBurst)
}

func newWriteLimiter(b bucket, rate float64, burst int) (*WriteLimiter, error) {
	if rate <= 0 || burst <= 0 {
		return nil, errors.New("write rate limit must be positive")
	}
	return &WriteLimiter{bucket: b, rate: rate, burst: burst}, nil
}

func (l *WriteLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *WriteLimiter) Allow(ctx context.Context, clientKey string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		clientKey = "unknown"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyWriteClient, clientKey), l.rate, l.burst)
}

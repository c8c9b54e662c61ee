package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/catalog/internal/config"
	"github.com/smallbiznis/catalog/internal/product/domain"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const keySKULock = "catalog:sku:lock:%s"

const skuLockPollInterval = 25 * time.Millisecond

type Locker struct {
	client *redis.Client
	script *redis.Script
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
	}
}

// TryLock sets key to a fresh token if it is free. The token is needed to release it.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lock client not configured")
	}
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}

	token := ulid.Make().String()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// Release deletes key only while it still holds token.
func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil {
		return nil
	}
	if key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}

type tokenLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

// SKULocker serialises writes that claim the same SKU across instances.
// The unique index stays authoritative; the lock only narrows the window
// between the uniqueness check and the write.
type SKULocker struct {
	locker tokenLocker
	ttl    time.Duration
}

func NewSKULocker(locker *Locker, cfg config.Config) *SKULocker {
	if locker == nil {
		return nil
	}
	return newSKULocker(locker, cfg.RateLimit.SKULockTTL)
}

func newSKULocker(locker tokenLocker, ttl time.Duration) *SKULocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &SKULocker{locker: locker, ttl: ttl}
}

// Lock waits up to half the lock ttl for the SKU to become free.
func (s *SKULocker) Lock(ctx context.Context, sku string) (func(), error) {
	key := fmt.Sprintf(keySKULock, strings.TrimSpace(sku))
	deadline := time.Now().Add(s.ttl / 2)

	for {
		token, ok, err := s.locker.TryLock(ctx, key, s.ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
				defer cancel()
				_ = s.locker.Release(releaseCtx, key, token)
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, domain.SKUBusyError(sku)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(skuLockPollInterval):
		}
	}
}

var _ domain.SKULocker = (*SKULocker)(nil)

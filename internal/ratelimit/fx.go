package ratelimit

import (
	"github.com/smallbiznis/catalog/internal/product/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.limit",
	fx.Provide(NewClient),
	fx.Provide(NewLocker),
	fx.Provide(NewTokenBucket),
	fx.Provide(NewWriteLimiter),
	fx.Provide(NewSKULocker),
	fx.Provide(provideDomainLocker),
)

// provideDomainLocker keeps a disabled locker as a nil interface rather than a typed nil.
func provideDomainLocker(l *SKULocker) domain.SKULocker {
	if l == nil {
		return nil
	}
	return l
}

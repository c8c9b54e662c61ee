package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
	"gorm.io/gorm"
)

// GoroutineCountCheck fails when more than threshold goroutines are running.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(_ context.Context) error {
		if count := runtime.NumGoroutine(); count > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", count, threshold)
		}
		return nil
	}
}

// DatabaseCheck pings the pool behind conn.
func DatabaseCheck(conn *gorm.DB) CheckFunc {
	return func(ctx context.Context) error {
		if conn == nil {
			return errors.New("database not configured")
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return errors.Wrap(err, "database handle")
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return errors.Wrap(err, "ping database")
		}
		return nil
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck adapts any client with a context-aware Ping.
func PingCheck(name string, p pinger) CheckFunc {
	return func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return errors.Wrapf(err, "ping %s", name)
		}
		return nil
	}
}

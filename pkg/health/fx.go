package health

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const (
	checkInterval  = 10 * time.Second
	checkTimeout   = 2 * time.Second
	goroutineLimit = 10000
)

var Module = fx.Module("health",
	fx.Provide(New),
	fx.Invoke(Register),
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Health    *Health
	DB        *gorm.DB
	Redis     *redis.Client `optional:"true"`
}

// Register wires the process checks and ties readiness to the fx lifecycle.
func Register(p Params) {
	h := p.Health
	h.AddLivenessCheck("goroutines", checkTimeout, GoroutineCountCheck(goroutineLimit))
	h.AddReadinessCheck("database", checkTimeout, DatabaseCheck(p.DB))
	if p.Redis != nil {
		h.AddReadinessCheck("redis", checkTimeout, PingCheck("redis", redisPinger{p.Redis}))
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			h.Start(context.Background(), checkInterval)
			h.SetReady(true)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			_ = ctx
			h.SetReady(false)
			h.Stop()
			return nil
		},
	})
}

type redisPinger struct {
	client *redis.Client
}

func (r redisPinger) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

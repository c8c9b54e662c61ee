package main

import (
	"github.com/smallbiznis/catalog/internal/clock"
	"github.com/smallbiznis/catalog/internal/config"
	"github.com/smallbiznis/catalog/internal/migration"
	"github.com/smallbiznis/catalog/internal/observability"
	"github.com/smallbiznis/catalog/internal/product"
	"github.com/smallbiznis/catalog/internal/providers"
	"github.com/smallbiznis/catalog/internal/ratelimit"
	"github.com/smallbiznis/catalog/internal/server"
	"github.com/smallbiznis/catalog/pkg/db"
	"github.com/smallbiznis/catalog/pkg/health"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),

		// Core Infrastructure
		config.Module,
		clock.Module,
		observability.Module,
		db.Module,
		migration.Module,
		ratelimit.Module,
		health.Module,

		// Functional Domains
		product.Module,
		providers.Module,

		server.Module,
	)
	app.Run()
}

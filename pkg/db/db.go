package db

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/catalog/internal/config"
	obslogger "github.com/smallbiznis/catalog/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormprom "gorm.io/plugin/prometheus"
)

var Module = fx.Module("db",
	fx.Provide(ConfigFrom),
	fx.Provide(New),
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    Config
	AppConfig config.Config
	Log       *zap.Logger
}

// New opens the shared *gorm.DB, creating the database first when configured to.
func New(p Params) (*gorm.DB, error) {
	log := p.Log.Named("db")
	cfg := p.Config

	if cfg.Type == TypePostgres && cfg.CreateIfNotExists {
		err := retry(cfg, log, "ensure database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			created, err := EnsureDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			if created {
				log.Info("database created", zap.String("database", cfg.Name))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	gormLogger := obslogger.NewGormLogger(obslogger.DefaultGormLoggerConfig())

	var conn *gorm.DB
	err = retry(cfg, log, "open database", func() error {
		opened, openErr := gorm.Open(dialector, &gorm.Config{
			Logger:         gormLogger,
			TranslateError: true,
		})
		if openErr != nil {
			return openErr
		}
		conn = opened
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Use(otelgorm.NewPlugin(otelgorm.WithDBName(cfg.Name))); err != nil {
		return nil, fmt.Errorf("register tracing plugin: %w", err)
	}
	if p.AppConfig.IsProduction() {
		if err := conn.Use(gormprom.New(gormprom.Config{
			DBName:          cfg.Name,
			RefreshInterval: 15,
		})); err != nil {
			return nil, fmt.Errorf("register metrics plugin: %w", err)
		}
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	}
	if cfg.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing database pool")
			return sqlDB.Close()
		},
	})

	log.Info("database connected",
		zap.String("type", cfg.Type),
		zap.String("database", cfg.Name),
	)
	return conn, nil
}

func retry(cfg Config, log *zap.Logger, op string, fn func() error) error {
	attempts := cfg.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		log.Warn("database not reachable, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", cfg.ConnectRetryDelay),
			zap.Error(err),
		)
		time.Sleep(cfg.ConnectRetryDelay)
	}
	return fmt.Errorf("%s after %d attempts: %w", op, attempts, err)
}

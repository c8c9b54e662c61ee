package migration

import (
	"github.com/smallbiznis/catalog/internal/config"
	"github.com/smallbiznis/catalog/internal/seed"
	"github.com/smallbiznis/catalog/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Run),
	fx.Invoke(Seed),
)

func Run(conn *gorm.DB, cfg db.Config, log *zap.Logger) error {
	log = log.Named("migration")

	if cfg.Type != db.TypePostgres {
		log.Info("syncing schema from models", zap.String("type", cfg.Type))
		return AutoMigrate(conn)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	if err := RunMigrations(sqlDB); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}

// Seed loads the demo catalog when SEED_SAMPLE_PRODUCTS is set.
func Seed(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if !cfg.SeedSampleProducts {
		return nil
	}
	created, err := seed.EnsureSampleProducts(conn)
	if err != nil {
		return err
	}
	log.Named("migration").Info("sample products seeded", zap.Int("created", created))
	return nil
}

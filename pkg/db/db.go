// Package db opens the gorm connection backing the snapshot store.
package db

import (
	"fmt"

	"github.com/Cab6701/WaterService/internal/config"
	obslogger "github.com/Cab6701/WaterService/internal/observability/logger"
	"github.com/glebarez/sqlite"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dialect selects the gorm dialector for the configured snapshot backend.
func Dialect(cfg config.SnapshotConfig) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.Host,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.Port,
			cfg.SSLMode,
		)), nil
	case "sqlite":
		return sqlite.Open(cfg.DBPath), nil
	default:
		return nil, fmt.Errorf("unsupported %s type", cfg.DBType)
	}
}

// New opens the snapshot database. Snapshot-disabled deployments get a nil
// handle and run purely in memory.
func New(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.Snapshot.Disabled {
		log.Info("snapshot store disabled, running in-memory only")
		return nil, nil
	}

	dialector, err := Dialect(cfg.Snapshot)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: obslogger.NewGormLogger(obslogger.DefaultGormLoggerConfig()),
	})
	if err != nil {
		return nil, err
	}

	log.Info("snapshot store connected", zap.String("type", cfg.Snapshot.DBType))
	return conn, nil
}

var Module = fx.Module("db",
	fx.Provide(New),
)

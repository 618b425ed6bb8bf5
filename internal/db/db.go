// Package db opens the entity store for the configured gorm engine.
package db

import (
	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rollcall-rfid/rollcall/internal/config"
	"github.com/rollcall-rfid/rollcall/internal/db/dsn"
	"github.com/rollcall-rfid/rollcall/internal/db/models"
)

// Open connects to the database described by cfg.DB.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		dialector = postgres.Open(dsn.Create(cfg))
	case config.EngineSQLite:
		dialector = sqlite.Open(dsn.Create(cfg))
	case config.EngineMySQL:
		dialector = gormmysql.Open(dsn.Create(cfg))
	default:
		return nil, errors.Wrap(config.ErrUnsupportedEngine, cfg.DB.GormEngine)
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	}

	if cfg.DB.LogQueries {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sql db")
	}

	// sqlite allows a single writer; one connection serializes transactions
	// instead of surfacing SQLITE_BUSY to callers.
	if cfg.DB.GormEngine == config.EngineSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}

	return db, nil
}

// Migrate creates or updates every table of the entity store.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}

	return nil
}

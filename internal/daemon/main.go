// Package daemon assembles the entity store and the web service.
package daemon

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/clock"
	"github.com/rollcall-rfid/rollcall/internal/config"
	"github.com/rollcall-rfid/rollcall/internal/db"
	"github.com/rollcall-rfid/rollcall/internal/web"
)

// ErrConfigNil is returned by New without a configuration.
var ErrConfigNil = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	DB         *gorm.DB
	webService *web.Service
}

// Start starts the Daemon's web service and waits for a shutdown signal.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start()
}

// Web returns the wired web service.
func (d *Daemon) Web() *web.Service {
	return d.webService
}

// New opens and migrates the database, seeds it and wires the web service.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	return NewWithDB(cfg, gdb, clock.Real())
}

// NewWithDB wires a daemon around an already opened database.
func NewWithDB(cfg *config.Config, gdb *gorm.DB, clk clock.Clock) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	if err := db.Migrate(gdb); err != nil {
		return nil, err
	}

	if err := seed(cfg, gdb); err != nil {
		return nil, err
	}

	log.Info().Str("engine", cfg.DB.GormEngine).Msg("database ready")

	return &Daemon{
		DB:         gdb,
		webService: web.New(cfg, gdb, clk),
	}, nil
}

// Package web wires the fiber application serving the JSON API and the reader ingest endpoint.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/clock"
	"github.com/rollcall-rfid/rollcall/internal/config"
	fiberlogger "github.com/rollcall-rfid/rollcall/internal/logger/adapter/fiber"
	"github.com/rollcall-rfid/rollcall/internal/web/handler"
	"github.com/rollcall-rfid/rollcall/internal/web/handler/admins"
	"github.com/rollcall-rfid/rollcall/internal/web/handler/attendance"
	"github.com/rollcall-rfid/rollcall/internal/web/handler/groups"
	"github.com/rollcall-rfid/rollcall/internal/web/handler/readers"
	"github.com/rollcall-rfid/rollcall/internal/web/handler/rfidlogs"
	"github.com/rollcall-rfid/rollcall/internal/web/handler/scan"
	"github.com/rollcall-rfid/rollcall/internal/web/handler/sessions"
	"github.com/rollcall-rfid/rollcall/internal/web/handler/users"
)

const (
	// DefaultCheckAliveURI is served when Webserver.CheckAliveURI is empty.
	DefaultCheckAliveURI = "/checkalive"
	// MetricsURI serves prometheus metrics.
	MetricsURI = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the configured port and blocks until it stops.
func (s *Service) Start() error {
	var doneFiber = make(chan bool)

	addr := ":" + strconv.Itoa(s.cfg.Webserver.Port)

	go func() {
		log.Info().Str("addr", addr).Str("url", s.cfg.Webserver.URL).Msg("http server listening")

		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown blocks until SIGINT or SIGTERM and shuts the server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		if err := s.App.Shutdown(); err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether checkalive answers 200.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// SetAlive switches the checkalive answer.
func (s *Service) SetAlive(alive bool) {
	s.alive.Store(alive)
}

// checkAlive answers load balancer health checks.
func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("OK")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB, clk clock.Clock) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if clk == nil {
		clk = clock.Real()
	}

	checkAliveURI := cfg.Webserver.CheckAliveURI
	if checkAliveURI == "" {
		checkAliveURI = DefaultCheckAliveURI
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			StrictRouting:  false,
			Prefork:        false,
			Immutable:      true,
			ErrorHandler:   handler.ErrorHandler,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: checkAliveURI,
	}))

	service := &Service{
		cfg:          cfg,
		App:          app,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	app.Get(checkAliveURI, service.checkAlive)
	app.Get(MetricsURI, adaptor.HTTPHandler(promhttp.Handler()))

	for _, h := range []handler.Service{
		&users.Handler,
		&admins.Handler,
		&groups.Handler,
		&sessions.Handler,
		&attendance.Handler,
		&rfidlogs.Handler,
		&readers.Handler,
		&scan.Handler,
	} {
		h.Init(app, cfg, db, clk)
	}

	return service
}

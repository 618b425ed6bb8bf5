// Package scan serves the reader ingest endpoint.
package scan

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/clock"
	"github.com/rollcall-rfid/rollcall/internal/config"
	scancorrelator "github.com/rollcall-rfid/rollcall/internal/scan"
	"github.com/rollcall-rfid/rollcall/internal/web/handler"
)

const (
	// Path is the ingest path readers post to.
	Path = handler.RootPath + "scan"

	// HeaderLogID carries the scan log id of a failed ingest.
	HeaderLogID = "X-Scan-Log-ID"
)

// Service serves the ingest endpoint.
type Service struct {
	correlator *scancorrelator.Correlator
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, clk clock.Clock) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)

		return
	}

	correlator, err := scancorrelator.New(db, clk, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register scan metrics")

		return
	}

	s.correlator = correlator

	app.Post(Path, s.Ingest)
}

// Ingest logs a scan and applies it. The response carries the outcome, and
// on failure the error together with the id of the log entry already written.
func (s *Service) Ingest(c *fiber.Ctx) error {
	var req scancorrelator.Request
	if err := handler.ParseBody(c, &req); err != nil {
		return handler.SendError(c, err)
	}

	res, err := s.correlator.Ingest(c.UserContext(), req)
	if err != nil {
		if res != nil {
			c.Set(HeaderLogID, strconv.FormatUint(uint64(res.Log.ID), 10))
		}

		return handler.SendError(c, err)
	}

	status := fiber.StatusOK
	if res.Outcome == scancorrelator.OutcomeMarked || res.Outcome == scancorrelator.OutcomeSessionStarted {
		status = fiber.StatusCreated
	}

	return c.Status(status).JSON(res)
}

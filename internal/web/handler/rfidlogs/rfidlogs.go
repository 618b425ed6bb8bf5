// Package rfidlogs serves the raw scan log of the JSON API.
package rfidlogs

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/clock"
	"github.com/rollcall-rfid/rollcall/internal/config"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/rfidlog"
	"github.com/rollcall-rfid/rollcall/internal/query"
	"github.com/rollcall-rfid/rollcall/internal/web/handler"
)

// Path is the base path for the scan log.
const Path = handler.APIPath + "rfid-logs"

// Service serves scan log routes.
type Service struct {
	query *query.Facade
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ clock.Clock) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)

		return
	}

	s.query = query.New(db)

	app.Get(Path, s.List)
}

// List returns the newest ?limit scans.
func (s *Service) List(c *fiber.Ctx) error {
	rows, err := s.query.RFIDLogs(c.UserContext(), c.QueryInt("limit", rfidlog.DefaultLimit))
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(rows)
}

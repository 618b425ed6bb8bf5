// Package attendance serves the attendance history route of the JSON API.
package attendance

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/clock"
	"github.com/rollcall-rfid/rollcall/internal/config"
	attendancectl "github.com/rollcall-rfid/rollcall/internal/db/controller/attendance"
	"github.com/rollcall-rfid/rollcall/internal/query"
	"github.com/rollcall-rfid/rollcall/internal/web/handler"
)

// Path is the base path for attendance history.
const Path = handler.APIPath + "attendance"

// Service serves attendance routes.
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

// List returns attendance filtered by ?sessionId, ?userId and ?groupId, most recent first.
func (s *Service) List(c *fiber.Ctx) error {
	var (
		f   attendancectl.Filter
		err error
	)

	if f.SessionID, err = handler.QueryID(c, "sessionId"); err != nil {
		return handler.SendError(c, err)
	}

	if f.UserID, err = handler.QueryID(c, "userId"); err != nil {
		return handler.SendError(c, err)
	}

	if f.GroupID, err = handler.QueryID(c, "groupId"); err != nil {
		return handler.SendError(c, err)
	}

	rows, err := s.query.Attendance(c.UserContext(), f)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(rows)
}

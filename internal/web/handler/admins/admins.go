// Package admins serves the admin routes of the JSON API.
package admins

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/clock"
	"github.com/rollcall-rfid/rollcall/internal/config"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/admin"
	"github.com/rollcall-rfid/rollcall/internal/query"
	"github.com/rollcall-rfid/rollcall/internal/web/handler"
)

// Path is the base path for admins.
const Path = handler.APIPath + "admins"

// Service serves admin routes.
type Service struct {
	db    *gorm.DB
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

	s.db = db
	s.query = query.New(db)

	app.Get(Path, s.List)
	app.Post(Path, s.Create)
}

// List returns all admins.
func (s *Service) List(c *fiber.Ctx) error {
	admins, err := s.query.Admins(c.UserContext())
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(admins)
}

// Create adds an admin from {username, rfid}.
func (s *Service) Create(c *fiber.Ctx) error {
	var in admin.Input
	if err := handler.ParseBody(c, &in); err != nil {
		return handler.SendError(c, err)
	}

	a, err := admin.Create(s.db.WithContext(c.UserContext()), in)
	if err != nil {
		return handler.SendError(c, err)
	}

	log.Info().Uint("admin", a.ID).Str("username", a.Username).Msg("admin created")

	return c.Status(fiber.StatusCreated).JSON(a)
}

// Package readers serves the reader binding routes of the JSON API.
package readers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/clock"
	"github.com/rollcall-rfid/rollcall/internal/config"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/binding"
	"github.com/rollcall-rfid/rollcall/internal/query"
	"github.com/rollcall-rfid/rollcall/internal/web/handler"
)

const (
	// Path is the base path for readers.
	Path = handler.APIPath + "readers"

	// RouteBinding addresses the binding of one reader.
	RouteBinding = Path + "/:id/binding"
)

// Service serves reader routes.
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
	app.Get(RouteBinding, s.Get)
	app.Put(RouteBinding, s.Bind)
	app.Delete(RouteBinding, s.Unbind)
}

// List returns all reader bindings.
func (s *Service) List(c *fiber.Ctx) error {
	list, err := s.query.Bindings(c.UserContext())
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(list)
}

// Get returns the binding of a reader.
func (s *Service) Get(c *fiber.Ctx) error {
	b, err := s.query.Binding(c.UserContext(), c.Params("id"))
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(b)
}

// Bind points a reader at {groupId} or {sessionId}.
func (s *Service) Bind(c *fiber.Ctx) error {
	var target binding.Target
	if err := handler.ParseBody(c, &target); err != nil {
		return handler.SendError(c, err)
	}

	b, err := binding.Bind(s.db.WithContext(c.UserContext()), c.Params("id"), target)
	if err != nil {
		return handler.SendError(c, err)
	}

	log.Info().Str("reader", b.ReaderID).Msg("reader bound")

	return c.JSON(b)
}

// Unbind removes the binding of a reader.
func (s *Service) Unbind(c *fiber.Ctx) error {
	if err := binding.Unbind(s.db.WithContext(c.UserContext()), c.Params("id")); err != nil {
		return handler.SendError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Package users serves the user routes of the JSON API.
package users

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/clock"
	"github.com/rollcall-rfid/rollcall/internal/config"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/user"
	"github.com/rollcall-rfid/rollcall/internal/query"
	"github.com/rollcall-rfid/rollcall/internal/web/handler"
)

const (
	// Path is the base path for users.
	Path = handler.APIPath + "users"

	// RouteUser addresses one user.
	RouteUser = Path + "/:id"
	// RouteRFID reassigns the tag of one user.
	RouteRFID = RouteUser + "/rfid"

	// QueryGroupID restricts the list to the members of a group.
	QueryGroupID = "groupId"
)

// Service serves user routes.
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
	app.Get(RouteUser, s.Get)
	app.Delete(RouteUser, s.Delete)
	app.Put(RouteRFID, s.UpdateRFID)
}

// List returns all users or the members of ?groupId.
func (s *Service) List(c *fiber.Ctx) error {
	groupID, err := handler.QueryID(c, QueryGroupID)
	if err != nil {
		return handler.SendError(c, err)
	}

	users, err := s.query.Users(c.UserContext(), groupID)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(users)
}

// Get returns one user.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	u, err := s.query.User(c.UserContext(), id)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(u)
}

// Create adds a user from {name, rfid}.
func (s *Service) Create(c *fiber.Ctx) error {
	var in user.Input
	if err := handler.ParseBody(c, &in); err != nil {
		return handler.SendError(c, err)
	}

	u, err := user.Create(s.db.WithContext(c.UserContext()), in)
	if err != nil {
		return handler.SendError(c, err)
	}

	log.Info().Uint("user", u.ID).Msg("user created")

	return c.Status(fiber.StatusCreated).JSON(u)
}

// UpdateRFID reassigns the tag of a user from {rfid}.
func (s *Service) UpdateRFID(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	var in struct {
		RFID string `json:"rfid"`
	}
	if err = handler.ParseBody(c, &in); err != nil {
		return handler.SendError(c, err)
	}

	u, err := user.UpdateRFID(s.db.WithContext(c.UserContext()), id, in.RFID)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(u)
}

// Delete removes a user with its memberships and attendance and returns the deleted user.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	u, err := user.Delete(s.db.WithContext(c.UserContext()), id)
	if err != nil {
		return handler.SendError(c, err)
	}

	log.Info().Uint("user", u.ID).Msg("user deleted")

	return c.JSON(u)
}

// Package groups serves the group, roster and group session routes of the JSON API.
package groups

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/clock"
	"github.com/rollcall-rfid/rollcall/internal/config"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/group"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/membership"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/session"
	"github.com/rollcall-rfid/rollcall/internal/db/models"
	"github.com/rollcall-rfid/rollcall/internal/query"
	"github.com/rollcall-rfid/rollcall/internal/web/handler"
)

const (
	// Path is the base path for groups.
	Path = handler.APIPath + "groups"

	// RouteGroup addresses one group.
	RouteGroup = Path + "/:id"
	// RouteMembers adds members to a group.
	RouteMembers = RouteGroup + "/members"
	// RouteMember removes one member from a group.
	RouteMember = RouteMembers + "/:userId"
	// RouteSessions lists the sessions of a group split into active and past.
	RouteSessions = RouteGroup + "/sessions"
	// RouteToggle starts or ends the session of a group.
	RouteToggle = RouteSessions + "/toggle"
)

// Service serves group routes.
type Service struct {
	db    *gorm.DB
	clock clock.Clock
	query *query.Facade
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, clk clock.Clock) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)

		return
	}

	s.db = db
	s.clock = clk
	s.query = query.New(db)

	app.Get(Path, s.List)
	app.Post(Path, s.Create)
	app.Get(RouteGroup, s.Get)
	app.Delete(RouteGroup, s.Delete)
	app.Post(RouteMembers, s.AddMember)
	app.Delete(RouteMember, s.RemoveMember)
	app.Get(RouteSessions, s.Sessions)
	app.Post(RouteToggle, s.Toggle)
}

// List returns all groups with their rosters.
func (s *Service) List(c *fiber.Ctx) error {
	groups, err := s.query.Groups(c.UserContext())
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(groups)
}

// Get returns one group with its roster.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	g, err := s.query.Group(c.UserContext(), id)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(g)
}

// Create adds a group from {name, description}.
func (s *Service) Create(c *fiber.Ctx) error {
	var in group.Input
	if err := handler.ParseBody(c, &in); err != nil {
		return handler.SendError(c, err)
	}

	g, err := group.Create(s.db.WithContext(c.UserContext()), in)
	if err != nil {
		return handler.SendError(c, err)
	}

	log.Info().Uint("group", g.ID).Msg("group created")

	return c.Status(fiber.StatusCreated).JSON(group.WithUsers{Group: *g, Users: []models.User{}})
}

// Delete removes a group with its memberships, sessions and attendance.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	g, err := group.Delete(s.db.WithContext(c.UserContext()), id)
	if err != nil {
		return handler.SendError(c, err)
	}

	log.Info().Uint("group", g.ID).Msg("group deleted")

	return c.JSON(g)
}

// AddMember adds {userId} to the group and returns the new roster.
func (s *Service) AddMember(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	var in struct {
		UserID uint `json:"userId"`
	}
	if err = handler.ParseBody(c, &in); err != nil {
		return handler.SendError(c, err)
	}

	roster, err := membership.Add(s.db.WithContext(c.UserContext()), id, in.UserID)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(roster)
}

// RemoveMember removes a user from the group and returns the new roster.
func (s *Service) RemoveMember(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	userID, err := handler.ParamID(c, "userId")
	if err != nil {
		return handler.SendError(c, err)
	}

	roster, err := membership.Remove(s.db.WithContext(c.UserContext()), id, userID)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(roster)
}

// Sessions returns the group's sessions as {active, past}.
func (s *Service) Sessions(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	split, err := s.query.SplitSessions(c.UserContext(), id)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(split)
}

// Toggle ends the group's active session or starts one for {adminId}.
func (s *Service) Toggle(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	var in struct {
		AdminID uint `json:"adminId"`
	}
	if err = handler.ParseBody(c, &in); err != nil {
		return handler.SendError(c, err)
	}

	sess, started, err := session.Toggle(s.db.WithContext(c.UserContext()), id, in.AdminID, s.clock.Now())
	if err != nil {
		return handler.SendError(c, err)
	}

	status := fiber.StatusOK
	if started {
		status = fiber.StatusCreated
	}

	return c.Status(status).JSON(sess)
}

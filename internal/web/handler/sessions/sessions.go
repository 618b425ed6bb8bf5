// Package sessions serves the session lifecycle and attendance routes of the JSON API.
package sessions

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/clock"
	"github.com/rollcall-rfid/rollcall/internal/config"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/attendance"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/session"
	"github.com/rollcall-rfid/rollcall/internal/db/models"
	"github.com/rollcall-rfid/rollcall/internal/query"
	"github.com/rollcall-rfid/rollcall/internal/web/handler"
)

const (
	// Path is the base path for sessions.
	Path = handler.APIPath + "sessions"

	// RouteSession addresses one session.
	RouteSession = Path + "/:id"
	// RouteEnd ends one session.
	RouteEnd = RouteSession + "/end"
	// RouteAttendance lists and marks attendance of one session.
	RouteAttendance = RouteSession + "/attendance"
	// RouteAttendee unmarks one user.
	RouteAttendee = RouteAttendance + "/:userId"
	// RouteEligible lists members not yet marked.
	RouteEligible = RouteSession + "/eligible"

	// QueryGroupID filters by group.
	QueryGroupID = "groupId"
	// QueryCreatedBy filters by creating admin.
	QueryCreatedBy = "createdBy"
	// QueryState filters by active or ended.
	QueryState = "state"
)

// Service serves session routes.
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
	app.Get(RouteSession, s.Get)
	app.Delete(RouteSession, s.Delete)
	app.Post(RouteEnd, s.End)
	app.Get(RouteAttendance, s.Attendance)
	app.Post(RouteAttendance, s.Mark)
	app.Delete(RouteAttendee, s.Unmark)
	app.Get(RouteEligible, s.Eligible)
}

// List returns sessions filtered by ?groupId, ?createdBy and ?state.
func (s *Service) List(c *fiber.Ctx) error {
	var (
		f   = session.Filter{State: models.SessionState(c.Query(QueryState))}
		err error
	)

	if f.GroupID, err = handler.QueryID(c, QueryGroupID); err != nil {
		return handler.SendError(c, err)
	}

	if f.CreatedBy, err = handler.QueryID(c, QueryCreatedBy); err != nil {
		return handler.SendError(c, err)
	}

	list, err := s.query.Sessions(c.UserContext(), f)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(list)
}

// Get returns a session with roster, attendance and eligible members.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	detail, err := s.query.Session(c.UserContext(), id)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(detail)
}

// Create starts a session from {groupId, createdBy}.
func (s *Service) Create(c *fiber.Ctx) error {
	var in struct {
		GroupID   uint `json:"groupId"`
		CreatedBy uint `json:"createdBy"`
	}
	if err := handler.ParseBody(c, &in); err != nil {
		return handler.SendError(c, err)
	}

	sess, err := session.Create(s.db.WithContext(c.UserContext()), in.GroupID, in.CreatedBy, s.clock.Now())
	if err != nil {
		return handler.SendError(c, err)
	}

	log.Info().Uint("session", sess.ID).Uint("group", sess.GroupID).Msg("session started")

	return c.Status(fiber.StatusCreated).JSON(sess)
}

// End ends a session.
func (s *Service) End(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	sess, err := session.End(s.db.WithContext(c.UserContext()), id, s.clock.Now())
	if err != nil {
		return handler.SendError(c, err)
	}

	log.Info().Uint("session", sess.ID).Msg("session ended")

	return c.JSON(sess)
}

// Delete removes a session and its attendance.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	sess, err := session.Delete(s.db.WithContext(c.UserContext()), id)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(sess)
}

// Attendance returns the attendance of a session, most recent first.
func (s *Service) Attendance(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	if _, err = session.Get(s.db.WithContext(c.UserContext()), id); err != nil {
		return handler.SendError(c, err)
	}

	rows, err := s.query.Attendance(c.UserContext(), attendance.Filter{SessionID: &id})
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(rows)
}

// Mark marks {userId} present.
func (s *Service) Mark(c *fiber.Ctx) error {
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

	a, err := attendance.Mark(s.db.WithContext(c.UserContext()), in.UserID, id, s.clock.Now())
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(a)
}

// Unmark deletes the attendance of a user.
func (s *Service) Unmark(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	userID, err := handler.ParamID(c, "userId")
	if err != nil {
		return handler.SendError(c, err)
	}

	if err = attendance.Unmark(s.db.WithContext(c.UserContext()), userID, id); err != nil {
		return handler.SendError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Eligible returns the members of the session's group not yet marked.
func (s *Service) Eligible(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	users, err := s.query.Eligible(c.UserContext(), id)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(users)
}

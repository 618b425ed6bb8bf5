// Package scan correlates raw RFID scans with users, admins and sessions.
//
// Every scan is appended to the scan log first, in its own commit. Only after
// that is the tag resolved and attendance marked, so a failure while marking
// never loses the record of what was physically scanned.
package scan

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/clock"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/admin"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/attendance"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/binding"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/group"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/rfidlog"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/session"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/user"
	"github.com/rollcall-rfid/rollcall/internal/db/models"
	"github.com/rollcall-rfid/rollcall/internal/errs"
)

// Outcome says what a scan did.
type Outcome string

const (
	// OutcomeMarked means the user was marked present.
	OutcomeMarked Outcome = "marked"
	// OutcomeAlreadyPresent means the user had already been marked; nothing changed.
	OutcomeAlreadyPresent Outcome = "already_present"
	// OutcomeUnknownTag means no user or admin holds the tag.
	OutcomeUnknownTag Outcome = "unknown_tag"
	// OutcomeNoSession means there was no active session to credit the scan to.
	OutcomeNoSession Outcome = "no_session"
	// OutcomeSessionStarted means an admin tag started a session.
	OutcomeSessionStarted Outcome = "session_started"
	// OutcomeSessionEnded means an admin tag ended a session.
	OutcomeSessionEnded Outcome = "session_ended"

	outcomeError Outcome = "error"
)

// Request is one scan reported by a reader.
//
// The session a scan is credited to is chosen by SessionID if set, otherwise
// by the most recent active session of GroupID, otherwise by the stored
// binding of ReaderID.
type Request struct {
	RFID       string     `json:"rfid"`
	ReaderID   string     `json:"readerId,omitempty"`
	GroupID    *uint      `json:"groupId,omitempty"`
	SessionID  *uint      `json:"sessionId,omitempty"`
	ObservedAt *time.Time `json:"observedAt,omitempty"`
}

// Result describes the effect of a scan.
type Result struct {
	Outcome    Outcome            `json:"outcome"`
	Log        *models.RFIDLog    `json:"log"`
	User       *models.User       `json:"user,omitempty"`
	Admin      *models.Admin      `json:"admin,omitempty"`
	Session    *models.Session    `json:"session,omitempty"`
	Attendance *models.Attendance `json:"attendance,omitempty"`
}

// Correlator ingests scans. It is safe for concurrent use.
type Correlator struct {
	db      *gorm.DB
	clock   clock.Clock
	outcome *prometheus.CounterVec
}

// New returns a Correlator writing to db. Scan outcomes are counted in
// rollcall_scans_total registered with reg.
func New(db *gorm.DB, clk clock.Clock, reg prometheus.Registerer) (*Correlator, error) {
	outcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_scans_total",
		Help: "Number of ingested RFID scans, differentiated by outcome.",
	}, []string{"outcome"})

	if err := reg.Register(outcome); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}

		outcome = are.ExistingCollector.(*prometheus.CounterVec) //nolint:forcetypeassert
	}

	return &Correlator{db: db, clock: clk, outcome: outcome}, nil
}

// target is the resolved correlation binding. fromReader marks a stored
// binding, which may have gone stale; explicit request ids are trusted.
type target struct {
	groupID    *uint
	sessionID  *uint
	fromReader bool
}

func (t target) empty() bool {
	return t.groupID == nil && t.sessionID == nil
}

// Ingest logs the scan and applies it. Only a repeated mark of a present
// user is absorbed; every other failure after the log append is returned
// together with the partial Result.
func (c *Correlator) Ingest(ctx context.Context, req Request) (*Result, error) {
	res, err := c.ingest(ctx, req)

	o := outcomeError
	if err == nil {
		o = res.Outcome
	}

	c.outcome.WithLabelValues(string(o)).Inc()

	return res, err
}

func (c *Correlator) ingest(ctx context.Context, req Request) (*Result, error) {
	db := c.db.WithContext(ctx)

	observedAt := c.clock.Now()
	if req.ObservedAt != nil {
		observedAt = *req.ObservedAt
	}

	entry, err := rfidlog.Append(db, rfidlog.Event{RFID: req.RFID, ReaderID: req.ReaderID, ObservedAt: observedAt})
	if err != nil {
		return nil, err
	}

	res := &Result{Log: entry}
	logger := log.With().Uint("log", entry.ID).Str("rfid", entry.RFID).Str("reader", entry.ReaderID).Logger()

	tgt, err := c.resolveTarget(db, req)
	if err != nil {
		return res, err
	}

	// readers may pad the tag; the log keeps the padding, lookups do not
	tag := strings.TrimSpace(entry.RFID)

	u, err := user.GetByRFID(db, tag)

	switch {
	case err == nil:
		res.User = u

		return res, c.markUser(db, res, tgt)
	case !errors.Is(err, user.ErrUserNotFound):
		return res, err
	}

	a, err := admin.GetByRFID(db, tag)

	switch {
	case err == nil:
		res.Admin = a

		return res, c.toggleSession(db, res, tgt)
	case errors.Is(err, admin.ErrAdminNotFound):
		res.Outcome = OutcomeUnknownTag
		logger.Info().Msg("scan of unknown tag logged")

		return res, nil
	default:
		return res, err
	}
}

func (c *Correlator) resolveTarget(db *gorm.DB, req Request) (target, error) {
	switch {
	case req.SessionID != nil:
		return target{sessionID: req.SessionID}, nil
	case req.GroupID != nil:
		return target{groupID: req.GroupID}, nil
	case req.ReaderID == "":
		return target{}, nil
	}

	b, err := binding.Get(db, req.ReaderID)
	if errors.Is(err, binding.ErrBindingNotFound) {
		return target{}, nil
	}

	if err != nil {
		return target{}, err
	}

	return target{groupID: b.GroupID, sessionID: b.SessionID, fromReader: true}, nil
}

// activeSession returns the session a user scan is credited to, or nil if
// there is none. Stale reader bindings count as no session.
func (c *Correlator) activeSession(db *gorm.DB, tgt target) (*models.Session, error) {
	var (
		s   *models.Session
		err error
	)

	if tgt.sessionID != nil {
		s, err = session.GetActive(db, *tgt.sessionID)
	} else {
		s, err = session.ActiveForGroup(db, *tgt.groupID)
	}

	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, session.ErrSessionEnded), errors.Is(err, session.ErrNoActiveSession):
		return nil, nil //nolint:nilnil
	case tgt.fromReader && errs.Kind(err) == errs.ErrNotFound:
		log.Warn().Err(err).Msg("reader binding points to a missing group or session")

		return nil, nil //nolint:nilnil
	default:
		return nil, err
	}
}

func (c *Correlator) markUser(db *gorm.DB, res *Result, tgt target) error {
	logger := log.With().Uint("log", res.Log.ID).Uint("user", res.User.ID).Logger()

	if tgt.empty() {
		res.Outcome = OutcomeNoSession
		logger.Info().Msg("scan without session binding logged")

		return nil
	}

	s, err := c.activeSession(db, tgt)
	if err != nil {
		return err
	}

	if s == nil {
		res.Outcome = OutcomeNoSession
		logger.Info().Msg("scan without active session logged")

		return nil
	}

	res.Session = s

	a, err := attendance.Mark(db, res.User.ID, s.ID, c.clock.Now())

	switch {
	case err == nil:
		res.Attendance = a
		res.Outcome = OutcomeMarked
		logger.Info().Uint("session", s.ID).Msg("attendance marked")

		return nil
	case errs.Kind(err) == errs.ErrConflict:
		res.Outcome = OutcomeAlreadyPresent
		logger.Debug().Uint("session", s.ID).Msg("repeat scan of present user")

		return nil
	default:
		return err
	}
}

// toggleSession applies an admin scan: a group target starts or ends the
// group's session, a session target ends that session.
func (c *Correlator) toggleSession(db *gorm.DB, res *Result, tgt target) error {
	logger := log.With().Uint("log", res.Log.ID).Uint("admin", res.Admin.ID).Logger()

	switch {
	case tgt.sessionID != nil:
		s, err := session.End(db, *tgt.sessionID, c.clock.Now())

		switch {
		case err == nil:
			res.Session = s
			res.Outcome = OutcomeSessionEnded
			logger.Info().Uint("session", s.ID).Msg("session ended by admin scan")

			return nil
		case errs.Kind(err) == errs.ErrInvalidState, tgt.fromReader && errs.Kind(err) == errs.ErrNotFound:
			res.Outcome = OutcomeNoSession

			return nil
		default:
			return err
		}
	case tgt.groupID != nil:
		s, started, err := session.Toggle(db, *tgt.groupID, res.Admin.ID, c.clock.Now())
		if err != nil {
			if tgt.fromReader && errors.Is(err, group.ErrGroupNotFound) {
				res.Outcome = OutcomeNoSession

				return nil
			}

			return err
		}

		res.Session = s
		res.Outcome = OutcomeSessionEnded

		if started {
			res.Outcome = OutcomeSessionStarted
		}

		logger.Info().Uint("session", s.ID).Str("outcome", string(res.Outcome)).Msg("session toggled by admin scan")

		return nil
	default:
		res.Outcome = OutcomeNoSession
		logger.Info().Msg("admin scan without group binding logged")

		return nil
	}
}

// Package query serves the read-side projections of the attendance domain.
package query

import (
	"context"

	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/db/controller/admin"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/attendance"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/binding"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/group"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/membership"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/rfidlog"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/session"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/user"
	"github.com/rollcall-rfid/rollcall/internal/db/models"
)

// SessionDetail is a session with its group roster, attendance and eligible set.
type SessionDetail struct {
	models.Session
	Users      []models.User       `json:"users"`
	Attendance []models.Attendance `json:"attendance"`
	Eligible   []models.User       `json:"eligible"`
}

// Facade reads projections from the entity store. Every read sees the
// committed state at the time of the call; nothing is cached.
type Facade struct {
	db *gorm.DB
}

// New returns a Facade reading from db.
func New(db *gorm.DB) *Facade {
	return &Facade{db: db}
}

// Users lists all users, or the current members of groupID if set.
func (f *Facade) Users(ctx context.Context, groupID *uint) ([]models.User, error) {
	db := f.db.WithContext(ctx)

	if groupID != nil {
		return membership.Roster(db, *groupID)
	}

	return user.List(db, nil)
}

// User returns user id.
func (f *Facade) User(ctx context.Context, id uint) (*models.User, error) {
	return user.Get(f.db.WithContext(ctx), id)
}

// Admins lists all admins.
func (f *Facade) Admins(ctx context.Context) ([]models.Admin, error) {
	return admin.List(f.db.WithContext(ctx))
}

// Groups lists all groups each with its roster.
func (f *Facade) Groups(ctx context.Context) ([]group.WithUsers, error) {
	return group.ListWithUsers(f.db.WithContext(ctx))
}

// Group returns group id with its roster.
func (f *Facade) Group(ctx context.Context, id uint) (*group.WithUsers, error) {
	return group.GetWithUsers(f.db.WithContext(ctx), id)
}

// Sessions lists sessions matching filter with group and admin loaded.
func (f *Facade) Sessions(ctx context.Context, filter session.Filter) ([]models.Session, error) {
	return session.List(f.db.WithContext(ctx), filter)
}

// SplitSessions returns the active and past sessions of groupID.
func (f *Facade) SplitSessions(ctx context.Context, groupID uint) (*session.Split, error) {
	return session.SplitByGroup(f.db.WithContext(ctx), groupID)
}

// Session returns session id with the roster of its group, its attendance
// (most recent first) and the members not yet marked.
func (f *Facade) Session(ctx context.Context, id uint) (*SessionDetail, error) {
	db := f.db.WithContext(ctx)

	s, err := session.Get(db, id)
	if err != nil {
		return nil, err
	}

	users, err := user.List(db, &s.GroupID)
	if err != nil {
		return nil, err
	}

	rows, err := attendance.History(db, attendance.Filter{SessionID: &s.ID})
	if err != nil {
		return nil, err
	}

	eligible, err := attendance.Eligible(db, s.ID)
	if err != nil {
		return nil, err
	}

	return &SessionDetail{Session: *s, Users: users, Attendance: rows, Eligible: eligible}, nil
}

// Attendance lists attendance matching filter, most recent mark first.
func (f *Facade) Attendance(ctx context.Context, filter attendance.Filter) ([]models.Attendance, error) {
	return attendance.History(f.db.WithContext(ctx), filter)
}

// Eligible lists the members of the session's group not yet marked present.
func (f *Facade) Eligible(ctx context.Context, sessionID uint) ([]models.User, error) {
	return attendance.Eligible(f.db.WithContext(ctx), sessionID)
}

// RFIDLogs lists the newest limit raw scans.
func (f *Facade) RFIDLogs(ctx context.Context, limit int) ([]models.RFIDLog, error) {
	return rfidlog.List(f.db.WithContext(ctx), limit)
}

// Binding returns the stored binding of readerID.
func (f *Facade) Binding(ctx context.Context, readerID string) (*binding.Binding, error) {
	return binding.Get(f.db.WithContext(ctx), readerID)
}

// Bindings lists all reader bindings.
func (f *Facade) Bindings(ctx context.Context) ([]binding.Binding, error) {
	return binding.List(f.db.WithContext(ctx))
}

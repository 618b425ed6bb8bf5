// Package session implements the session lifecycle: a session is created
// active for a group and is ended exactly once.
package session

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rollcall-rfid/rollcall/internal/db/controller/admin"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/group"
	"github.com/rollcall-rfid/rollcall/internal/db/models"
	"github.com/rollcall-rfid/rollcall/internal/errs"
)

var (
	// ErrSessionNotFound is returned when no session has the given id.
	ErrSessionNotFound = errs.New(errs.ErrNotFound, "session not found")
	// ErrSessionEnded is returned when ending a session that has already ended.
	ErrSessionEnded = errs.New(errs.ErrInvalidState, "session already ended")
	// ErrNoActiveSession is returned when a group has no active session.
	ErrNoActiveSession = errs.New(errs.ErrNotFound, "group has no active session")
	// ErrUnknownState is returned for a state filter other than active or ended.
	ErrUnknownState = errs.New(errs.ErrValidation, "state must be active or ended")
)

// Filter narrows List. Zero values do not filter.
type Filter struct {
	GroupID   *uint
	CreatedBy *uint
	State     models.SessionState
}

// Split partitions the sessions of one group by state.
type Split struct {
	Active []models.Session `json:"active"`
	Past   []models.Session `json:"past"`
}

// Create starts a new active session of groupID created by adminID at now.
func Create(db *gorm.DB, groupID, adminID uint, now time.Time) (*models.Session, error) {
	s := &models.Session{GroupID: groupID, CreatedBy: adminID, StartTime: now.UTC()}

	err := db.Transaction(func(tx *gorm.DB) error {
		ok, err := group.Exists(tx, groupID)
		if err != nil {
			return err
		}

		if !ok {
			return group.ErrGroupNotFound
		}

		if _, err = admin.Get(tx, adminID); err != nil {
			return err
		}

		return tx.Omit(clause.Associations).Create(s).Error
	})
	if err != nil {
		return nil, err
	}

	return Get(db, s.ID)
}

// End sets the end time of session id. Only the first of several concurrent
// calls succeeds; the update is conditional on end_time being unset.
func End(db *gorm.DB, id uint, now time.Time) (*models.Session, error) {
	result := db.Model(&models.Session{}).
		Where("id = ? AND end_time IS NULL", id).
		Update("end_time", now.UTC())
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		var n int64
		if err := db.Model(&models.Session{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return nil, err
		}

		if n == 0 {
			return nil, ErrSessionNotFound
		}

		return nil, ErrSessionEnded
	}

	return Get(db, id)
}

// Delete removes session id and its attendance in one transaction. Active and
// ended sessions can both be deleted. The deleted session is returned.
func Delete(db *gorm.DB, id uint) (*models.Session, error) {
	var s models.Session

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&s, id).Error; err != nil {
			return err
		}

		if err := tx.Where("session_id = ?", id).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Session{}, id).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	return &s, nil
}

// Toggle ends the most recent active session of groupID, or starts one when
// none is active. started reports which of the two happened.
func Toggle(db *gorm.DB, groupID, adminID uint, now time.Time) (s *models.Session, started bool, err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := lockGroup(tx, groupID); err != nil {
			return err
		}

		active, err := ActiveForGroup(tx, groupID)

		switch {
		case errors.Is(err, ErrNoActiveSession):
			s, err = Create(tx, groupID, adminID, now)
			started = err == nil

			return err
		case err != nil:
			return err
		}

		s, err = End(tx, active.ID, now)

		return err
	})
	if err != nil {
		return nil, false, err
	}

	return s, started, nil
}

// lockGroup takes a row lock on groupID so concurrent toggles of one group
// run one after the other. sqlite has no row locks; its single writer
// connection already serializes the transaction.
func lockGroup(tx *gorm.DB, groupID uint) error {
	if tx.Dialector.Name() == "sqlite" {
		return nil
	}

	var g models.Group

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&g, groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return group.ErrGroupNotFound
	}

	return err
}

// Get retrieves session id with its group and creating admin.
func Get(db *gorm.DB, id uint) (*models.Session, error) {
	var s models.Session

	if err := preload(db).First(&s, id).Error; err != nil {
		return nil, translate(err)
	}

	return &s, nil
}

// GetActive retrieves session id and fails with errs.ErrInvalidState if it has ended.
func GetActive(db *gorm.DB, id uint) (*models.Session, error) {
	s, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if !s.Active() {
		return nil, ErrSessionEnded
	}

	return s, nil
}

// ActiveForGroup returns the most recently started active session of groupID.
func ActiveForGroup(db *gorm.DB, groupID uint) (*models.Session, error) {
	var s models.Session

	err := preload(db).
		Where("group_id = ? AND end_time IS NULL", groupID).
		Order("start_time DESC, id DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ok, existsErr := group.Exists(db, groupID)
		if existsErr != nil {
			return nil, existsErr
		}

		if !ok {
			return nil, group.ErrGroupNotFound
		}

		return nil, ErrNoActiveSession
	}

	if err != nil {
		return nil, err
	}

	return &s, nil
}

// List returns sessions matching f, newest start first.
func List(db *gorm.DB, f Filter) ([]models.Session, error) {
	q := preload(db)

	if f.GroupID != nil {
		q = q.Where("group_id = ?", *f.GroupID)
	}

	if f.CreatedBy != nil {
		q = q.Where("created_by = ?", *f.CreatedBy)
	}

	switch f.State {
	case "":
	case models.SessionActive:
		q = q.Where("end_time IS NULL")
	case models.SessionEnded:
		q = q.Where("end_time IS NOT NULL")
	default:
		return nil, ErrUnknownState
	}

	var sessions []models.Session

	if err := q.Order("start_time DESC, id DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}

	return sessions, nil
}

// SplitByGroup returns the sessions of groupID partitioned into active and past.
func SplitByGroup(db *gorm.DB, groupID uint) (*Split, error) {
	ok, err := group.Exists(db, groupID)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, group.ErrGroupNotFound
	}

	sessions, err := List(db, Filter{GroupID: &groupID})
	if err != nil {
		return nil, err
	}

	split := &Split{Active: []models.Session{}, Past: []models.Session{}}

	for _, s := range sessions {
		if s.Active() {
			split.Active = append(split.Active, s)
		} else {
			split.Past = append(split.Past, s)
		}
	}

	return split, nil
}

func preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Group").Preload("CreatedByAdmin")
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSessionNotFound
	}

	return err
}

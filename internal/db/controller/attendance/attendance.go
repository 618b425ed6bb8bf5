// Package attendance marks and unmarks users present at sessions and derives
// the set of users still eligible to be marked.
package attendance

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rollcall-rfid/rollcall/internal/db/controller/membership"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/session"
	"github.com/rollcall-rfid/rollcall/internal/db/models"
	"github.com/rollcall-rfid/rollcall/internal/errs"
)

var (
	// ErrAlreadyPresent is returned when the user is already marked for the session.
	ErrAlreadyPresent = errs.New(errs.ErrConflict, "attendance already recorded")
	// ErrNotEligible is returned when the user is not a current member of the session's group.
	ErrNotEligible = errs.New(errs.ErrNotFound, "user is not a member of the session's group")
	// ErrAttendanceNotFound is returned when unmarking a pair that was never marked.
	ErrAttendanceNotFound = errs.New(errs.ErrNotFound, "attendance not found")
)

// Filter narrows History. Nil fields do not filter.
type Filter struct {
	SessionID *uint
	UserID    *uint
	GroupID   *uint
}

// Mark records userID present at sessionID at now.
//
// The session must exist and be active, and userID must currently belong to
// its group. A second mark of the same pair fails with ErrAlreadyPresent; the
// unique index on (user_id, session_id) decides between concurrent marks.
func Mark(db *gorm.DB, userID, sessionID uint, now time.Time) (*models.Attendance, error) {
	a := &models.Attendance{UserID: userID, SessionID: sessionID, CreatedAt: now.UTC()}

	err := db.Transaction(func(tx *gorm.DB) error {
		s, err := session.GetActive(tx, sessionID)
		if err != nil {
			return err
		}

		member, err := membership.IsMember(tx, s.GroupID, userID)
		if err != nil {
			return err
		}

		if !member {
			return ErrNotEligible
		}

		err = tx.Omit(clause.Associations).Create(a).Error
		if errs.IsDuplicate(err) {
			return ErrAlreadyPresent
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return a, nil
}

// Unmark deletes the attendance of userID at sessionID. It is allowed on
// ended sessions so mistakes can be corrected afterwards.
func Unmark(db *gorm.DB, userID, sessionID uint) error {
	result := db.Where("user_id = ? AND session_id = ?", userID, sessionID).Delete(&models.Attendance{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAttendanceNotFound
	}

	return nil
}

// Eligible returns the current members of the session's group that are not
// yet marked present, ordered by name then id.
func Eligible(db *gorm.DB, sessionID uint) ([]models.User, error) {
	s, err := session.Get(db, sessionID)
	if err != nil {
		return nil, err
	}

	present := db.Model(&models.Attendance{}).Select("user_id").Where("session_id = ?", sessionID)

	var users []models.User

	err = db.Model(&models.User{}).
		Joins("JOIN user_groups ON user_groups.user_id = users.id").
		Where("user_groups.group_id = ?", s.GroupID).
		Where("users.id NOT IN (?)", present).
		Order("users.name, users.id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

// History returns attendance matching f with user and session loaded, most
// recent mark first. Rows marked at the same instant are ordered by id, newest first.
func History(db *gorm.DB, f Filter) ([]models.Attendance, error) {
	q := db.Model(&models.Attendance{}).
		Preload("User").
		Preload("Session").
		Preload("Session.Group")

	if f.SessionID != nil {
		q = q.Where("attendance.session_id = ?", *f.SessionID)
	}

	if f.UserID != nil {
		q = q.Where("attendance.user_id = ?", *f.UserID)
	}

	if f.GroupID != nil {
		q = q.Where("attendance.session_id IN (?)",
			db.Model(&models.Session{}).Select("id").Where("group_id = ?", *f.GroupID))
	}

	var rows []models.Attendance

	if err := q.Order("attendance.created_at DESC, attendance.id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

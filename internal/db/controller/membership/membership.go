// Package membership adds and removes users from group rosters.
//
// Removing a member never touches attendance: history recorded while the user
// was a member stays as it was.
package membership

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rollcall-rfid/rollcall/internal/db/controller/group"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/user"
	"github.com/rollcall-rfid/rollcall/internal/db/models"
	"github.com/rollcall-rfid/rollcall/internal/errs"
)

var (
	// ErrAlreadyMember is returned when the user already belongs to the group.
	ErrAlreadyMember = errs.New(errs.ErrConflict, "user is already a member of the group")
	// ErrNotMember is returned when the (group, user) pair does not exist.
	ErrNotMember = errs.New(errs.ErrNotFound, "user is not a member of the group")
)

// Add makes userID a member of groupID and returns the updated roster.
func Add(db *gorm.DB, groupID, userID uint) ([]models.User, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := requireGroup(tx, groupID); err != nil {
			return err
		}

		if _, err := user.Get(tx, userID); err != nil {
			return err
		}

		err := tx.Omit(clause.Associations).Create(&models.UserGroup{UserID: userID, GroupID: groupID}).Error
		if errs.IsDuplicate(err) {
			return ErrAlreadyMember
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return user.List(db, &groupID)
}

// Remove deletes the membership of userID in groupID and returns the updated roster.
func Remove(db *gorm.DB, groupID, userID uint) ([]models.User, error) {
	result := db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.UserGroup{})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrNotMember
	}

	return user.List(db, &groupID)
}

// Roster returns the current members of groupID ordered by name then id.
func Roster(db *gorm.DB, groupID uint) ([]models.User, error) {
	if err := requireGroup(db, groupID); err != nil {
		return nil, err
	}

	return user.List(db, &groupID)
}

// IsMember reports whether userID currently belongs to groupID.
func IsMember(db *gorm.DB, groupID, userID uint) (bool, error) {
	var n int64

	err := db.Model(&models.UserGroup{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&n).Error

	return n > 0, err
}

func requireGroup(db *gorm.DB, groupID uint) error {
	ok, err := group.Exists(db, groupID)
	if err != nil {
		return err
	}

	if !ok {
		return group.ErrGroupNotFound
	}

	return nil
}

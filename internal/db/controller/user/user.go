// Package user provides the entity store operations for users.
package user

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/db/models"
	"github.com/rollcall-rfid/rollcall/internal/errs"
	"github.com/rollcall-rfid/rollcall/internal/validate"
)

var (
	// ErrUserNotFound is returned when no user has the given id or tag.
	ErrUserNotFound = errs.New(errs.ErrNotFound, "user not found")
	// ErrRFIDTaken is returned when the tag is already assigned to a user or an admin.
	ErrRFIDTaken = errs.New(errs.ErrConflict, "rfid already assigned")
)

// Input holds the fields accepted when creating a user.
type Input struct {
	Name string `json:"name" validate:"required,max=100"`
	RFID string `json:"rfid" validate:"required,max=64"`
}

type rfidInput struct {
	RFID string `json:"rfid" validate:"required,max=64"`
}

func (in *Input) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.RFID = strings.TrimSpace(in.RFID)
}

// Create inserts a new user. The tag must not be held by another user or an admin.
func Create(db *gorm.DB, in Input) (*models.User, error) {
	in.normalize()

	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	u := &models.User{Name: in.Name, RFID: in.RFID}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := checkAdminTag(tx, in.RFID); err != nil {
			return err
		}

		return tx.Create(u).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	return u, nil
}

// UpdateRFID reassigns the tag of user id. Past scans keep the old raw tag.
func UpdateRFID(db *gorm.DB, id uint, rfid string) (*models.User, error) {
	in := rfidInput{RFID: strings.TrimSpace(rfid)}

	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	var u models.User

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, id).Error; err != nil {
			return err
		}

		if u.RFID == in.RFID {
			return nil
		}

		if err := checkAdminTag(tx, in.RFID); err != nil {
			return err
		}

		u.RFID = in.RFID

		return tx.Model(&u).Update("rfid", in.RFID).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

// Delete removes user id together with its memberships and attendance in one transaction.
// The deleted user is returned.
func Delete(db *gorm.DB, id uint) (*models.User, error) {
	var u models.User

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, id).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.UserGroup{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

// Get retrieves a user by id.
func Get(db *gorm.DB, id uint) (*models.User, error) {
	var u models.User

	if err := db.First(&u, id).Error; err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

// GetByRFID resolves a tag to the user currently holding it.
func GetByRFID(db *gorm.DB, rfid string) (*models.User, error) {
	var u models.User

	if err := db.Where("rfid = ?", rfid).First(&u).Error; err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

// List returns all users ordered by name then id. A non-nil groupID restricts
// the result to that group's current members.
func List(db *gorm.DB, groupID *uint) ([]models.User, error) {
	var users []models.User

	q := db.Model(&models.User{})
	if groupID != nil {
		q = q.Joins("JOIN user_groups ON user_groups.user_id = users.id").
			Where("user_groups.group_id = ?", *groupID)
	}

	if err := q.Order("users.name, users.id").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func checkAdminTag(tx *gorm.DB, rfid string) error {
	var n int64

	if err := tx.Model(&models.Admin{}).Where("rfid = ?", rfid).Count(&n).Error; err != nil {
		return err
	}

	if n > 0 {
		return ErrRFIDTaken
	}

	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrUserNotFound
	case errs.IsDuplicate(err):
		return ErrRFIDTaken
	default:
		return err
	}
}

// Package admin provides the entity store operations for admins.
package admin

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/db/models"
	"github.com/rollcall-rfid/rollcall/internal/errs"
	"github.com/rollcall-rfid/rollcall/internal/validate"
)

var (
	// ErrAdminNotFound is returned when no admin has the given id or tag.
	ErrAdminNotFound = errs.New(errs.ErrNotFound, "admin not found")
	// ErrAdminTaken is returned when the username or tag is already in use.
	ErrAdminTaken = errs.New(errs.ErrConflict, "admin username or rfid already in use")
)

// Input holds the fields accepted when creating an admin.
type Input struct {
	Username string `json:"username" validate:"required,max=100"`
	RFID     string `json:"rfid"     validate:"required,max=64"`
}

// Create inserts a new admin. The tag must not be assigned to a user.
func Create(db *gorm.DB, in Input) (*models.Admin, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.RFID = strings.TrimSpace(in.RFID)

	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	a := &models.Admin{Username: in.Username, RFID: in.RFID}

	err := db.Transaction(func(tx *gorm.DB) error {
		var n int64

		if err := tx.Model(&models.User{}).Where("rfid = ?", in.RFID).Count(&n).Error; err != nil {
			return err
		}

		if n > 0 {
			return ErrAdminTaken
		}

		return tx.Create(a).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	return a, nil
}

// Get retrieves an admin by id.
func Get(db *gorm.DB, id uint) (*models.Admin, error) {
	var a models.Admin

	if err := db.First(&a, id).Error; err != nil {
		return nil, translate(err)
	}

	return &a, nil
}

// GetByRFID resolves a tag to the admin holding it.
func GetByRFID(db *gorm.DB, rfid string) (*models.Admin, error) {
	var a models.Admin

	if err := db.Where("rfid = ?", rfid).First(&a).Error; err != nil {
		return nil, translate(err)
	}

	return &a, nil
}

// List returns all admins ordered by username.
func List(db *gorm.DB) ([]models.Admin, error) {
	var admins []models.Admin

	if err := db.Order("username, id").Find(&admins).Error; err != nil {
		return nil, err
	}

	return admins, nil
}

// Count returns the number of admins.
func Count(db *gorm.DB) (int64, error) {
	var n int64

	err := db.Model(&models.Admin{}).Count(&n).Error

	return n, err
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrAdminNotFound
	case errs.IsDuplicate(err):
		return ErrAdminTaken
	default:
		return err
	}
}

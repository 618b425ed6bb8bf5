// Package group provides the entity store operations for groups.
package group

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/db/models"
	"github.com/rollcall-rfid/rollcall/internal/errs"
	"github.com/rollcall-rfid/rollcall/internal/validate"
)

// ErrGroupNotFound is returned when no group has the given id.
var ErrGroupNotFound = errs.New(errs.ErrNotFound, "group not found")

// Input holds the fields accepted when creating a group.
type Input struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
}

// WithUsers is a group together with its current roster.
type WithUsers struct {
	models.Group
	Users []models.User `json:"users"`
}

// Create inserts a new group. An absent description is stored as "".
func Create(db *gorm.DB, in Input) (*models.Group, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	g := &models.Group{Name: in.Name, Description: in.Description}
	if err := db.Create(g).Error; err != nil {
		return nil, err
	}

	return g, nil
}

// Delete removes group id with its memberships, its sessions and their attendance
// in one transaction. The deleted group is returned.
func Delete(db *gorm.DB, id uint) (*models.Group, error) {
	var g models.Group

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&g, id).Error; err != nil {
			return err
		}

		sessions := tx.Model(&models.Session{}).Select("id").Where("group_id = ?", id)

		if err := tx.Where("session_id IN (?)", sessions).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}

		if err := tx.Where("group_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return err
		}

		if err := tx.Where("group_id = ?", id).Delete(&models.UserGroup{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Group{}, id).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	return &g, nil
}

// Get retrieves a group by id.
func Get(db *gorm.DB, id uint) (*models.Group, error) {
	var g models.Group

	if err := db.First(&g, id).Error; err != nil {
		return nil, translate(err)
	}

	return &g, nil
}

// Exists reports whether group id exists.
func Exists(db *gorm.DB, id uint) (bool, error) {
	var n int64

	err := db.Model(&models.Group{}).Where("id = ?", id).Count(&n).Error

	return n > 0, err
}

// GetWithUsers retrieves a group and its roster ordered by name then id.
func GetWithUsers(db *gorm.DB, id uint) (*WithUsers, error) {
	g, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	rosters, err := rosters(db, []uint{g.ID})
	if err != nil {
		return nil, err
	}

	return &WithUsers{Group: *g, Users: rosters[g.ID]}, nil
}

// List returns all groups ordered by name then id.
func List(db *gorm.DB) ([]models.Group, error) {
	var groups []models.Group

	if err := db.Order("name, id").Find(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

// ListWithUsers returns all groups each with its roster.
func ListWithUsers(db *gorm.DB) ([]WithUsers, error) {
	groups, err := List(db)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}

	byGroup, err := rosters(db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]WithUsers, 0, len(groups))
	for _, g := range groups {
		out = append(out, WithUsers{Group: g, Users: byGroup[g.ID]})
	}

	return out, nil
}

type memberRow struct {
	GroupID uint
	models.User
}

// rosters loads the members of all given groups in one query.
// Every requested id maps to a non-nil slice.
func rosters(db *gorm.DB, ids []uint) (map[uint][]models.User, error) {
	out := make(map[uint][]models.User, len(ids))
	for _, id := range ids {
		out[id] = []models.User{}
	}

	if len(ids) == 0 {
		return out, nil
	}

	var rows []memberRow

	err := db.Table("users").
		Select("user_groups.group_id, users.*").
		Joins("JOIN user_groups ON user_groups.user_id = users.id").
		Where("user_groups.group_id IN ?", ids).
		Order("users.name, users.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		out[r.GroupID] = append(out[r.GroupID], r.User)
	}

	return out, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrGroupNotFound
	}

	return err
}

// Package rfidlog appends raw scans to the append-only scan log.
package rfidlog

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/db/models"
	"github.com/rollcall-rfid/rollcall/internal/validate"
)

const (
	// DefaultLimit is used by List when no limit is given.
	DefaultLimit = 100
	// MaxLimit caps the number of rows List returns.
	MaxLimit = 1000
)

// Event is one scan as reported by a reader.
type Event struct {
	RFID       string    `json:"rfid"       validate:"required"`
	ReaderID   string    `json:"readerId"`
	ObservedAt time.Time `json:"observedAt" validate:"required"`
}

// Append writes ev to the log in its own statement. The tag is stored byte for
// byte as received; only an empty tag is rejected.
func Append(db *gorm.DB, ev Event) (*models.RFIDLog, error) {
	ev.ReaderID = strings.TrimSpace(ev.ReaderID)

	if err := validate.Struct(ev); err != nil {
		return nil, err
	}

	row := &models.RFIDLog{RFID: ev.RFID, ReaderID: ev.ReaderID, ObservedAt: ev.ObservedAt.UTC()}
	if err := db.Create(row).Error; err != nil {
		return nil, err
	}

	return row, nil
}

// List returns the newest limit scans first. limit <= 0 means DefaultLimit.
func List(db *gorm.DB, limit int) ([]models.RFIDLog, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	var rows []models.RFIDLog

	if err := db.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

package daemon

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/config"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/admin"
)

// seed creates the configured admin when the admin table is empty.
func seed(cfg *config.Config, db *gorm.DB) error {
	if cfg.Seed.AdminUsername == "" || cfg.Seed.AdminRFID == "" {
		return nil
	}

	count, err := admin.Count(db)
	if err != nil {
		return errors.Wrap(err, "count admins")
	}

	if count > 0 {
		return nil
	}

	a, err := admin.Create(db, admin.Input{
		Username: cfg.Seed.AdminUsername,
		RFID:     cfg.Seed.AdminRFID,
	})
	if err != nil {
		return errors.Wrap(err, "seed admin")
	}

	log.Info().Uint("id", a.ID).Str("username", a.Username).Msg("seeded admin")

	return nil
}

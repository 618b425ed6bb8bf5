// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/rollcall-rfid/rollcall/internal/config"
)

// sqlitePragmas are always applied to sqlite connections: cascades rely on
// foreign keys and concurrent writers need to wait instead of failing.
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Create builds the Data Source Name for the configured gorm engine.
func Create(cfg *config.Config) string {
	db := cfg.DB

	switch db.GormEngine {
	case config.EnginePostgres:
		out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			db.Host,
			db.Port,
			db.User,
			db.Password,
			db.Name,
		)
		if db.Extras != "" {
			out += " " + db.Extras
		}

		return out
	case config.EngineSQLite:
		out := db.Name + "?" + sqlitePragmas
		if strings.Contains(db.Name, "?") {
			out = db.Name + "&" + sqlitePragmas
		}

		if db.Extras != "" {
			out += "&" + db.Extras
		}

		return out
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			db.User,
			db.Password,
			db.Host,
			db.Port,
			db.Name,
			db.Extras,
		)
	}
}

package dbtest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ErrInjected is the error raised by deletes that FailDeletes intercepts.
var ErrInjected = errors.New("injected delete failure")

// FailDeletes makes every DELETE on table fail with ErrInjected before it
// reaches the database. Other tables are unaffected.
func FailDeletes(t *testing.T, db *gorm.DB, table string) {
	t.Helper()

	err := db.Callback().Delete().Before("gorm:delete").Register("dbtest:fail_delete_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(ErrInjected)
		}
	})
	require.NoError(t, err)
}

package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall-rfid/rollcall/internal/db/dbtest"
	"github.com/rollcall-rfid/rollcall/internal/db/models"
	"github.com/rollcall-rfid/rollcall/internal/errs"
)

func TestCreate(t *testing.T) {
	db := dbtest.New(t)

	require.NoError(t, db.Create(&models.User{Name: "Alice", RFID: "USER-TAG"}).Error)

	testCases := []struct {
		name    string
		in      Input
		wantErr error
	}{
		{name: "valid", in: Input{Username: "root", RFID: "ROOT"}},
		{name: "missing username", in: Input{RFID: "X"}, wantErr: errs.ErrValidation},
		{name: "missing rfid", in: Input{Username: "ops"}, wantErr: errs.ErrValidation},
		{name: "duplicate username", in: Input{Username: "root", RFID: "OTHER"}, wantErr: errs.ErrConflict},
		{name: "duplicate rfid", in: Input{Username: "ops", RFID: "ROOT"}, wantErr: errs.ErrConflict},
		{name: "user tag", in: Input{Username: "ops", RFID: "USER-TAG"}, wantErr: errs.ErrConflict},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := Create(db, tc.in)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.NotZero(t, a.ID)
		})
	}

	n, err := Count(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestLookups(t *testing.T) {
	db := dbtest.New(t)

	zed, err := Create(db, Input{Username: "zed", RFID: "Z"})
	require.NoError(t, err)
	_, err = Create(db, Input{Username: "amy", RFID: "A"})
	require.NoError(t, err)

	got, err := Get(db, zed.ID)
	require.NoError(t, err)
	assert.Equal(t, "zed", got.Username)

	got, err = GetByRFID(db, "A")
	require.NoError(t, err)
	assert.Equal(t, "amy", got.Username)

	_, err = GetByRFID(db, "nope")
	require.ErrorIs(t, err, ErrAdminNotFound)

	_, err = Get(db, 42)
	require.ErrorIs(t, err, errs.ErrNotFound)

	all, err := List(db)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "amy", all[0].Username)
}

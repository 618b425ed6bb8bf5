package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall-rfid/rollcall/internal/db/dbtest"
	"github.com/rollcall-rfid/rollcall/internal/db/models"
	"github.com/rollcall-rfid/rollcall/internal/errs"
)

func TestAdd(t *testing.T) {
	db := dbtest.New(t)

	g := models.Group{Name: "Chess"}
	require.NoError(t, db.Create(&g).Error)
	u := models.User{Name: "Alice", RFID: "A"}
	require.NoError(t, db.Create(&u).Error)

	roster, err := Add(db, g.ID, u.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, u.ID, roster[0].ID)

	_, err = Add(db, g.ID, u.ID)
	require.ErrorIs(t, err, ErrAlreadyMember)
	require.ErrorIs(t, err, errs.ErrConflict)

	_, err = Add(db, 999, u.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = Add(db, g.ID, 999)
	require.ErrorIs(t, err, errs.ErrNotFound)

	ok, err := IsMember(db, g.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemoveKeepsAttendance(t *testing.T) {
	db := dbtest.New(t)

	g := models.Group{Name: "Chess"}
	require.NoError(t, db.Create(&g).Error)
	alice := models.User{Name: "Alice", RFID: "A"}
	require.NoError(t, db.Create(&alice).Error)
	bob := models.User{Name: "Bob", RFID: "B"}
	require.NoError(t, db.Create(&bob).Error)
	admin := models.Admin{Username: "root", RFID: "ROOT"}
	require.NoError(t, db.Create(&admin).Error)

	_, err := Add(db, g.ID, alice.ID)
	require.NoError(t, err)
	_, err = Add(db, g.ID, bob.ID)
	require.NoError(t, err)

	s := models.Session{GroupID: g.ID, CreatedBy: admin.ID, StartTime: time.Now().UTC()}
	require.NoError(t, db.Omit("Group", "CreatedByAdmin").Create(&s).Error)
	require.NoError(t, db.Omit("User", "Session").Create(&models.Attendance{UserID: alice.ID, SessionID: s.ID}).Error)

	roster, err := Remove(db, g.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "Bob", roster[0].Name)

	var n int64
	require.NoError(t, db.Model(&models.Attendance{}).Where("user_id = ?", alice.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	_, err = Remove(db, g.ID, alice.ID)
	require.ErrorIs(t, err, ErrNotMember)
}

func TestRoster(t *testing.T) {
	db := dbtest.New(t)

	g := models.Group{Name: "Chess"}
	require.NoError(t, db.Create(&g).Error)

	roster, err := Roster(db, g.ID)
	require.NoError(t, err)
	assert.Empty(t, roster)

	_, err = Roster(db, 999)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

package group

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/db/dbtest"
	"github.com/rollcall-rfid/rollcall/internal/db/models"
	"github.com/rollcall-rfid/rollcall/internal/errs"
)

func seedMember(t *testing.T, db *gorm.DB, g *models.Group, name, rfid string) models.User {
	t.Helper()

	u := models.User{Name: name, RFID: rfid}
	require.NoError(t, db.Create(&u).Error)
	require.NoError(t, db.Omit("User", "Group").Create(&models.UserGroup{UserID: u.ID, GroupID: g.ID}).Error)

	return u
}

func TestCreate(t *testing.T) {
	db := dbtest.New(t)

	g, err := Create(db, Input{Name: " Chess Club "})
	require.NoError(t, err)
	assert.Equal(t, "Chess Club", g.Name)
	assert.Empty(t, g.Description)

	_, err = Create(db, Input{Name: ""})
	require.ErrorIs(t, err, errs.ErrValidation)

	// names need not be unique
	_, err = Create(db, Input{Name: "Chess Club", Description: "second"})
	require.NoError(t, err)
}

func TestDeleteRollsBackPartialCascade(t *testing.T) {
	db := dbtest.New(t)

	chess, err := Create(db, Input{Name: "Chess"})
	require.NoError(t, err)

	alice := seedMember(t, db, chess, "Alice", "A")

	admin := models.Admin{Username: "root", RFID: "ROOT"}
	require.NoError(t, db.Create(&admin).Error)

	s := models.Session{GroupID: chess.ID, CreatedBy: admin.ID, StartTime: time.Now().UTC()}
	require.NoError(t, db.Omit("Group", "CreatedByAdmin").Create(&s).Error)
	require.NoError(t, db.Omit("User", "Session").Create(&models.Attendance{UserID: alice.ID, SessionID: s.ID}).Error)

	// attendance and sessions are deleted before memberships; failing there
	// must bring both back
	dbtest.FailDeletes(t, db, "user_groups")

	_, err = Delete(db, chess.ID)
	require.ErrorIs(t, err, dbtest.ErrInjected)

	var n int64
	require.NoError(t, db.Model(&models.Group{}).Where("id = ?", chess.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	require.NoError(t, db.Model(&models.Session{}).Where("group_id = ?", chess.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	require.NoError(t, db.Model(&models.Attendance{}).Where("session_id = ?", s.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	require.NoError(t, db.Model(&models.UserGroup{}).Where("group_id = ?", chess.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestDeleteCascades(t *testing.T) {
	db := dbtest.New(t)

	chess, err := Create(db, Input{Name: "Chess"})
	require.NoError(t, err)
	drama, err := Create(db, Input{Name: "Drama"})
	require.NoError(t, err)

	alice := seedMember(t, db, chess, "Alice", "A")

	admin := models.Admin{Username: "root", RFID: "ROOT"}
	require.NoError(t, db.Create(&admin).Error)

	var sessionIDs []uint

	for _, g := range []*models.Group{chess, chess, drama} {
		s := models.Session{GroupID: g.ID, CreatedBy: admin.ID, StartTime: time.Now().UTC()}
		require.NoError(t, db.Omit("Group", "CreatedByAdmin").Create(&s).Error)
		require.NoError(t, db.Omit("User", "Session").Create(&models.Attendance{UserID: alice.ID, SessionID: s.ID}).Error)
		sessionIDs = append(sessionIDs, s.ID)
	}

	deleted, err := Delete(db, chess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chess", deleted.Name)

	var n int64
	require.NoError(t, db.Model(&models.Session{}).Where("group_id = ?", chess.ID).Count(&n).Error)
	assert.Zero(t, n, "sessions of the group are gone")
	require.NoError(t, db.Model(&models.Attendance{}).Where("session_id IN ?", sessionIDs[:2]).Count(&n).Error)
	assert.Zero(t, n, "attendance of those sessions is gone")
	require.NoError(t, db.Model(&models.UserGroup{}).Where("group_id = ?", chess.ID).Count(&n).Error)
	assert.Zero(t, n, "memberships are gone")

	require.NoError(t, db.Model(&models.Attendance{}).Where("session_id = ?", sessionIDs[2]).Count(&n).Error)
	assert.EqualValues(t, 1, n, "other groups are untouched")
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.EqualValues(t, 1, n, "users survive")

	_, err = Delete(db, chess.ID)
	require.ErrorIs(t, err, ErrGroupNotFound)
}

func TestListWithUsers(t *testing.T) {
	db := dbtest.New(t)

	chess, err := Create(db, Input{Name: "Chess"})
	require.NoError(t, err)
	_, err = Create(db, Input{Name: "Archery"})
	require.NoError(t, err)

	seedMember(t, db, chess, "Bob", "B")
	seedMember(t, db, chess, "Alice", "A")

	groups, err := ListWithUsers(db)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "Archery", groups[0].Name)
	assert.NotNil(t, groups[0].Users)
	assert.Empty(t, groups[0].Users)

	assert.Equal(t, "Chess", groups[1].Name)
	require.Len(t, groups[1].Users, 2)
	assert.Equal(t, "Alice", groups[1].Users[0].Name)
	assert.Equal(t, "Bob", groups[1].Users[1].Name)

	one, err := GetWithUsers(db, chess.ID)
	require.NoError(t, err)
	assert.Len(t, one.Users, 2)

	_, err = GetWithUsers(db, 999)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

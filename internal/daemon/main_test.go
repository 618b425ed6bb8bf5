package daemon

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall-rfid/rollcall/internal/clock"
	"github.com/rollcall-rfid/rollcall/internal/config"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/admin"
	"github.com/rollcall-rfid/rollcall/internal/db/dbtest"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		DevMode: true,
		Title:   "rollcall test",
		DB:      config.DB{GormEngine: config.EngineSQLite},
		Webserver: config.Webserver{
			Port:          8080,
			URL:           "http://localhost:8080",
			CheckAliveURI: "/checkalive",
		},
		Seed: config.Seed{AdminUsername: "admin", AdminRFID: "ADMIN-0001"},
	}
}

func TestNewNilConfig(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrConfigNil)

	_, err = NewWithDB(nil, nil, nil)
	require.ErrorIs(t, err, ErrConfigNil)
}

func TestNewWithDBSeedsAdminOnce(t *testing.T) {
	gdb := dbtest.New(t)
	cfg := testConfig()

	d, err := NewWithDB(cfg, gdb, clock.Fake(epoch))
	require.NoError(t, err)
	require.NotNil(t, d.Web())

	admins, err := admin.List(gdb)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin", admins[0].Username)
	assert.Equal(t, "ADMIN-0001", admins[0].RFID)

	_, err = NewWithDB(cfg, gdb, clock.Fake(epoch))
	require.NoError(t, err)

	count, err := admin.Count(gdb)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSeedSkippedWithoutConfig(t *testing.T) {
	gdb := dbtest.New(t)
	cfg := testConfig()
	cfg.Seed = config.Seed{}

	_, err := NewWithDB(cfg, gdb, clock.Fake(epoch))
	require.NoError(t, err)

	count, err := admin.Count(gdb)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSeedSkippedWhenAdminsExist(t *testing.T) {
	gdb := dbtest.New(t)

	_, err := admin.Create(gdb, admin.Input{Username: "root", RFID: "ROOT-1"})
	require.NoError(t, err)

	_, err = NewWithDB(testConfig(), gdb, clock.Fake(epoch))
	require.NoError(t, err)

	admins, err := admin.List(gdb)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "root", admins[0].Username)
}

func TestDaemonServesCheckAlive(t *testing.T) {
	d, err := NewWithDB(testConfig(), dbtest.New(t), clock.Fake(epoch))
	require.NoError(t, err)

	resp, err := d.Web().App.Test(httptest.NewRequest(fiber.MethodGet, "/checkalive", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

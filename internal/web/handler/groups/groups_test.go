package groups

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall-rfid/rollcall/internal/db/controller/admin"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/attendance"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/group"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/session"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/user"
	"github.com/rollcall-rfid/rollcall/internal/db/models"
	"github.com/rollcall-rfid/rollcall/internal/web/handler/handlertest"
)

func groupPath(id uint) string {
	return Path + "/" + strconv.FormatUint(uint64(id), 10)
}

func mustField(t *testing.T, r handlertest.Response, name string) string {
	t.Helper()

	fields := handlertest.Decode[map[string]json.RawMessage](t, r)
	require.Contains(t, fields, name)

	return string(fields[name])
}

func seedUsers(t *testing.T, env *handlertest.Env, names ...string) []*models.User {
	t.Helper()

	out := make([]*models.User, 0, len(names))

	for _, n := range names {
		u, err := user.Create(env.DB, user.Input{Name: n, RFID: "TAG-" + n})
		require.NoError(t, err)

		out = append(out, u)
	}

	return out
}

func TestCreateListGet(t *testing.T) {
	env := handlertest.New(t, &Service{})

	resp := env.Do(t, fiber.MethodPost, Path, map[string]string{"name": "Chess club"})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))

	created := handlertest.Decode[group.WithUsers](t, resp)
	assert.Equal(t, "Chess club", created.Name)
	assert.Empty(t, created.Description)
	assert.NotNil(t, created.Users)
	assert.JSONEq(t, `[]`, mustField(t, resp, "users"))

	e := handlertest.Error(t, env.Do(t, fiber.MethodPost, Path, map[string]string{"name": "  "}), fiber.StatusBadRequest)
	assert.Equal(t, "validation", e.Kind)

	users := seedUsers(t, env, "Bob", "Alice")
	for _, u := range users {
		require.Equal(t, fiber.StatusCreated, env.Do(t, fiber.MethodPost, groupPath(created.ID)+"/members", map[string]uint{"userId": u.ID}).Status)
	}

	list := handlertest.Decode[[]group.WithUsers](t, env.Do(t, fiber.MethodGet, Path, nil))
	require.Len(t, list, 1)
	require.Len(t, list[0].Users, 2)
	assert.Equal(t, "Alice", list[0].Users[0].Name)

	got := handlertest.Decode[group.WithUsers](t, env.Do(t, fiber.MethodGet, groupPath(created.ID), nil))
	assert.Len(t, got.Users, 2)

	handlertest.Error(t, env.Do(t, fiber.MethodGet, groupPath(99), nil), fiber.StatusNotFound)
}

func TestMembers(t *testing.T) {
	env := handlertest.New(t, &Service{})

	g, err := group.Create(env.DB, group.Input{Name: "Chess"})
	require.NoError(t, err)

	users := seedUsers(t, env, "Alice")
	members := groupPath(g.ID) + "/members"

	resp := env.Do(t, fiber.MethodPost, members, map[string]uint{"userId": users[0].ID})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	assert.Len(t, handlertest.Decode[[]models.User](t, resp), 1)

	e := handlertest.Error(t, env.Do(t, fiber.MethodPost, members, map[string]uint{"userId": users[0].ID}), fiber.StatusConflict)
	assert.Equal(t, "conflict", e.Kind)

	handlertest.Error(t, env.Do(t, fiber.MethodPost, members, map[string]uint{"userId": 99}), fiber.StatusNotFound)
	handlertest.Error(t, env.Do(t, fiber.MethodPost, groupPath(99)+"/members", map[string]uint{"userId": users[0].ID}), fiber.StatusNotFound)

	resp = env.Do(t, fiber.MethodDelete, members+"/1", nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.JSONEq(t, `[]`, string(resp.Body))

	handlertest.Error(t, env.Do(t, fiber.MethodDelete, members+"/1", nil), fiber.StatusNotFound)
}

func TestDeleteCascades(t *testing.T) {
	env := handlertest.New(t, &Service{})

	g, err := group.Create(env.DB, group.Input{Name: "Chess"})
	require.NoError(t, err)

	a, err := admin.Create(env.DB, admin.Input{Username: "root", RFID: "ADMIN"})
	require.NoError(t, err)

	users := seedUsers(t, env, "Alice")
	require.Equal(t, fiber.StatusCreated, env.Do(t, fiber.MethodPost, groupPath(g.ID)+"/members", map[string]uint{"userId": users[0].ID}).Status)

	s, err := session.Create(env.DB, g.ID, a.ID, env.Clock.Now())
	require.NoError(t, err)

	_, err = attendance.Mark(env.DB, users[0].ID, s.ID, env.Clock.Now())
	require.NoError(t, err)

	resp := env.Do(t, fiber.MethodDelete, groupPath(g.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))

	_, err = session.Get(env.DB, s.ID)
	require.ErrorIs(t, err, session.ErrSessionNotFound)

	rows, err := attendance.History(env.DB, attendance.Filter{UserID: &users[0].ID})
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = user.Get(env.DB, users[0].ID)
	require.NoError(t, err)

	handlertest.Error(t, env.Do(t, fiber.MethodDelete, groupPath(g.ID), nil), fiber.StatusNotFound)
}

func TestToggleAndSplit(t *testing.T) {
	env := handlertest.New(t, &Service{})

	g, err := group.Create(env.DB, group.Input{Name: "Chess"})
	require.NoError(t, err)

	a, err := admin.Create(env.DB, admin.Input{Username: "root", RFID: "ADMIN"})
	require.NoError(t, err)

	toggle := groupPath(g.ID) + "/sessions/toggle"

	resp := env.Do(t, fiber.MethodPost, toggle, map[string]uint{"adminId": a.ID})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))

	started := handlertest.Decode[models.Session](t, resp)
	assert.Nil(t, started.EndTime)

	env.Clock.Advance(time.Hour)

	resp = env.Do(t, fiber.MethodPost, toggle, map[string]uint{"adminId": a.ID})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))

	ended := handlertest.Decode[models.Session](t, resp)
	assert.Equal(t, started.ID, ended.ID)
	require.NotNil(t, ended.EndTime)
	assert.True(t, ended.EndTime.Equal(handlertest.Epoch.Add(time.Hour)))

	require.Equal(t, fiber.StatusCreated, env.Do(t, fiber.MethodPost, toggle, map[string]uint{"adminId": a.ID}).Status)

	split := handlertest.Decode[session.Split](t, env.Do(t, fiber.MethodGet, groupPath(g.ID)+"/sessions", nil))
	require.Len(t, split.Active, 1)
	require.Len(t, split.Past, 1)
	assert.Equal(t, started.ID, split.Past[0].ID)

	other, err := group.Create(env.DB, group.Input{Name: "Go"})
	require.NoError(t, err)

	handlertest.Error(t, env.Do(t, fiber.MethodPost, groupPath(other.ID)+"/sessions/toggle", map[string]uint{"adminId": 99}), fiber.StatusNotFound)
	handlertest.Error(t, env.Do(t, fiber.MethodGet, groupPath(99)+"/sessions", nil), fiber.StatusNotFound)
}

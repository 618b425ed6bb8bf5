package readers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall-rfid/rollcall/internal/db/controller/admin"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/binding"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/group"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/session"
	"github.com/rollcall-rfid/rollcall/internal/web/handler/handlertest"
)

func TestBindGetUnbind(t *testing.T) {
	env := handlertest.New(t, &Service{})

	g, err := group.Create(env.DB, group.Input{Name: "Chess"})
	require.NoError(t, err)

	resp := env.Do(t, fiber.MethodPut, Path+"/door/binding", map[string]uint{"groupId": g.ID})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))

	b := handlertest.Decode[binding.Binding](t, resp)
	assert.Equal(t, "door", b.ReaderID)
	require.NotNil(t, b.GroupID)
	assert.Equal(t, g.ID, *b.GroupID)
	assert.Nil(t, b.SessionID)

	got := handlertest.Decode[binding.Binding](t, env.Do(t, fiber.MethodGet, Path+"/door/binding", nil))
	assert.Equal(t, b, got)

	list := handlertest.Decode[[]binding.Binding](t, env.Do(t, fiber.MethodGet, Path, nil))
	require.Len(t, list, 1)

	require.Equal(t, fiber.StatusNoContent, env.Do(t, fiber.MethodDelete, Path+"/door/binding", nil).Status)

	handlertest.Error(t, env.Do(t, fiber.MethodGet, Path+"/door/binding", nil), fiber.StatusNotFound)
	handlertest.Error(t, env.Do(t, fiber.MethodDelete, Path+"/door/binding", nil), fiber.StatusNotFound)
}

func TestBindErrors(t *testing.T) {
	env := handlertest.New(t, &Service{})

	g, err := group.Create(env.DB, group.Input{Name: "Chess"})
	require.NoError(t, err)

	a, err := admin.Create(env.DB, admin.Input{Username: "root", RFID: "ADMIN"})
	require.NoError(t, err)

	s, err := session.Create(env.DB, g.ID, a.ID, env.Clock.Now())
	require.NoError(t, err)

	_, err = session.End(env.DB, s.ID, env.Clock.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"no target", map[string]uint{}, fiber.StatusBadRequest},
		{"both targets", map[string]uint{"groupId": g.ID, "sessionId": s.ID}, fiber.StatusBadRequest},
		{"unknown group", map[string]uint{"groupId": 99}, fiber.StatusNotFound},
		{"unknown session", map[string]uint{"sessionId": 99}, fiber.StatusNotFound},
		{"ended session", map[string]uint{"sessionId": s.ID}, fiber.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlertest.Error(t, env.Do(t, fiber.MethodPut, Path+"/door/binding", tt.body), tt.status)
		})
	}

	resp := env.Do(t, fiber.MethodGet, Path, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.JSONEq(t, `[]`, string(resp.Body))
}

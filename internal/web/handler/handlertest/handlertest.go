// Package handlertest builds fiber apps around handler services for tests.
package handlertest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/clock"
	"github.com/rollcall-rfid/rollcall/internal/config"
	"github.com/rollcall-rfid/rollcall/internal/db/dbtest"
	"github.com/rollcall-rfid/rollcall/internal/web/handler"
)

// Epoch is the initial time of the fake clock.
var Epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

// Env is an app wired to an in-memory database and a fake clock.
type Env struct {
	App   *fiber.App
	DB    *gorm.DB
	Clock *clock.FakeClock
}

// Response is a recorded response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// New initializes services on a fresh app.
func New(t *testing.T, services ...handler.Service) *Env {
	t.Helper()

	env := &Env{
		App:   fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler}),
		DB:    dbtest.New(t),
		Clock: clock.Fake(Epoch),
	}

	cfg := &config.Config{}
	for _, s := range services {
		s.Init(env.App, cfg, env.DB, env.Clock)
	}

	return env
}

// Do sends a request with body encoded as JSON when it is not nil.
func (e *Env) Do(t *testing.T, method, path string, body any) Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		raw, ok := body.(string)
		if !ok {
			data, err := json.Marshal(body)
			require.NoError(t, err)

			raw = string(data)
		}

		reader = bytes.NewBufferString(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return Response{Status: resp.StatusCode, Header: resp.Header, Body: data}
}

// Decode unmarshals the response body into a T.
func Decode[T any](t *testing.T, r Response) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(r.Body, &out), string(r.Body))

	return out
}

// Error decodes an error response and checks its status.
func Error(t *testing.T, r Response, status int) handler.ErrorResponse {
	t.Helper()

	require.Equal(t, status, r.Status, string(r.Body))

	return Decode[handler.ErrorResponse](t, r)
}

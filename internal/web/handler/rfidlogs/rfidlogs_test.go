package rfidlogs

import (
	"fmt"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall-rfid/rollcall/internal/db/controller/rfidlog"
	"github.com/rollcall-rfid/rollcall/internal/db/models"
	"github.com/rollcall-rfid/rollcall/internal/web/handler/handlertest"
)

func TestListNewestFirst(t *testing.T) {
	env := handlertest.New(t, &Service{})

	for i := range 5 {
		_, err := rfidlog.Append(env.DB, rfidlog.Event{
			RFID:       fmt.Sprintf("TAG-%d", i),
			ObservedAt: env.Clock.Advance(time.Second),
		})
		require.NoError(t, err)
	}

	rows := handlertest.Decode[[]models.RFIDLog](t, env.Do(t, fiber.MethodGet, Path, nil))
	require.Len(t, rows, 5)
	assert.Equal(t, "TAG-4", rows[0].RFID)
	assert.Equal(t, "TAG-0", rows[4].RFID)

	rows = handlertest.Decode[[]models.RFIDLog](t, env.Do(t, fiber.MethodGet, Path+"?limit=2", nil))
	require.Len(t, rows, 2)
	assert.Equal(t, "TAG-3", rows[1].RFID)
}

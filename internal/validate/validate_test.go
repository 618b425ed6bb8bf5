package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall-rfid/rollcall/internal/errs"
)

type input struct {
	Name string `json:"name" validate:"required,max=5"`
	RFID string `json:"rfid" validate:"required"`
	Note string `validate:"max=2"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(input{Name: "bob", RFID: "T1"}))

	err := Struct(input{Name: "toolong", Note: "abc"})
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, err.Error(), "name must be at most 5 characters")
	assert.Contains(t, err.Error(), "rfid is required")
	assert.Contains(t, err.Error(), "Note must be at most 2 characters")
}

// Package binding stores which group or session a reader's scans are credited to.
// Bindings live in the settings table as JSON under "reader:<readerId>".
package binding

import (
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	"github.com/rollcall-rfid/rollcall/internal/db/controller/group"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/session"
	"github.com/rollcall-rfid/rollcall/internal/db/controller/setting"
	"github.com/rollcall-rfid/rollcall/internal/errs"
	"github.com/rollcall-rfid/rollcall/internal/validate"
)

// SettingKeyPrefix prefixes the setting name of every reader binding.
const SettingKeyPrefix = "reader:"

var (
	// ErrBindingNotFound is returned when the reader has no binding.
	ErrBindingNotFound = errs.New(errs.ErrNotFound, "reader is not bound")
	// ErrTarget is returned unless exactly one of groupId and sessionId is given.
	ErrTarget = errs.New(errs.ErrValidation, "exactly one of groupId and sessionId must be set")
)

// Target is where scans of a reader go. A group target follows the group's
// current active session; a session target is fixed.
type Target struct {
	GroupID   *uint `json:"groupId,omitempty"`
	SessionID *uint `json:"sessionId,omitempty"`
}

// Binding is a reader together with its target.
type Binding struct {
	ReaderID string `json:"readerId" validate:"required,max=100"`
	Target
}

// Bind points readerID at target, replacing any previous binding. The target
// group or session must exist; a session target must still be active.
func Bind(db *gorm.DB, readerID string, target Target) (*Binding, error) {
	b := Binding{ReaderID: strings.TrimSpace(readerID), Target: target}

	if err := validate.Struct(b); err != nil {
		return nil, err
	}

	if (target.GroupID == nil) == (target.SessionID == nil) {
		return nil, ErrTarget
	}

	if err := checkTarget(db, target); err != nil {
		return nil, err
	}

	data, err := json.Marshal(b.Target)
	if err != nil {
		return nil, err
	}

	if _, err = setting.Set(db, SettingKeyPrefix+b.ReaderID, data); err != nil {
		return nil, err
	}

	return &b, nil
}

// Get loads the binding of readerID.
func Get(db *gorm.DB, readerID string) (*Binding, error) {
	s, err := setting.Get(db, SettingKeyPrefix+strings.TrimSpace(readerID))
	if err != nil {
		if errs.Kind(err) == errs.ErrNotFound {
			return nil, ErrBindingNotFound
		}

		return nil, err
	}

	b := Binding{ReaderID: strings.TrimPrefix(s.Name, SettingKeyPrefix)}
	if err = json.Unmarshal(s.Value, &b.Target); err != nil {
		return nil, err
	}

	return &b, nil
}

// Unbind removes the binding of readerID.
func Unbind(db *gorm.DB, readerID string) error {
	err := setting.DeleteByName(db, SettingKeyPrefix+strings.TrimSpace(readerID))
	if errs.Kind(err) == errs.ErrNotFound {
		return ErrBindingNotFound
	}

	return err
}

// List returns all bindings ordered by reader id.
func List(db *gorm.DB) ([]Binding, error) {
	settings, err := setting.List(db, SettingKeyPrefix)
	if err != nil {
		return nil, err
	}

	out := make([]Binding, 0, len(settings))

	for _, s := range settings {
		b := Binding{ReaderID: strings.TrimPrefix(s.Name, SettingKeyPrefix)}
		if err = json.Unmarshal(s.Value, &b.Target); err != nil {
			return nil, err
		}

		out = append(out, b)
	}

	return out, nil
}

func checkTarget(db *gorm.DB, target Target) error {
	if target.SessionID != nil {
		_, err := session.GetActive(db, *target.SessionID)

		return err
	}

	ok, err := group.Exists(db, *target.GroupID)
	if err != nil {
		return err
	}

	if !ok {
		return group.ErrGroupNotFound
	}

	return nil
}

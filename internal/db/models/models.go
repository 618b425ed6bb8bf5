// Package models contains database model definitions.
package models

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Admin{},
		&Group{},
		&UserGroup{},
		&Session{},
		&Attendance{},
		&RFIDLog{},
		&Setting{},
	}
}

package models

// Setting is a named JSON blob, used for state that lives outside the entity
// tables such as reader bindings.
type Setting struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"size:191;uniqueIndex"`
	Value []byte
}

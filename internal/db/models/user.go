package models

import "time"

// User represents a person carrying an RFID tag.
// The tag is the only identity a reader ever reports, so it is unique across users.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the display name of the user.
	Name string `gorm:"size:100;not null" json:"name"`
	// RFID is the tag currently assigned to the user. Tags may be reassigned over time;
	// the scan log keeps the raw string, never a resolved user.
	RFID string `gorm:"column:rfid;size:64;not null;uniqueIndex" json:"rfid"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

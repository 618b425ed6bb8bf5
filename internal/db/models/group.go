package models

import "time"

// Group represents a roster of users that sessions are held for.
type Group struct {
	// ID is the unique identifier for the group.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the display name of the group. Never empty.
	Name string `gorm:"size:100;not null" json:"name"`
	// Description is optional free text; stored as "" when absent.
	Description string `gorm:"size:255" json:"description"`
	// CreatedAt is the timestamp when the group was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the group was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Group model.
func (Group) TableName() string {
	return "groups"
}

package models

import "time"

// Admin is an operator allowed to run sessions.
// Scanning an admin tag at a reader bound to a group starts or ends that group's session.
type Admin struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:100;not null;uniqueIndex" json:"username"`
	RFID     string `gorm:"column:rfid;size:64;not null;uniqueIndex" json:"rfid"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Admin model.
func (Admin) TableName() string {
	return "admins"
}

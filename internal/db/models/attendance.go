package models

import "time"

// Attendance records that a user was present at a session.
// There is at most one row per (user, session); unmarking deletes the row.
type Attendance struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_attendance_user_session" json:"userId"`
	SessionID uint `gorm:"not null;uniqueIndex:idx_attendance_user_session;index" json:"sessionId"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Session *Session `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"session,omitempty"`

	// CreatedAt is the mark time. It orders arrivals within a session.
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Attendance model.
func (Attendance) TableName() string {
	return "attendance"
}

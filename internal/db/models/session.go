package models

import "time"

// SessionState is the lifecycle state of a session.
type SessionState string

const (
	// SessionActive is the state of a session whose EndTime is not set.
	SessionActive SessionState = "active"
	// SessionEnded is the terminal state of a session whose EndTime is set.
	SessionEnded SessionState = "ended"
)

// Session is a time-bounded meeting of a group.
// A session is created active and ends exactly once; it is never reactivated.
type Session struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// GroupID is the owning group. Immutable after creation.
	GroupID uint `gorm:"not null;index" json:"groupId"`
	// CreatedBy is the ID of the admin that started the session.
	CreatedBy uint `gorm:"not null;index" json:"createdBy"`
	// StartTime is set on creation and never changes.
	StartTime time.Time `gorm:"not null" json:"startTime"`
	// EndTime is nil while the session is active.
	EndTime *time.Time `gorm:"index" json:"endTime"`

	Group          *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"group,omitempty"`
	CreatedByAdmin *Admin `gorm:"foreignKey:CreatedBy;constraint:OnDelete:RESTRICT" json:"createdByAdmin,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Session model.
func (Session) TableName() string {
	return "sessions"
}

// Active reports whether the session has not been ended yet.
func (s *Session) Active() bool {
	return s.EndTime == nil
}

// State returns the lifecycle state derived from EndTime.
func (s *Session) State() SessionState {
	if s.Active() {
		return SessionActive
	}

	return SessionEnded
}

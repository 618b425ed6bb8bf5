package models

import "time"

// UserGroup represents the many-to-many membership between users and groups.
// The composite primary key guarantees a user belongs to a group at most once.
type UserGroup struct {
	// UserID is the ID of the user in this membership.
	UserID uint `gorm:"primaryKey;column:user_id" json:"userId"`
	// GroupID is the ID of the group in this membership.
	GroupID uint `gorm:"primaryKey;column:group_id;index" json:"groupId"`
	// User is the associated user. Memberships vanish with the user (CASCADE).
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	// Group is the associated group. Memberships vanish with the group (CASCADE).
	Group *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	// CreatedAt is the timestamp when the user was added to the group.
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the database table name for the UserGroup model.
func (UserGroup) TableName() string {
	return "user_groups"
}

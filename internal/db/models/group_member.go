package models

import (
	"time"

	"github.com/google/uuid"
)

// GroupMember represents one user's membership of one group.
// At most one row exists per (group, user) pair. The row is created when a
// user is added to a group (the creator is inserted at group creation time)
// and removed when the user leaves or the group is deleted (CASCADE).
type GroupMember struct {
	// GroupID is the ID of the group in this membership.
	GroupID uuid.UUID `gorm:"type:uuid;primaryKey;column:group_id"`
	// UserID is the ID of the user in this membership.
	UserID uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id"`
	// Group is the associated group (loaded via foreign key).
	// When a group is deleted, all its memberships are automatically removed (CASCADE).
	Group Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	// User is the associated user (loaded via foreign key).
	// When a user is deleted, all their memberships are automatically removed (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// JoinedAt is the timestamp when the user joined the group.
	JoinedAt time.Time `gorm:"column:joined_at;autoCreateTime"`
}

// TableName specifies the database table name for the GroupMember model.
func (GroupMember) TableName() string {
	return "group_members"
}

// GroupMemberRole carries the mutable admin flag for one membership.
// It is a separate row from the membership itself so that role changes never
// touch the membership record. The creator's role row starts with
// IsAdmin=true but may be demoted later; creator status is independent.
type GroupMemberRole struct {
	// GroupID is the ID of the group this role applies to.
	GroupID uuid.UUID `gorm:"type:uuid;primaryKey;column:group_id"`
	// UserID is the ID of the user this role applies to.
	UserID uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id"`
	// IsAdmin indicates whether the member administers the group.
	IsAdmin bool `gorm:"column:is_admin;not null;default:false"`
	// Group is the associated group (loaded via foreign key).
	Group Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the role row was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last changed (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the GroupMemberRole model.
func (GroupMemberRole) TableName() string {
	return "group_member_roles"
}

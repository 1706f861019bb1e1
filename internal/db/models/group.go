package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group represents a collaboration group: the aggregate that owns shared
// calendars, albums, lists and text channels.
// The user who created the group is its creator for the lifetime of the
// group; creator status is derived from CreatedBy, never stored per member.
type Group struct {
	// ID is the unique identifier for the group.
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// Name is the display name of the group.
	Name string `gorm:"size:100;not null"`
	// Description provides a human-readable explanation of the group's purpose.
	Description string `gorm:"size:255"`
	// CreatedBy is the ID of the user who created the group.
	CreatedBy uuid.UUID `gorm:"type:uuid;column:created_by;not null"`
	// Creator is the associated user (loaded via foreign key).
	Creator User `gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the group was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the group was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Group model.
func (Group) TableName() string {
	return "groups"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (g *Group) BeforeCreate(_ *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}

	return nil
}

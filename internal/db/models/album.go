package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Album represents a media album shared within a group.
// Albums are owned by their creator; group admins may also manage them.
type Album struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// GroupID is the parent scope of the album.
	GroupID     uuid.UUID `gorm:"type:uuid;column:group_id;not null;index"`
	Name        string    `gorm:"size:100;not null"`
	Description string    `gorm:"size:255"`
	// CreatedBy is the album owner.
	CreatedBy uuid.UUID `gorm:"type:uuid;column:created_by;not null"`
	Group     Group     `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Album model.
func (Album) TableName() string {
	return "media_albums"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (a *Album) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	return nil
}

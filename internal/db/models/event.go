package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event represents a calendar event within a group.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// GroupID is the parent scope of the event.
	GroupID uuid.UUID `gorm:"type:uuid;column:group_id;not null;index"`
	// CreatedBy is the event owner.
	CreatedBy   uuid.UUID `gorm:"type:uuid;column:created_by;not null"`
	Title       string    `gorm:"size:200;not null"`
	Description string    `gorm:"size:2000"`
	StartTime   time.Time `gorm:"column:start_time;not null;index"`
	EndTime     time.Time `gorm:"column:end_time;not null"`
	AllDay      bool      `gorm:"column:all_day;not null;default:false"`
	Location    string    `gorm:"size:255"`
	Group       Group     `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the database table name for the Event model.
func (Event) TableName() string {
	return "events"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (e *Event) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// List represents a shared list (shopping, todo, packing) within a group.
// A list is owned by the member who created it OR the member it was assigned
// to; either may manage the list and its items, as may group admins.
type List struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// GroupID is the parent scope of the list.
	GroupID uuid.UUID `gorm:"type:uuid;column:group_id;not null;index"`
	// CreatedBy is the first owner column of the list.
	CreatedBy uuid.UUID `gorm:"type:uuid;column:created_by;not null"`
	// AssignedTo is the second owner column; nil when the list is unassigned.
	AssignedTo *uuid.UUID `gorm:"type:uuid;column:assigned_to"`
	ListType   string     `gorm:"size:50;column:list_type;not null"`
	Title      string     `gorm:"size:200;not null"`
	DueDate    *time.Time `gorm:"column:due_date"`
	Group      Group      `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the database table name for the List model.
func (List) TableName() string {
	return "lists"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (l *List) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}

	return nil
}

// ListItem represents one entry of a list.
// Items carry no owner column of their own: whoever owns (or administers)
// the parent list may create, edit, complete and delete its items.
type ListItem struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// ListID is the parent scope of the item.
	ListID    uuid.UUID `gorm:"type:uuid;column:list_id;not null;index"`
	Content   string    `gorm:"size:500;not null"`
	Completed bool      `gorm:"not null;default:false"`
	List      List      `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the ListItem model.
func (ListItem) TableName() string {
	return "list_items"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (i *ListItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}

	return nil
}

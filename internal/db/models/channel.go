package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TextChannel represents a chat channel within a group.
// Channels are created by admins; the creating admin is recorded as owner.
type TextChannel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// GroupID is the parent scope of the channel.
	GroupID uuid.UUID `gorm:"type:uuid;column:group_id;not null;index"`
	Name    string    `gorm:"size:100;not null"`
	// CreatedBy is the channel owner.
	CreatedBy uuid.UUID `gorm:"type:uuid;column:created_by;not null"`
	Group     Group     `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the TextChannel model.
func (TextChannel) TableName() string {
	return "text_channels"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (tc *TextChannel) BeforeCreate(_ *gorm.DB) error {
	if tc.ID == uuid.Nil {
		tc.ID = uuid.New()
	}

	return nil
}

// Message represents a chat message in a text channel.
// The sender owns the message. Admins may delete another member's message
// but may not edit it.
type Message struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// ChannelID is the parent scope of the message.
	ChannelID uuid.UUID `gorm:"type:uuid;column:channel_id;not null;index"`
	// SenderID is the message owner.
	SenderID  uuid.UUID   `gorm:"type:uuid;column:sender_id;not null"`
	Content   string      `gorm:"size:4000;not null"`
	Channel   TextChannel `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Message model.
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (m *Message) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	return nil
}

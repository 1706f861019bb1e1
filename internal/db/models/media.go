package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaType distinguishes the kind of uploaded media.
type MediaType string

const (
	// MediaTypeImage is a photo or other still image.
	MediaTypeImage MediaType = "image"
	// MediaTypeVideo is a video clip.
	MediaTypeVideo MediaType = "video"
)

// Media represents one uploaded file inside an album.
// The upload pipeline (resizing, bucket storage) runs upstream; this model
// records the stored object and its uploader.
type Media struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// AlbumID is the parent scope of the media item.
	AlbumID uuid.UUID `gorm:"type:uuid;column:album_id;not null;index"`
	// GroupID is kept denormalized for room naming and group-level queries.
	GroupID uuid.UUID `gorm:"type:uuid;column:group_id;not null;index"`
	// UploadedBy is the media owner.
	UploadedBy uuid.UUID `gorm:"type:uuid;column:uploaded_by;not null"`
	Type       MediaType `gorm:"type:varchar(20);not null"`
	MimeType   string    `gorm:"size:100;not null"`
	URL        string    `gorm:"size:512;not null"`
	// BucketKey is the object key in the storage bucket.
	BucketKey string `gorm:"size:128;not null"`
	SizeBytes int64
	Filename  string `gorm:"size:255"`
	Album     Album  `gorm:"foreignKey:AlbumID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Media model.
func (Media) TableName() string {
	return "media"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (m *Media) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	return nil
}

// MediaComment represents a comment on a media item.
// Comments are owned by their sender; group admins may also remove them.
type MediaComment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// MediaID is the parent scope of the comment.
	MediaID uuid.UUID `gorm:"type:uuid;column:media_id;not null;index"`
	// SenderID is the comment owner.
	SenderID  uuid.UUID `gorm:"type:uuid;column:sender_id;not null"`
	Content   string    `gorm:"size:2000;not null"`
	Media     Media     `gorm:"foreignKey:MediaID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the MediaComment model.
func (MediaComment) TableName() string {
	return "media_comments"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (c *MediaComment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	return nil
}

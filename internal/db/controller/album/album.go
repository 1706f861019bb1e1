// Package album provides storage operations for media albums, their media
// items and media comments. Any member may create albums, upload media and
// comment; mutations of existing rows go through the ownership checker so
// the permission condition and the write are one atomic statement.
package album

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearth-app/hearth/internal/authz"
	"github.com/hearth-app/hearth/internal/db/models"
	"github.com/hearth-app/hearth/internal/uniuri"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// bucketKeyLen is the length of generated storage bucket keys.
const bucketKeyLen = 32

// CreateAlbum creates an album owned by the caller.
func CreateAlbum(ctx context.Context, db *gorm.DB, m authz.Membership, name, description string) (*models.Album, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	a := &models.Album{
		GroupID:     m.GroupID,
		Name:        name,
		Description: description,
		CreatedBy:   m.UserID,
	}

	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}

	return a, nil
}

// Albums lists the albums of the caller's group.
func Albums(ctx context.Context, db *gorm.DB, m authz.Membership) ([]models.Album, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var albums []models.Album

	err := db.WithContext(ctx).
		Where("group_id = ?", m.GroupID).
		Order("created_at").
		Find(&albums).Error
	if err != nil {
		return nil, err
	}

	return albums, nil
}

// GetAlbum retrieves one album of the caller's group. Viewing is
// member-level; only the group scope is pushed into the WHERE clause.
func GetAlbum(ctx context.Context, db *gorm.DB, m authz.Membership, albumID uuid.UUID) (*models.Album, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var a models.Album

	err := db.WithContext(ctx).
		Where("group_id = ? AND id = ?", m.GroupID, albumID).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authz.ErrResourceNotFound
		}

		return nil, err
	}

	return &a, nil
}

// AlbumPatch carries the optional album fields of a partial update.
type AlbumPatch struct {
	Name        *string
	Description *string
}

func (p AlbumPatch) changes() map[string]any {
	changes := make(map[string]any)

	if p.Name != nil {
		changes["name"] = *p.Name
	}

	if p.Description != nil {
		changes["description"] = *p.Description
	}

	return changes
}

// UpdateAlbum applies a partial update through the album ownership checker.
func UpdateAlbum(ctx context.Context, db *gorm.DB, m authz.Membership, albumID uuid.UUID, patch AlbumPatch) (*models.Album, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var a models.Album

	checker := authz.NewChecker(db, authz.SpecAlbum)
	if err := checker.Update(ctx, &a, m.GroupID, albumID, m, patch.changes()); err != nil {
		return nil, err
	}

	return &a, nil
}

// DeleteAlbum removes an album through the ownership checker. Media and
// comments below it are removed via CASCADE.
func DeleteAlbum(ctx context.Context, db *gorm.DB, m authz.Membership, albumID uuid.UUID) (*models.Album, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var a models.Album

	checker := authz.NewChecker(db, authz.SpecAlbum)
	if err := checker.Delete(ctx, &a, m.GroupID, albumID, m); err != nil {
		return nil, err
	}

	return &a, nil
}

// verifyAlbumScope checks that the album exists under the caller's group.
// Sub-resource routes carry the album id; this closes the transitive scope
// between the group and the album.
func verifyAlbumScope(ctx context.Context, db *gorm.DB, m authz.Membership, albumID uuid.UUID) error {
	var n int64

	err := db.WithContext(ctx).
		Model(&models.Album{}).
		Where("group_id = ? AND id = ?", m.GroupID, albumID).
		Count(&n).Error
	if err != nil {
		return err
	}

	if n == 0 {
		return authz.ErrResourceNotFound
	}

	return nil
}

// MediaInput carries the stored-object attributes of a new media item. The
// upload pipeline has already processed and stored the file upstream.
type MediaInput struct {
	Type      models.MediaType
	MimeType  string
	URL       string
	SizeBytes int64
	Filename  string
}

// AddMedia records an uploaded media item in an album. Any member may
// upload; the caller becomes the owner. A fresh bucket key is generated for
// the stored object.
func AddMedia(ctx context.Context, db *gorm.DB, m authz.Membership, albumID uuid.UUID, in MediaInput) (*models.Media, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := verifyAlbumScope(ctx, db, m, albumID); err != nil {
		return nil, err
	}

	media := &models.Media{
		AlbumID:    albumID,
		GroupID:    m.GroupID,
		UploadedBy: m.UserID,
		Type:       in.Type,
		MimeType:   in.MimeType,
		URL:        in.URL,
		BucketKey:  uniuri.NewLen(bucketKeyLen),
		SizeBytes:  in.SizeBytes,
		Filename:   in.Filename,
	}

	if err := db.WithContext(ctx).Create(media).Error; err != nil {
		return nil, err
	}

	return media, nil
}

// MediaList lists the media of one album.
func MediaList(ctx context.Context, db *gorm.DB, m authz.Membership, albumID uuid.UUID) ([]models.Media, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := verifyAlbumScope(ctx, db, m, albumID); err != nil {
		return nil, err
	}

	var media []models.Media

	err := db.WithContext(ctx).
		Where("album_id = ?", albumID).
		Order("created_at").
		Find(&media).Error
	if err != nil {
		return nil, err
	}

	return media, nil
}

// DeleteMedia removes a media item through the ownership checker.
func DeleteMedia(ctx context.Context, db *gorm.DB, m authz.Membership, albumID, mediaID uuid.UUID) (*models.Media, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := verifyAlbumScope(ctx, db, m, albumID); err != nil {
		return nil, err
	}

	var media models.Media

	checker := authz.NewChecker(db, authz.SpecMedia)
	if err := checker.Delete(ctx, &media, albumID, mediaID, m); err != nil {
		return nil, err
	}

	return &media, nil
}

// verifyMediaScope checks that the media item exists under the caller's
// group, using the denormalized group column.
func verifyMediaScope(ctx context.Context, db *gorm.DB, m authz.Membership, mediaID uuid.UUID) error {
	var n int64

	err := db.WithContext(ctx).
		Model(&models.Media{}).
		Where("group_id = ? AND id = ?", m.GroupID, mediaID).
		Count(&n).Error
	if err != nil {
		return err
	}

	if n == 0 {
		return authz.ErrResourceNotFound
	}

	return nil
}

// AddComment posts a comment on a media item. Any member may comment.
func AddComment(ctx context.Context, db *gorm.DB, m authz.Membership, mediaID uuid.UUID, content string) (*models.MediaComment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := verifyMediaScope(ctx, db, m, mediaID); err != nil {
		return nil, err
	}

	c := &models.MediaComment{
		MediaID:  mediaID,
		SenderID: m.UserID,
		Content:  content,
	}

	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}

	return c, nil
}

// Comments lists the comments of one media item.
func Comments(ctx context.Context, db *gorm.DB, m authz.Membership, mediaID uuid.UUID) ([]models.MediaComment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := verifyMediaScope(ctx, db, m, mediaID); err != nil {
		return nil, err
	}

	var comments []models.MediaComment

	err := db.WithContext(ctx).
		Where("media_id = ?", mediaID).
		Order("created_at").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	return comments, nil
}

// DeleteComment removes a comment through the ownership checker.
func DeleteComment(ctx context.Context, db *gorm.DB, m authz.Membership, mediaID, commentID uuid.UUID) (*models.MediaComment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := verifyMediaScope(ctx, db, m, mediaID); err != nil {
		return nil, err
	}

	var c models.MediaComment

	checker := authz.NewChecker(db, authz.SpecComment)
	if err := checker.Delete(ctx, &c, mediaID, commentID, m); err != nil {
		return nil, err
	}

	return &c, nil
}

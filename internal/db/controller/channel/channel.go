// Package channel provides storage operations for text channels and chat
// messages. Creating a channel is an admin action; posting is member-level.
// Message deletion allows the admin override, message editing stays
// sender-only.
package channel

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearth-app/hearth/internal/authz"
	"github.com/hearth-app/hearth/internal/db/models"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// defaultMessageLimit bounds a message page when the caller does not ask
// for a specific size.
const defaultMessageLimit = 50

// CreateChannel creates a text channel. Requires the admin level; the
// creating admin is recorded as owner.
func CreateChannel(ctx context.Context, db *gorm.DB, m authz.Membership, name string) (*models.TextChannel, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := authz.Require(m, authz.LevelAdmin); err != nil {
		return nil, err
	}

	tc := &models.TextChannel{
		GroupID:   m.GroupID,
		Name:      name,
		CreatedBy: m.UserID,
	}

	if err := db.WithContext(ctx).Create(tc).Error; err != nil {
		return nil, err
	}

	return tc, nil
}

// Channels lists the text channels of the caller's group.
func Channels(ctx context.Context, db *gorm.DB, m authz.Membership) ([]models.TextChannel, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var channels []models.TextChannel

	err := db.WithContext(ctx).
		Where("group_id = ?", m.GroupID).
		Order("created_at").
		Find(&channels).Error
	if err != nil {
		return nil, err
	}

	return channels, nil
}

// ChannelPatch carries the optional channel fields of a partial update.
type ChannelPatch struct {
	Name *string
}

func (p ChannelPatch) changes() map[string]any {
	changes := make(map[string]any)

	if p.Name != nil {
		changes["name"] = *p.Name
	}

	return changes
}

// UpdateChannel applies a partial update through the channel ownership
// checker.
func UpdateChannel(ctx context.Context, db *gorm.DB, m authz.Membership, channelID uuid.UUID, patch ChannelPatch) (*models.TextChannel, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var tc models.TextChannel

	checker := authz.NewChecker(db, authz.SpecChannel)
	if err := checker.Update(ctx, &tc, m.GroupID, channelID, m, patch.changes()); err != nil {
		return nil, err
	}

	return &tc, nil
}

// DeleteChannel removes a channel through the ownership checker. Messages
// go with it via CASCADE.
func DeleteChannel(ctx context.Context, db *gorm.DB, m authz.Membership, channelID uuid.UUID) (*models.TextChannel, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var tc models.TextChannel

	checker := authz.NewChecker(db, authz.SpecChannel)
	if err := checker.Delete(ctx, &tc, m.GroupID, channelID, m); err != nil {
		return nil, err
	}

	return &tc, nil
}

// verifyChannelScope checks that the channel exists under the caller's
// group.
func verifyChannelScope(ctx context.Context, db *gorm.DB, m authz.Membership, channelID uuid.UUID) error {
	var n int64

	err := db.WithContext(ctx).
		Model(&models.TextChannel{}).
		Where("group_id = ? AND id = ?", m.GroupID, channelID).
		Count(&n).Error
	if err != nil {
		return err
	}

	if n == 0 {
		return authz.ErrResourceNotFound
	}

	return nil
}

// PostMessage posts a message to a channel of the caller's group. Any
// member may post; the sender owns the message.
func PostMessage(ctx context.Context, db *gorm.DB, m authz.Membership, channelID uuid.UUID, content string) (*models.Message, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := verifyChannelScope(ctx, db, m, channelID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		ChannelID: channelID,
		SenderID:  m.UserID,
		Content:   content,
	}

	if err := db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}

	return msg, nil
}

// Messages returns a page of channel messages, newest first. A zero limit
// selects the default page size; before restricts the page to messages
// created before that instant.
func Messages(ctx context.Context, db *gorm.DB, m authz.Membership, channelID uuid.UUID, limit int, before *time.Time) ([]models.Message, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := verifyChannelScope(ctx, db, m, channelID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultMessageLimit
	}

	query := db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("created_at DESC").
		Limit(limit)

	if before != nil {
		query = query.Where("created_at < ?", *before)
	}

	var messages []models.Message

	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}

	return messages, nil
}

// EditMessage rewrites a message's content. Sender-only: admins may delete
// another member's message but not edit it.
func EditMessage(ctx context.Context, db *gorm.DB, m authz.Membership, channelID, messageID uuid.UUID, content string) (*models.Message, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := verifyChannelScope(ctx, db, m, channelID); err != nil {
		return nil, err
	}

	var msg models.Message

	checker := authz.NewChecker(db, authz.SpecMessageEdit)

	err := checker.Update(ctx, &msg, channelID, messageID, m, map[string]any{
		"content": content,
	})
	if err != nil {
		return nil, err
	}

	return &msg, nil
}

// DeleteMessage removes a message through the ownership checker, with the
// admin override allowed.
func DeleteMessage(ctx context.Context, db *gorm.DB, m authz.Membership, channelID, messageID uuid.UUID) (*models.Message, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := verifyChannelScope(ctx, db, m, channelID); err != nil {
		return nil, err
	}

	var msg models.Message

	checker := authz.NewChecker(db, authz.SpecMessageDelete)
	if err := checker.Delete(ctx, &msg, channelID, messageID, m); err != nil {
		return nil, err
	}

	return &msg, nil
}

// Package list provides storage operations for shared lists and their
// items. Items carry no owner column: whoever owns or administers the
// enclosing list may manage its items, so item creation uses the guarded
// INSERT ... SELECT shape and item mutations carry the parent-held
// ownership condition.
package list

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

// CreateInput carries the fields of a new list.
type CreateInput struct {
	Title      string
	ListType   string
	AssignedTo *uuid.UUID
	DueDate    *time.Time
}

// Create creates a list owned by the caller, optionally assigned to another
// member.
func Create(ctx context.Context, db *gorm.DB, m authz.Membership, in CreateInput) (*models.List, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	l := &models.List{
		GroupID:    m.GroupID,
		CreatedBy:  m.UserID,
		AssignedTo: in.AssignedTo,
		ListType:   in.ListType,
		Title:      in.Title,
		DueDate:    in.DueDate,
	}

	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}

	return l, nil
}

// Lists returns the lists of the caller's group.
func Lists(ctx context.Context, db *gorm.DB, m authz.Membership) ([]models.List, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var lists []models.List

	err := db.WithContext(ctx).
		Where("group_id = ?", m.GroupID).
		Order("created_at").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}

	return lists, nil
}

// Get retrieves one list of the caller's group. Viewing is member-level.
func Get(ctx context.Context, db *gorm.DB, m authz.Membership, listID uuid.UUID) (*models.List, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var l models.List

	err := db.WithContext(ctx).
		Where("group_id = ? AND id = ?", m.GroupID, listID).
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authz.ErrResourceNotFound
		}

		return nil, err
	}

	return &l, nil
}

// Patch carries the optional list fields of a partial update. AssignedTo
// and DueDate distinguish "leave unchanged" (nil pointer) from "clear"
// (pointer to nil value) via the Clear flags.
type Patch struct {
	Title         *string
	ListType      *string
	AssignedTo    *uuid.UUID
	ClearAssignee bool
	DueDate       *time.Time
	ClearDueDate  bool
}

func (p Patch) changes() map[string]any {
	changes := make(map[string]any)

	if p.Title != nil {
		changes["title"] = *p.Title
	}

	if p.ListType != nil {
		changes["list_type"] = *p.ListType
	}

	switch {
	case p.ClearAssignee:
		changes["assigned_to"] = nil
	case p.AssignedTo != nil:
		changes["assigned_to"] = *p.AssignedTo
	}

	switch {
	case p.ClearDueDate:
		changes["due_date"] = nil
	case p.DueDate != nil:
		changes["due_date"] = *p.DueDate
	}

	return changes
}

// Update applies a partial update through the list ownership checker
// (creator or assignee, admin override).
func Update(ctx context.Context, db *gorm.DB, m authz.Membership, listID uuid.UUID, patch Patch) (*models.List, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var l models.List

	checker := authz.NewChecker(db, authz.SpecList)
	if err := checker.Update(ctx, &l, m.GroupID, listID, m, patch.changes()); err != nil {
		return nil, err
	}

	return &l, nil
}

// Delete removes a list through the ownership checker. Items go with it via
// CASCADE.
func Delete(ctx context.Context, db *gorm.DB, m authz.Membership, listID uuid.UUID) (*models.List, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var l models.List

	checker := authz.NewChecker(db, authz.SpecList)
	if err := checker.Delete(ctx, &l, m.GroupID, listID, m); err != nil {
		return nil, err
	}

	return &l, nil
}

// AddItem inserts an item under a list the caller owns, was assigned, or
// administers. The parent-ownership condition is part of the insert itself;
// zero rows inserted means the list is missing or not writable.
func AddItem(ctx context.Context, db *gorm.DB, m authz.Membership, listID uuid.UUID, content string) (*models.ListItem, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var item models.ListItem

	checker := authz.NewChecker(db, authz.SpecListItem)

	err := checker.Create(ctx, &item, listID, m, map[string]any{
		"content":   content,
		"completed": false,
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// Items lists the items of one list. Viewing is member-level; the list must
// exist under the caller's group.
func Items(ctx context.Context, db *gorm.DB, m authz.Membership, listID uuid.UUID) ([]models.ListItem, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if _, err := Get(ctx, db, m, listID); err != nil {
		return nil, err
	}

	var items []models.ListItem

	err := db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("created_at").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

// ItemPatch carries the optional item fields of a partial update.
type ItemPatch struct {
	Content   *string
	Completed *bool
}

func (p ItemPatch) changes() map[string]any {
	changes := make(map[string]any)

	if p.Content != nil {
		changes["content"] = *p.Content
	}

	if p.Completed != nil {
		changes["completed"] = *p.Completed
	}

	return changes
}

// UpdateItem applies a partial update through the item checker; the
// ownership condition reaches through to the enclosing list.
func UpdateItem(ctx context.Context, db *gorm.DB, m authz.Membership, listID, itemID uuid.UUID, patch ItemPatch) (*models.ListItem, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var item models.ListItem

	checker := authz.NewChecker(db, authz.SpecListItem)
	if err := checker.Update(ctx, &item, listID, itemID, m, patch.changes()); err != nil {
		return nil, err
	}

	return &item, nil
}

// DeleteItem removes an item through the item checker.
func DeleteItem(ctx context.Context, db *gorm.DB, m authz.Membership, listID, itemID uuid.UUID) (*models.ListItem, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var item models.ListItem

	checker := authz.NewChecker(db, authz.SpecListItem)
	if err := checker.Delete(ctx, &item, listID, itemID, m); err != nil {
		return nil, err
	}

	return &item, nil
}

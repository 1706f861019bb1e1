// Package group provides storage operations for groups and their members.
// Group creation and member addition span multiple rows (membership plus
// role), so those operations run inside a transaction: a membership without
// a role row must never be observable.
package group

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hearth-app/hearth/internal/authz"
	"github.com/hearth-app/hearth/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrAlreadyMember is returned when adding a user who is already a member.
	ErrAlreadyMember = errors.New("user is already a member of this group")
	// ErrMemberNotFound is returned when the target user has no membership row.
	ErrMemberNotFound = errors.New("member not found in this group")
	// ErrCannotRemoveCreator is returned when attempting to remove the group's
	// creator; the creator can only leave by deleting the group.
	ErrCannotRemoveCreator = errors.New("the group creator cannot be removed")
)

const memberQueryPattern = "group_id = ? AND user_id = ?"

// Create creates a group together with the creator's membership and admin
// role row in one transaction.
func Create(ctx context.Context, db *gorm.DB, creatorID uuid.UUID, name, description string) (*models.Group, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	g := &models.Group{
		Name:        name,
		Description: description,
		CreatedBy:   creatorID,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(g).Error; err != nil {
			return err
		}

		member := &models.GroupMember{GroupID: g.ID, UserID: creatorID}
		if err := tx.Create(member).Error; err != nil {
			return err
		}

		role := &models.GroupMemberRole{GroupID: g.ID, UserID: creatorID, IsAdmin: true}

		return tx.Create(role).Error
	})
	if err != nil {
		return nil, err
	}

	return g, nil
}

// Get retrieves the caller's group. Membership has already been resolved, so
// a missing row can only mean the group was deleted concurrently.
func Get(ctx context.Context, db *gorm.DB, m authz.Membership) (*models.Group, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var g models.Group

	err := db.WithContext(ctx).First(&g, "id = ?", m.GroupID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authz.ErrResourceNotFound
		}

		return nil, err
	}

	return &g, nil
}

// Patch carries the optional group fields of a partial update; a nil field
// is left unchanged.
type Patch struct {
	Name        *string
	Description *string
}

func (p Patch) changes() map[string]any {
	changes := make(map[string]any)

	if p.Name != nil {
		changes["name"] = *p.Name
	}

	if p.Description != nil {
		changes["description"] = *p.Description
	}

	return changes
}

// Update applies a partial update to the group. Requires the admin level.
func Update(ctx context.Context, db *gorm.DB, m authz.Membership, patch Patch) (*models.Group, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := authz.Require(m, authz.LevelAdmin); err != nil {
		return nil, err
	}

	changes := patch.changes()
	if len(changes) == 0 {
		return Get(ctx, db, m)
	}

	var g models.Group

	result := db.WithContext(ctx).
		Model(&g).
		Clauses(clause.Returning{}).
		Where("id = ?", m.GroupID).
		Updates(changes)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, authz.ErrResourceNotFound
	}

	return &g, nil
}

// Delete removes the group. Requires the creator level; memberships, roles
// and all group resources go with it via CASCADE.
func Delete(ctx context.Context, db *gorm.DB, m authz.Membership) error {
	if db == nil {
		return ErrDBNil
	}

	if err := authz.Require(m, authz.LevelCreator); err != nil {
		return err
	}

	result := db.WithContext(ctx).Where("id = ?", m.GroupID).Delete(&models.Group{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return authz.ErrResourceNotFound
	}

	return nil
}

// Members lists all memberships of the caller's group with their resolved
// admin and creator flags.
func Members(ctx context.Context, db *gorm.DB, m authz.Membership) ([]authz.Membership, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var members []authz.Membership

	err := db.WithContext(ctx).
		Table("group_members AS gm").
		Select("gm.group_id, gm.user_id, gm.joined_at, gmr.is_admin, g.created_by = gm.user_id AS is_creator").
		Joins("JOIN group_member_roles gmr ON gmr.group_id = gm.group_id AND gmr.user_id = gm.user_id").
		Joins("JOIN groups g ON g.id = gm.group_id").
		Where("gm.group_id = ?", m.GroupID).
		Order("gm.joined_at").
		Find(&members).Error
	if err != nil {
		return nil, err
	}

	return members, nil
}

// AddMember adds a user to the caller's group, creating the membership row
// and its role row in one transaction. Requires the admin level.
func AddMember(ctx context.Context, db *gorm.DB, m authz.Membership, userID uuid.UUID) (*models.GroupMember, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := authz.Require(m, authz.LevelAdmin); err != nil {
		return nil, err
	}

	member := &models.GroupMember{GroupID: m.GroupID, UserID: userID}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.GroupMember

		result := tx.Where(memberQueryPattern, m.GroupID, userID).First(&existing)
		if result.Error == nil {
			return ErrAlreadyMember
		}

		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		if err := tx.Create(member).Error; err != nil {
			return err
		}

		role := &models.GroupMemberRole{GroupID: m.GroupID, UserID: userID, IsAdmin: false}

		return tx.Create(role).Error
	})
	if err != nil {
		return nil, err
	}

	return member, nil
}

// SetMemberRole sets the admin flag of another member's role row. Requires
// the admin level. Creator status is derived from the group row and is not
// affected by role changes.
func SetMemberRole(ctx context.Context, db *gorm.DB, m authz.Membership, userID uuid.UUID, isAdmin bool) (*models.GroupMemberRole, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := authz.Require(m, authz.LevelAdmin); err != nil {
		return nil, err
	}

	var role models.GroupMemberRole

	result := db.WithContext(ctx).
		Model(&role).
		Clauses(clause.Returning{}).
		Where(memberQueryPattern, m.GroupID, userID).
		Update("is_admin", isAdmin)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrMemberNotFound
	}

	return &role, nil
}

// RemoveMember removes a member and their role row in one transaction.
// Admins may remove any member; a plain member may only remove themselves.
// The creator can never be removed.
func RemoveMember(ctx context.Context, db *gorm.DB, m authz.Membership, userID uuid.UUID) error {
	if db == nil {
		return ErrDBNil
	}

	if userID != m.UserID {
		if err := authz.Require(m, authz.LevelAdmin); err != nil {
			return err
		}
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g models.Group

		if err := tx.First(&g, "id = ?", m.GroupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return authz.ErrResourceNotFound
			}

			return err
		}

		if g.CreatedBy == userID {
			return ErrCannotRemoveCreator
		}

		if err := tx.Where(memberQueryPattern, m.GroupID, userID).
			Delete(&models.GroupMemberRole{}).Error; err != nil {
			return err
		}

		result := tx.Where(memberQueryPattern, m.GroupID, userID).Delete(&models.GroupMember{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrMemberNotFound
		}

		return nil
	})
}

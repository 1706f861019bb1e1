// Package calendar provides storage operations for group calendar events.
package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearth-app/hearth/internal/authz"
	"github.com/hearth-app/hearth/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrInvalidRange is returned when a range query ends before it starts.
	ErrInvalidRange = errors.New("range end must not be before range start")
)

// CreateInput carries the fields of a new event.
type CreateInput struct {
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
	Location    string
}

// Create creates an event owned by the caller.
func Create(ctx context.Context, db *gorm.DB, m authz.Membership, in CreateInput) (*models.Event, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	e := &models.Event{
		GroupID:     m.GroupID,
		CreatedBy:   m.UserID,
		Title:       in.Title,
		Description: in.Description,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		AllDay:      in.AllDay,
		Location:    in.Location,
	}

	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}

	return e, nil
}

// Range returns the group's events overlapping [from, to), ordered by start
// time.
func Range(ctx context.Context, db *gorm.DB, m authz.Membership, from, to time.Time) ([]models.Event, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	var events []models.Event

	err := db.WithContext(ctx).
		Where("group_id = ? AND start_time < ? AND end_time >= ?", m.GroupID, to, from).
		Order("start_time").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}

// Get retrieves one event of the caller's group. Viewing is member-level.
func Get(ctx context.Context, db *gorm.DB, m authz.Membership, eventID uuid.UUID) (*models.Event, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var e models.Event

	err := db.WithContext(ctx).
		Where("group_id = ? AND id = ?", m.GroupID, eventID).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authz.ErrResourceNotFound
		}

		return nil, err
	}

	return &e, nil
}

// Patch carries the optional event fields of a partial update.
type Patch struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
	AllDay      *bool
	Location    *string
}

func (p Patch) changes() map[string]any {
	changes := make(map[string]any)

	if p.Title != nil {
		changes["title"] = *p.Title
	}

	if p.Description != nil {
		changes["description"] = *p.Description
	}

	if p.StartTime != nil {
		changes["start_time"] = *p.StartTime
	}

	if p.EndTime != nil {
		changes["end_time"] = *p.EndTime
	}

	if p.AllDay != nil {
		changes["all_day"] = *p.AllDay
	}

	if p.Location != nil {
		changes["location"] = *p.Location
	}

	return changes
}

// Update applies a partial update through the event ownership checker.
func Update(ctx context.Context, db *gorm.DB, m authz.Membership, eventID uuid.UUID, patch Patch) (*models.Event, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var e models.Event

	checker := authz.NewChecker(db, authz.SpecEvent)
	if err := checker.Update(ctx, &e, m.GroupID, eventID, m, patch.changes()); err != nil {
		return nil, err
	}

	return &e, nil
}

// Delete removes an event through the ownership checker.
func Delete(ctx context.Context, db *gorm.DB, m authz.Membership, eventID uuid.UUID) (*models.Event, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var e models.Event

	checker := authz.NewChecker(db, authz.SpecEvent)
	if err := checker.Delete(ctx, &e, m.GroupID, eventID, m); err != nil {
		return nil, err
	}

	return &e, nil
}

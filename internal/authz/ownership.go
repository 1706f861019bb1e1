package authz

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ParentOwner describes ownership held by the parent row rather than the
// resource row itself: list items carry no owner column of their own, the
// owner columns live on the enclosing list.
type ParentOwner struct {
	// Table is the parent table holding the owner columns.
	Table string
	// ScopeColumn is the parent's own scoping column (e.g. group_id); it is
	// matched against the resolved membership's group so that a parent from
	// an unrelated group can never be written under this route.
	ScopeColumn string
	// OwnerColumns are the parent's owner columns, OR-combined.
	OwnerColumns []string
}

// Spec describes, per resource type, how to evaluate ownership. Specs are
// defined once at startup and are immutable; every table and column name in
// the generated SQL comes from these definitions, never from request input.
type Spec struct {
	// Resource is the human-readable resource name used in errors and logs.
	Resource string
	// Table is the resource's database table.
	Table string
	// ParentColumn is the scoping column on Table (group_id, album_id, ...).
	ParentColumn string
	// OwnerColumns are owner columns on Table itself, OR-combined.
	OwnerColumns []string
	// ParentOwner is set when ownership is held by the parent row instead.
	ParentOwner *ParentOwner
	// AdminOverride allows group admins to bypass the ownership requirement.
	AdminOverride bool
}

// Checker authorizes operations against resource instances of one Spec.
// The ownership condition is folded into the WHERE clause of the mutating
// statement (or the INSERT ... SELECT guard for creates), so the check and
// the write are a single atomic statement: there is no window in which
// ownership or admin status can change between check and act. Racing
// mutations of the same row serialize on the storage engine's row lock.
type Checker struct {
	db   *gorm.DB
	spec Spec
}

// NewChecker creates a checker for one resource type.
func NewChecker(db *gorm.DB, spec Spec) *Checker {
	return &Checker{db: db, spec: spec}
}

// Spec returns the checker's immutable resource spec.
func (c *Checker) Spec() Spec {
	return c.spec
}

// ownerCond builds the OR-combined ownership disjunction. The admin flag is
// bound as a plain boolean parameter so the whole condition stays one
// prepared statement regardless of the caller's role.
func (c *Checker) ownerCond(m Membership) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if po := c.spec.ParentOwner; po != nil {
		inner := make([]string, 0, len(po.OwnerColumns)+1)

		// scope placeholder binds first: it appears in the subquery before
		// the ownership disjunction
		args = append(args, m.GroupID)

		for _, col := range po.OwnerColumns {
			inner = append(inner, fmt.Sprintf("%s.%s = ?", po.Table, col))
			args = append(args, m.UserID)
		}

		if c.spec.AdminOverride {
			inner = append(inner, "?")
			args = append(args, m.IsAdmin)
		}

		cond := fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s WHERE %s.id = %s.%s AND %s.%s = ? AND (%s))",
			po.Table, po.Table, c.spec.Table, c.spec.ParentColumn,
			po.Table, po.ScopeColumn,
			strings.Join(inner, " OR "),
		)

		return cond, args
	}

	for _, col := range c.spec.OwnerColumns {
		conds = append(conds, fmt.Sprintf("%s = ?", col))
		args = append(args, m.UserID)
	}

	if c.spec.AdminOverride {
		conds = append(conds, "?")
		args = append(args, m.IsAdmin)
	}

	return "(" + strings.Join(conds, " OR ") + ")", args
}

// guard builds the full pushed-down condition: parent scope, resource id and
// ownership in one WHERE clause.
func (c *Checker) guard(parentID, resourceID uuid.UUID, m Membership) (string, []any) {
	ownerSQL, ownerArgs := c.ownerCond(m)
	cond := fmt.Sprintf("%s = ? AND id = ? AND %s", c.spec.ParentColumn, ownerSQL)
	args := append([]any{parentID, resourceID}, ownerArgs...)

	return cond, args
}

// disambiguate resolves the ambiguous zero-rows outcome with a lightweight
// existence probe scoped by parent only (ignoring ownership): no row means
// the resource does not exist under the claimed parent, which includes the
// wrong-parent case (deliberately indistinguishable from plain not-found);
// a present row means the caller lacked permission. The probe runs
// only on the failure path, so the success path stays a single statement.
func (c *Checker) disambiguate(ctx context.Context, parentID, resourceID uuid.UUID) error {
	var n int64

	err := c.db.WithContext(ctx).
		Table(c.spec.Table).
		Where(fmt.Sprintf("%s = ? AND id = ?", c.spec.ParentColumn), parentID, resourceID).
		Count(&n).Error
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrResourceNotFound
	}

	return ErrNotOwnerOrAdmin
}

// Load fetches the resource with the ownership condition pushed into the
// SELECT's WHERE clause.
func (c *Checker) Load(ctx context.Context, dest any, parentID, resourceID uuid.UUID, m Membership) error {
	cond, args := c.guard(parentID, resourceID, m)

	err := c.db.WithContext(ctx).Table(c.spec.Table).Where(cond, args...).Take(dest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.disambiguate(ctx, parentID, resourceID)
		}

		return err
	}

	return nil
}

// Update applies the changes to the resource row in a single guarded UPDATE.
// The updated row is written back into dest via RETURNING, so the success
// path needs no second query.
func (c *Checker) Update(
	ctx context.Context,
	dest any,
	parentID, resourceID uuid.UUID,
	m Membership,
	changes map[string]any,
) error {
	if len(changes) == 0 {
		return c.Load(ctx, dest, parentID, resourceID, m)
	}

	cond, args := c.guard(parentID, resourceID, m)

	result := c.db.WithContext(ctx).
		Model(dest).
		Clauses(clause.Returning{}).
		Where(cond, args...).
		Updates(changes)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return c.disambiguate(ctx, parentID, resourceID)
	}

	return nil
}

// Delete removes the resource row in a single guarded DELETE and returns the
// deleted row through dest. Deleting an already-deleted or never-existing
// resource yields ErrResourceNotFound deterministically.
func (c *Checker) Delete(ctx context.Context, dest any, parentID, resourceID uuid.UUID, m Membership) error {
	cond, args := c.guard(parentID, resourceID, m)

	result := c.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where(cond, args...).
		Delete(dest)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return c.disambiguate(ctx, parentID, resourceID)
	}

	return nil
}

// Create inserts a new row whose "owner" is really the parent resource: the
// parent-ownership condition is folded into an INSERT ... SELECT guard, so
// zero rows inserted signals unauthorized-or-missing-parent in one
// statement. Only valid for specs with a ParentOwner.
func (c *Checker) Create(
	ctx context.Context,
	dest any,
	parentID uuid.UUID,
	m Membership,
	values map[string]any,
) error {
	po := c.spec.ParentOwner
	if po == nil {
		return fmt.Errorf("authz: spec %q holds ownership itself; guarded create does not apply", c.spec.Resource)
	}

	cols := make([]string, 0, len(values))
	for col := range values {
		cols = append(cols, col)
	}

	sort.Strings(cols)

	now := time.Now().UTC()
	insertCols := []string{"id", c.spec.ParentColumn, "created_at", "updated_at"}
	selects := []string{"?", po.Table + ".id", "?", "?"}
	args := []any{uuid.New(), now, now}

	for _, col := range cols {
		insertCols = append(insertCols, col)
		selects = append(selects, "?")
		args = append(args, values[col])
	}

	inner := make([]string, 0, len(po.OwnerColumns)+1)

	args = append(args, parentID, m.GroupID)

	for _, col := range po.OwnerColumns {
		inner = append(inner, fmt.Sprintf("%s.%s = ?", po.Table, col))
		args = append(args, m.UserID)
	}

	if c.spec.AdminOverride {
		inner = append(inner, "?")
		args = append(args, m.IsAdmin)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s WHERE %s.id = ? AND %s.%s = ? AND (%s) RETURNING *",
		c.spec.Table,
		strings.Join(insertCols, ", "),
		strings.Join(selects, ", "),
		po.Table,
		po.Table,
		po.Table, po.ScopeColumn,
		strings.Join(inner, " OR "),
	)

	result := c.db.WithContext(ctx).Raw(query, args...).Scan(dest)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return c.parentProbe(ctx, parentID, m)
	}

	return nil
}

// parentProbe is the create-side disambiguation: decide whether the parent
// row is missing under the caller's group or merely not writable.
func (c *Checker) parentProbe(ctx context.Context, parentID uuid.UUID, m Membership) error {
	po := c.spec.ParentOwner

	var n int64

	err := c.db.WithContext(ctx).
		Table(po.Table).
		Where(fmt.Sprintf("id = ? AND %s = ?", po.ScopeColumn), parentID, m.GroupID).
		Count(&n).Error
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrResourceNotFound
	}

	return ErrNotOwnerOrAdmin
}

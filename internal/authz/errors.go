package authz

import "errors"

var (
	// ErrNotMember is returned when the caller has no membership row for the
	// claimed group. A nonexistent group produces the same error, so group
	// existence is never leaked to non-members.
	ErrNotMember = errors.New("not a member of this group")

	// ErrInsufficientRole is returned when a membership exists but the
	// required level (admin or creator) is not met.
	ErrInsufficientRole = errors.New("insufficient role for this action")

	// ErrNotOwnerOrAdmin is returned when a resource-level check fails: the
	// caller is neither a listed owner nor an authorized admin.
	ErrNotOwnerOrAdmin = errors.New("not the owner of this resource")

	// ErrResourceNotFound is returned when a resource id does not exist under
	// the claimed parent scope.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrInvalidParentScope marks the case where a resource exists but under a
	// different parent than claimed. The engine itself always reports this
	// case as ErrResourceNotFound so that a resource's existence in an
	// unrelated group is never confirmed; the sentinel exists so the boundary
	// mapping stays exhaustive.
	ErrInvalidParentScope = errors.New("resource not found under this parent")
)

// Decision is the ephemeral outcome of a single authorization check. It is
// produced and consumed within one request and never persisted.
type Decision struct {
	// Authorized reports whether the operation was allowed.
	Authorized bool
	// Reason carries the taxonomy error when the operation was denied.
	Reason error
}

// Decide converts a checker result into a Decision.
func Decide(err error) Decision {
	if err == nil {
		return Decision{Authorized: true}
	}

	return Decision{Authorized: false, Reason: err}
}

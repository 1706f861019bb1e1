package authz

// Level is a group-scoped permission level.
type Level string

const (
	// LevelMember requires only that a membership row exists.
	LevelMember Level = "member"
	// LevelAdmin requires the membership's admin flag.
	LevelAdmin Level = "admin"
	// LevelCreator requires that the caller created the group.
	LevelCreator Level = "creator"
)

// HasLevel reports whether the membership satisfies the given level.
// The levels are not a hierarchy: admin and creator are independent flags,
// so each caller must request the exact level its operation needs.
func (m Membership) HasLevel(level Level) bool {
	switch level {
	case LevelMember:
		return true
	case LevelAdmin:
		return m.IsAdmin
	case LevelCreator:
		return m.IsCreator
	default:
		return false
	}
}

// Require returns ErrInsufficientRole when the membership does not satisfy
// the given level.
func Require(m Membership, level Level) error {
	if !m.HasLevel(level) {
		return ErrInsufficientRole
	}

	return nil
}

package authz

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Membership is one user's resolved relationship to one group.
// IsAdmin and IsCreator are independent booleans: the admin flag lives in a
// mutable role row while creator status is derived from the group's
// created_by column. A creator whose admin flag was revoked keeps
// IsCreator=true with IsAdmin=false.
type Membership struct {
	GroupID   uuid.UUID `gorm:"column:group_id"`
	UserID    uuid.UUID `gorm:"column:user_id"`
	IsAdmin   bool      `gorm:"column:is_admin"`
	IsCreator bool      `gorm:"column:is_creator"`
	JoinedAt  time.Time `gorm:"column:joined_at"`
}

// Resolver loads a caller's membership state for one group in a single query
// and reuses a per-request cache when the context carries one.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a membership resolver over the given database handle.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

type cacheKey struct {
	userID  uuid.UUID
	groupID uuid.UUID
}

// membershipCache holds memberships resolved during one request. Handlers
// may fan work out to goroutines, so access is serialized.
type membershipCache struct {
	mu      sync.Mutex
	entries map[cacheKey]Membership
}

type cacheCtxKey struct{}

// WithRequestCache returns a context carrying a fresh membership cache.
// Every Resolve call with this context reuses earlier results for the same
// (caller, group) pair instead of re-querying. The cache lives exactly as
// long as the request: a role change committed by a concurrent request is
// observed by the next request, not mid-request.
func WithRequestCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, cacheCtxKey{}, &membershipCache{
		entries: make(map[cacheKey]Membership),
	})
}

func cacheFrom(ctx context.Context) *membershipCache {
	cache, _ := ctx.Value(cacheCtxKey{}).(*membershipCache)
	return cache
}

// Resolve returns the caller's membership of the given group.
// Membership row, role row and creator identity are joined in one round
// trip. ErrNotMember is returned when no membership row exists; a
// nonexistent group is indistinguishable from that case by design.
func (r *Resolver) Resolve(ctx context.Context, userID, groupID uuid.UUID) (Membership, error) {
	key := cacheKey{userID: userID, groupID: groupID}
	cache := cacheFrom(ctx)

	if cache != nil {
		cache.mu.Lock()
		m, ok := cache.entries[key]
		cache.mu.Unlock()

		if ok {
			return m, nil
		}
	}

	var m Membership

	err := r.db.WithContext(ctx).
		Table("group_members AS gm").
		Select("gm.group_id, gm.user_id, gm.joined_at, gmr.is_admin, g.created_by = ? AS is_creator", userID).
		Joins("JOIN group_member_roles gmr ON gmr.group_id = gm.group_id AND gmr.user_id = gm.user_id").
		Joins("JOIN groups g ON g.id = gm.group_id").
		Where("gm.user_id = ? AND gm.group_id = ?", userID, groupID).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Membership{}, ErrNotMember
		}

		return Membership{}, err
	}

	if cache != nil {
		cache.mu.Lock()
		cache.entries[key] = m
		cache.mu.Unlock()
	}

	return m, nil
}

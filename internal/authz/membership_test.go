package authz_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearth-app/hearth/internal/authz"
)

func TestResolve(t *testing.T) {
	f := newFixture(t)

	type testCase struct {
		name          string
		userID        uuid.UUID
		groupID       uuid.UUID
		wantErr       error
		wantAdmin     bool
		wantCreator   bool
		wantHasMember bool
	}

	testCases := []testCase{
		{
			name:          "creator is admin and creator",
			userID:        f.creator.ID,
			groupID:       f.group.ID,
			wantAdmin:     true,
			wantCreator:   true,
			wantHasMember: true,
		},
		{
			name:          "plain member is neither admin nor creator",
			userID:        f.member.ID,
			groupID:       f.group.ID,
			wantHasMember: true,
		},
		{
			name:    "unknown user is not a member",
			userID:  uuid.New(),
			groupID: f.group.ID,
			wantErr: authz.ErrNotMember,
		},
		{
			name:    "nonexistent group reads as not a member",
			userID:  f.member.ID,
			groupID: uuid.New(),
			wantErr: authz.ErrNotMember,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := f.resolver.Resolve(context.Background(), tc.userID, tc.groupID)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.userID, m.UserID)
			assert.Equal(t, tc.groupID, m.GroupID)
			assert.Equal(t, tc.wantAdmin, m.IsAdmin)
			assert.Equal(t, tc.wantCreator, m.IsCreator)
			assert.Equal(t, tc.wantHasMember, m.HasLevel(authz.LevelMember))
			assert.False(t, m.JoinedAt.IsZero())
		})
	}
}

func TestResolveRequestCache(t *testing.T) {
	f := newFixture(t)
	queries := countQueries(t, f.db)

	ctx := authz.WithRequestCache(context.Background())

	first, err := f.resolver.Resolve(ctx, f.member.ID, f.group.ID)
	require.NoError(t, err)

	queriesAfterFirst := atomic.LoadInt64(queries)
	require.NotZero(t, queriesAfterFirst)

	second, err := f.resolver.Resolve(ctx, f.member.ID, f.group.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, queriesAfterFirst, atomic.LoadInt64(queries),
		"second resolve in the same request must not query the database")

	// a different caller in the same request still queries
	_, err = f.resolver.Resolve(ctx, f.creator.ID, f.group.ID)
	require.NoError(t, err)
	assert.Greater(t, atomic.LoadInt64(queries), queriesAfterFirst)
}

func TestResolveWithoutCacheQueriesEveryTime(t *testing.T) {
	f := newFixture(t)
	queries := countQueries(t, f.db)

	ctx := context.Background()

	_, err := f.resolver.Resolve(ctx, f.member.ID, f.group.ID)
	require.NoError(t, err)

	firstCount := atomic.LoadInt64(queries)

	_, err = f.resolver.Resolve(ctx, f.member.ID, f.group.ID)
	require.NoError(t, err)

	assert.Greater(t, atomic.LoadInt64(queries), firstCount)
}

// A demotion committed mid-request is not observed by the request that
// already cached its membership; the next request sees the new role.
func TestDemotionObservedByNextRequest(t *testing.T) {
	f := newFixture(t)

	// member starts as admin for this test
	require.NoError(t, f.db.Table("group_member_roles").
		Where("group_id = ? AND user_id = ?", f.group.ID, f.member.ID).
		Update("is_admin", true).Error)

	requestCtx := authz.WithRequestCache(context.Background())

	cached, err := f.resolver.Resolve(requestCtx, f.member.ID, f.group.ID)
	require.NoError(t, err)
	require.True(t, cached.IsAdmin)

	// concurrent demotion commits while the request is in flight
	require.NoError(t, f.db.Table("group_member_roles").
		Where("group_id = ? AND user_id = ?", f.group.ID, f.member.ID).
		Update("is_admin", false).Error)

	// same request keeps the cached value
	stillCached, err := f.resolver.Resolve(requestCtx, f.member.ID, f.group.ID)
	require.NoError(t, err)
	assert.True(t, stillCached.IsAdmin)

	// a new request observes the demotion
	next, err := f.resolver.Resolve(authz.WithRequestCache(context.Background()), f.member.ID, f.group.ID)
	require.NoError(t, err)
	assert.False(t, next.IsAdmin)
}

func TestHasLevel(t *testing.T) {
	type testCase struct {
		name string
		m    authz.Membership
		want map[authz.Level]bool
	}

	testCases := []testCase{
		{
			name: "plain member",
			m:    authz.Membership{},
			want: map[authz.Level]bool{
				authz.LevelMember:  true,
				authz.LevelAdmin:   false,
				authz.LevelCreator: false,
			},
		},
		{
			name: "admin non creator",
			m:    authz.Membership{IsAdmin: true},
			want: map[authz.Level]bool{
				authz.LevelMember:  true,
				authz.LevelAdmin:   true,
				authz.LevelCreator: false,
			},
		},
		{
			name: "demoted creator keeps creator level only",
			m:    authz.Membership{IsCreator: true},
			want: map[authz.Level]bool{
				authz.LevelMember:  true,
				authz.LevelAdmin:   false,
				authz.LevelCreator: true,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for level, want := range tc.want {
				assert.Equal(t, want, tc.m.HasLevel(level), "level %s", level)
			}

			assert.False(t, tc.m.HasLevel(authz.Level("owner")), "unknown level never passes")
		})
	}
}

func TestRequire(t *testing.T) {
	admin := authz.Membership{IsAdmin: true}

	require.NoError(t, authz.Require(admin, authz.LevelAdmin))
	require.ErrorIs(t, authz.Require(admin, authz.LevelCreator), authz.ErrInsufficientRole)

	decision := authz.Decide(authz.Require(admin, authz.LevelCreator))
	assert.False(t, decision.Authorized)
	assert.ErrorIs(t, decision.Reason, authz.ErrInsufficientRole)

	allowed := authz.Decide(nil)
	assert.True(t, allowed.Authorized)
	assert.NoError(t, allowed.Reason)
}

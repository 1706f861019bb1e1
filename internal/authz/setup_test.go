package authz_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hearth-app/hearth/internal/authz"
	"github.com/hearth-app/hearth/internal/db/models"
)

// newTestDB creates an in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupMemberRole{},
		&models.Album{},
		&models.Media{},
		&models.MediaComment{},
		&models.List{},
		&models.ListItem{},
		&models.Event{},
		&models.TextChannel{},
		&models.Message{},
	))

	return db
}

// countQueries registers a callback counting SELECT round trips, so tests
// can assert that a cached membership resolution does not hit the database.
func countQueries(t *testing.T, db *gorm.DB) *int64 {
	t.Helper()

	var n int64

	err := db.Callback().Query().After("gorm:query").Register("test:count_queries", func(*gorm.DB) {
		atomic.AddInt64(&n, 1)
	})
	require.NoError(t, err)

	return &n
}

// fixture is one group with a creator (admin), a plain member and a second
// plain member.
type fixture struct {
	db       *gorm.DB
	resolver *authz.Resolver
	group    models.Group
	creator  models.User
	member   models.User
	other    models.User
}

func newUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	u := models.User{
		Email:     fmt.Sprintf("%s-%s@example.test", name, uuid.NewString()[:8]),
		FirstName: name,
	}
	require.NoError(t, db.Create(&u).Error)

	return u
}

func addMember(t *testing.T, db *gorm.DB, groupID, userID uuid.UUID, isAdmin bool) {
	t.Helper()

	require.NoError(t, db.Create(&models.GroupMember{GroupID: groupID, UserID: userID}).Error)
	require.NoError(t, db.Create(&models.GroupMemberRole{GroupID: groupID, UserID: userID, IsAdmin: isAdmin}).Error)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)

	f := &fixture{
		db:       db,
		resolver: authz.NewResolver(db),
		creator:  newUser(t, db, "creator"),
		member:   newUser(t, db, "member"),
		other:    newUser(t, db, "other"),
	}

	f.group = models.Group{Name: "testers", CreatedBy: f.creator.ID}
	require.NoError(t, db.Create(&f.group).Error)

	addMember(t, db, f.group.ID, f.creator.ID, true)
	addMember(t, db, f.group.ID, f.member.ID, false)
	addMember(t, db, f.group.ID, f.other.ID, false)

	return f
}

// membership resolves a fresh membership outside any request cache.
func (f *fixture) membership(t *testing.T, userID uuid.UUID) authz.Membership {
	t.Helper()

	m, err := f.resolver.Resolve(context.Background(), userID, f.group.ID)
	require.NoError(t, err)

	return m
}

package album_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hearth-app/hearth/internal/authz"
	"github.com/hearth-app/hearth/internal/db/controller/album"
	groupctl "github.com/hearth-app/hearth/internal/db/controller/group"
	"github.com/hearth-app/hearth/internal/db/models"
)

type fixture struct {
	db     *gorm.DB
	admin  authz.Membership
	member authz.Membership
	other  authz.Membership
}

func newFixture(t *testing.T) *fixture {
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
	))

	ctx := context.Background()

	creator := models.User{Email: "a@example.test"}
	require.NoError(t, db.Create(&creator).Error)

	member := models.User{Email: "b@example.test"}
	require.NoError(t, db.Create(&member).Error)

	other := models.User{Email: "c@example.test"}
	require.NoError(t, db.Create(&other).Error)

	g, err := groupctl.Create(ctx, db, creator.ID, "testers", "")
	require.NoError(t, err)

	resolver := authz.NewResolver(db)

	admin, err := resolver.Resolve(ctx, creator.ID, g.ID)
	require.NoError(t, err)

	_, err = groupctl.AddMember(ctx, db, admin, member.ID)
	require.NoError(t, err)
	_, err = groupctl.AddMember(ctx, db, admin, other.ID)
	require.NoError(t, err)

	memberM, err := resolver.Resolve(ctx, member.ID, g.ID)
	require.NoError(t, err)

	otherM, err := resolver.Resolve(ctx, other.ID, g.ID)
	require.NoError(t, err)

	return &fixture{db: db, admin: admin, member: memberM, other: otherM}
}

func TestAlbumLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := album.CreateAlbum(ctx, f.db, f.member, "summer", "beach trip")
	require.NoError(t, err)
	assert.Equal(t, f.member.UserID, a.CreatedBy)

	albums, err := album.Albums(ctx, f.db, f.member)
	require.NoError(t, err)
	assert.Len(t, albums, 1)

	got, err := album.GetAlbum(ctx, f.db, f.other, a.ID)
	require.NoError(t, err, "viewing is member-level")
	assert.Equal(t, "summer", got.Name)

	_, err = album.GetAlbum(ctx, f.db, f.member, uuid.New())
	require.ErrorIs(t, err, authz.ErrResourceNotFound)

	// the creator and the admin may update, a third member may not
	name := "summer 2026"

	updated, err := album.UpdateAlbum(ctx, f.db, f.member, a.ID, album.AlbumPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	_, err = album.UpdateAlbum(ctx, f.db, f.other, a.ID, album.AlbumPatch{Name: &name})
	require.ErrorIs(t, err, authz.ErrNotOwnerOrAdmin)

	_, err = album.DeleteAlbum(ctx, f.db, f.other, a.ID)
	require.ErrorIs(t, err, authz.ErrNotOwnerOrAdmin)

	_, err = album.DeleteAlbum(ctx, f.db, f.admin, a.ID)
	require.NoError(t, err)

	_, err = album.DeleteAlbum(ctx, f.db, f.admin, a.ID)
	require.ErrorIs(t, err, authz.ErrResourceNotFound)
}

func TestMedia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := album.CreateAlbum(ctx, f.db, f.admin, "summer", "")
	require.NoError(t, err)

	in := album.MediaInput{
		Type:      models.MediaTypeImage,
		MimeType:  "image/jpeg",
		URL:       "https://cdn.example.test/1.jpg",
		SizeBytes: 1024,
		Filename:  "1.jpg",
	}

	// any member may upload into another member's album
	m, err := album.AddMedia(ctx, f.db, f.member, a.ID, in)
	require.NoError(t, err)
	assert.Equal(t, f.member.UserID, m.UploadedBy)
	assert.Equal(t, f.member.GroupID, m.GroupID)
	assert.Len(t, m.BucketKey, 32)

	// an album id from outside the group reads as not found
	_, err = album.AddMedia(ctx, f.db, f.member, uuid.New(), in)
	require.ErrorIs(t, err, authz.ErrResourceNotFound)

	media, err := album.MediaList(ctx, f.db, f.other, a.ID)
	require.NoError(t, err)
	assert.Len(t, media, 1)

	// a non-uploader non-admin may not delete; the admin may
	_, err = album.DeleteMedia(ctx, f.db, f.other, a.ID, m.ID)
	require.ErrorIs(t, err, authz.ErrNotOwnerOrAdmin)

	_, err = album.DeleteMedia(ctx, f.db, f.admin, a.ID, m.ID)
	require.NoError(t, err)

	_, err = album.DeleteMedia(ctx, f.db, f.admin, a.ID, m.ID)
	require.ErrorIs(t, err, authz.ErrResourceNotFound)
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := album.CreateAlbum(ctx, f.db, f.admin, "summer", "")
	require.NoError(t, err)

	m, err := album.AddMedia(ctx, f.db, f.admin, a.ID, album.MediaInput{
		Type:     models.MediaTypeImage,
		MimeType: "image/jpeg",
		URL:      "https://cdn.example.test/1.jpg",
	})
	require.NoError(t, err)

	c, err := album.AddComment(ctx, f.db, f.member, m.ID, "nice shot")
	require.NoError(t, err)
	assert.Equal(t, f.member.UserID, c.SenderID)

	_, err = album.AddComment(ctx, f.db, f.member, uuid.New(), "nice shot")
	require.ErrorIs(t, err, authz.ErrResourceNotFound)

	comments, err := album.Comments(ctx, f.db, f.other, m.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	// the sender and the admin may delete, a third member may not
	_, err = album.DeleteComment(ctx, f.db, f.other, m.ID, c.ID)
	require.ErrorIs(t, err, authz.ErrNotOwnerOrAdmin)

	remaining, err := album.Comments(ctx, f.db, f.member, m.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1, "denied delete leaves the comment in place")

	_, err = album.DeleteComment(ctx, f.db, f.member, m.ID, c.ID)
	require.NoError(t, err)

	_, err = album.DeleteComment(ctx, f.db, f.member, m.ID, c.ID)
	require.ErrorIs(t, err, authz.ErrResourceNotFound)
}

package authz_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hearth-app/hearth/internal/authz"
	"github.com/hearth-app/hearth/internal/db/models"
)

func seedAlbum(t *testing.T, db *gorm.DB, groupID, ownerID uuid.UUID) models.Album {
	t.Helper()

	a := models.Album{GroupID: groupID, Name: "trip", CreatedBy: ownerID}
	require.NoError(t, db.Create(&a).Error)

	return a
}

func seedList(t *testing.T, db *gorm.DB, groupID, creatorID uuid.UUID, assignee *uuid.UUID) models.List {
	t.Helper()

	l := models.List{
		GroupID:    groupID,
		CreatedBy:  creatorID,
		AssignedTo: assignee,
		ListType:   "todo",
		Title:      "chores",
	}
	require.NoError(t, db.Create(&l).Error)

	return l
}

func seedChannelWithMessage(t *testing.T, db *gorm.DB, groupID, channelOwner, sender uuid.UUID) (models.TextChannel, models.Message) {
	t.Helper()

	tc := models.TextChannel{GroupID: groupID, Name: "general", CreatedBy: channelOwner}
	require.NoError(t, db.Create(&tc).Error)

	msg := models.Message{ChannelID: tc.ID, SenderID: sender, Content: "hello"}
	require.NoError(t, db.Create(&msg).Error)

	return tc, msg
}

func TestCheckerOwnerSufficiency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	album := seedAlbum(t, f.db, f.group.ID, f.member.ID)
	member := f.membership(t, f.member.ID)
	require.False(t, member.IsAdmin)

	var updated models.Album

	checker := authz.NewChecker(f.db, authz.SpecAlbum)
	err := checker.Update(ctx, &updated, f.group.ID, album.ID, member, map[string]any{"name": "trip 2024"})
	require.NoError(t, err)
	assert.Equal(t, "trip 2024", updated.Name)
}

func TestCheckerAssigneeIsOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list := seedList(t, f.db, f.group.ID, f.creator.ID, &f.member.ID)
	member := f.membership(t, f.member.ID)

	var updated models.List

	checker := authz.NewChecker(f.db, authz.SpecList)
	err := checker.Update(ctx, &updated, f.group.ID, list.ID, member, map[string]any{"title": "weekend chores"})
	require.NoError(t, err)
	assert.Equal(t, "weekend chores", updated.Title)
}

func TestCheckerAdminOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	album := seedAlbum(t, f.db, f.group.ID, f.member.ID)
	admin := f.membership(t, f.creator.ID)
	require.True(t, admin.IsAdmin)

	var deleted models.Album

	checker := authz.NewChecker(f.db, authz.SpecAlbum)
	require.NoError(t, checker.Delete(ctx, &deleted, f.group.ID, album.ID, admin))
	assert.Equal(t, album.ID, deleted.ID)

	var n int64
	require.NoError(t, f.db.Model(&models.Album{}).Where("id = ?", album.ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCheckerAdminOverrideDisabled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	channel, msg := seedChannelWithMessage(t, f.db, f.group.ID, f.creator.ID, f.member.ID)
	admin := f.membership(t, f.creator.ID)

	var out models.Message

	// editing another member's message is denied even for admins
	edit := authz.NewChecker(f.db, authz.SpecMessageEdit)
	err := edit.Update(ctx, &out, channel.ID, msg.ID, admin, map[string]any{"content": "rewritten"})
	require.ErrorIs(t, err, authz.ErrNotOwnerOrAdmin)

	var current models.Message
	require.NoError(t, f.db.First(&current, "id = ?", msg.ID).Error)
	assert.Equal(t, "hello", current.Content)

	// deleting it is allowed
	del := authz.NewChecker(f.db, authz.SpecMessageDelete)
	require.NoError(t, del.Delete(ctx, &out, channel.ID, msg.ID, admin))
}

func TestCheckerNonOwnerNonAdminDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := f.membership(t, f.other.ID)

	type testCase struct {
		name string
		run  func(t *testing.T) error
	}

	testCases := []testCase{
		{
			name: "album update",
			run: func(t *testing.T) error {
				t.Helper()
				album := seedAlbum(t, f.db, f.group.ID, f.member.ID)
				var out models.Album
				return authz.NewChecker(f.db, authz.SpecAlbum).
					Update(ctx, &out, f.group.ID, album.ID, other, map[string]any{"name": "x"})
			},
		},
		{
			name: "list delete",
			run: func(t *testing.T) error {
				t.Helper()
				list := seedList(t, f.db, f.group.ID, f.member.ID, nil)
				var out models.List
				return authz.NewChecker(f.db, authz.SpecList).
					Delete(ctx, &out, f.group.ID, list.ID, other)
			},
		},
		{
			name: "message delete",
			run: func(t *testing.T) error {
				t.Helper()
				channel, msg := seedChannelWithMessage(t, f.db, f.group.ID, f.creator.ID, f.member.ID)
				var out models.Message
				return authz.NewChecker(f.db, authz.SpecMessageDelete).
					Delete(ctx, &out, channel.ID, msg.ID, other)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.run(t), authz.ErrNotOwnerOrAdmin)
		})
	}
}

func TestCheckerScopeIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// a second, unrelated group with its own album
	outsider := newUser(t, f.db, "outsider")
	otherGroup := models.Group{Name: "others", CreatedBy: outsider.ID}
	require.NoError(t, f.db.Create(&otherGroup).Error)
	addMember(t, f.db, otherGroup.ID, outsider.ID, true)

	foreignAlbum := seedAlbum(t, f.db, otherGroup.ID, outsider.ID)

	admin := f.membership(t, f.creator.ID)
	checker := authz.NewChecker(f.db, authz.SpecAlbum)

	var out models.Album

	// the album exists, but under a different group: presented exactly like
	// a nonexistent id, never as a permission failure
	err := checker.Update(ctx, &out, f.group.ID, foreignAlbum.ID, admin, map[string]any{"name": "x"})
	require.ErrorIs(t, err, authz.ErrResourceNotFound)

	err = checker.Update(ctx, &out, f.group.ID, uuid.New(), admin, map[string]any{"name": "x"})
	require.ErrorIs(t, err, authz.ErrResourceNotFound)
}

func TestCheckerIdempotentDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	album := seedAlbum(t, f.db, f.group.ID, f.member.ID)
	member := f.membership(t, f.member.ID)
	checker := authz.NewChecker(f.db, authz.SpecAlbum)

	var out models.Album

	require.NoError(t, checker.Delete(ctx, &out, f.group.ID, album.ID, member))

	// second delete of the same id
	err := checker.Delete(ctx, &out, f.group.ID, album.ID, member)
	require.ErrorIs(t, err, authz.ErrResourceNotFound)

	// never-existing id
	err = checker.Delete(ctx, &out, f.group.ID, uuid.New(), member)
	require.ErrorIs(t, err, authz.ErrResourceNotFound)
}

func TestCheckerLoad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	album := seedAlbum(t, f.db, f.group.ID, f.member.ID)
	member := f.membership(t, f.member.ID)
	other := f.membership(t, f.other.ID)
	checker := authz.NewChecker(f.db, authz.SpecAlbum)

	var out models.Album

	require.NoError(t, checker.Load(ctx, &out, f.group.ID, album.ID, member))
	assert.Equal(t, album.ID, out.ID)

	err := checker.Load(ctx, &out, f.group.ID, album.ID, other)
	require.ErrorIs(t, err, authz.ErrNotOwnerOrAdmin)
}

func TestCheckerUpdateWithoutChangesLoads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	album := seedAlbum(t, f.db, f.group.ID, f.member.ID)
	member := f.membership(t, f.member.ID)
	checker := authz.NewChecker(f.db, authz.SpecAlbum)

	var out models.Album

	require.NoError(t, checker.Update(ctx, &out, f.group.ID, album.ID, member, nil))
	assert.Equal(t, album.Name, out.Name)
}

func TestCheckerGuardedCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list := seedList(t, f.db, f.group.ID, f.member.ID, nil)
	member := f.membership(t, f.member.ID)
	admin := f.membership(t, f.creator.ID)
	other := f.membership(t, f.other.ID)

	checker := authz.NewChecker(f.db, authz.SpecListItem)

	var item models.ListItem

	// list owner may add items
	err := checker.Create(ctx, &item, list.ID, member, map[string]any{
		"content":   "milk",
		"completed": false,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, list.ID, item.ListID)
	assert.Equal(t, "milk", item.Content)

	// admin override reaches through the parent list
	err = checker.Create(ctx, &item, list.ID, admin, map[string]any{
		"content":   "eggs",
		"completed": false,
	})
	require.NoError(t, err)

	// a non-owner member is denied, and the parent's existence is reported
	err = checker.Create(ctx, &item, list.ID, other, map[string]any{
		"content":   "beer",
		"completed": false,
	})
	require.ErrorIs(t, err, authz.ErrNotOwnerOrAdmin)

	// a missing parent reads as not found
	err = checker.Create(ctx, &item, uuid.New(), member, map[string]any{
		"content":   "bread",
		"completed": false,
	})
	require.ErrorIs(t, err, authz.ErrResourceNotFound)

	var n int64
	require.NoError(t, f.db.Model(&models.ListItem{}).Where("list_id = ?", list.ID).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestCheckerGuardedCreateScopesParentGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// list lives in an unrelated group
	outsider := newUser(t, f.db, "outsider")
	otherGroup := models.Group{Name: "others", CreatedBy: outsider.ID}
	require.NoError(t, f.db.Create(&otherGroup).Error)
	addMember(t, f.db, otherGroup.ID, outsider.ID, true)

	foreignList := seedList(t, f.db, otherGroup.ID, outsider.ID, nil)

	admin := f.membership(t, f.creator.ID)
	checker := authz.NewChecker(f.db, authz.SpecListItem)

	var item models.ListItem

	err := checker.Create(ctx, &item, foreignList.ID, admin, map[string]any{
		"content":   "nope",
		"completed": false,
	})
	require.ErrorIs(t, err, authz.ErrResourceNotFound)
}

func TestCheckerItemMutationThroughParentOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list := seedList(t, f.db, f.group.ID, f.member.ID, nil)
	item := models.ListItem{ListID: list.ID, Content: "milk"}
	require.NoError(t, f.db.Create(&item).Error)

	member := f.membership(t, f.member.ID)
	other := f.membership(t, f.other.ID)
	checker := authz.NewChecker(f.db, authz.SpecListItem)

	var out models.ListItem

	err := checker.Update(ctx, &out, list.ID, item.ID, other, map[string]any{"completed": true})
	require.ErrorIs(t, err, authz.ErrNotOwnerOrAdmin)

	err = checker.Update(ctx, &out, list.ID, item.ID, member, map[string]any{"completed": true})
	require.NoError(t, err)
	assert.True(t, out.Completed)
}

// Group G created by A. Member M creates list L. M updates L as owner, A
// updates L through the admin override, and a third member N is denied.
func TestScenarioListOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list := seedList(t, f.db, f.group.ID, f.member.ID, nil)

	checker := authz.NewChecker(f.db, authz.SpecList)

	owner := f.membership(t, f.member.ID)
	var byOwner models.List
	require.NoError(t, checker.Update(ctx, &byOwner, f.group.ID, list.ID, owner, map[string]any{"title": "by owner"}))

	admin := f.membership(t, f.creator.ID)
	var byAdmin models.List
	require.NoError(t, checker.Update(ctx, &byAdmin, f.group.ID, list.ID, admin, map[string]any{"title": "by admin"}))

	third := f.membership(t, f.other.ID)
	var denied models.List
	err := checker.Update(ctx, &denied, f.group.ID, list.ID, third, map[string]any{"title": "denied"})
	require.ErrorIs(t, err, authz.ErrNotOwnerOrAdmin)

	var current models.List
	require.NoError(t, f.db.First(&current, "id = ?", list.ID).Error)
	assert.Equal(t, "by admin", current.Title)
}

// M posts comment C on media owned by A. M deletes their own comment, A
// deletes M's comment through the override, N is denied and C survives.
func TestScenarioCommentDeletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	album := seedAlbum(t, f.db, f.group.ID, f.creator.ID)
	media := models.Media{
		AlbumID:    album.ID,
		GroupID:    f.group.ID,
		UploadedBy: f.creator.ID,
		Type:       models.MediaTypeImage,
		MimeType:   "image/jpeg",
		URL:        "https://cdn.example.test/a.jpg",
		BucketKey:  "a",
	}
	require.NoError(t, f.db.Create(&media).Error)

	newComment := func() models.MediaComment {
		c := models.MediaComment{MediaID: media.ID, SenderID: f.member.ID, Content: "nice"}
		require.NoError(t, f.db.Create(&c).Error)
		return c
	}

	checker := authz.NewChecker(f.db, authz.SpecComment)

	// sender deletes own comment
	c1 := newComment()
	sender := f.membership(t, f.member.ID)
	var out1 models.MediaComment
	require.NoError(t, checker.Delete(ctx, &out1, media.ID, c1.ID, sender))

	// admin deletes the sender's comment
	c2 := newComment()
	admin := f.membership(t, f.creator.ID)
	var out2 models.MediaComment
	require.NoError(t, checker.Delete(ctx, &out2, media.ID, c2.ID, admin))

	// third member is denied and the comment survives
	c3 := newComment()
	third := f.membership(t, f.other.ID)
	var out3 models.MediaComment
	err := checker.Delete(ctx, &out3, media.ID, c3.ID, third)
	require.ErrorIs(t, err, authz.ErrNotOwnerOrAdmin)

	var n int64
	require.NoError(t, f.db.Model(&models.MediaComment{}).Where("id = ?", c3.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

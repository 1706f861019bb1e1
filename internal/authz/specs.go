package authz

// Resource ownership specs, one per resource type. Defined once here and
// treated as immutable configuration; the tables and columns mirror the
// models in internal/db/models.
var (
	// SpecAlbum: albums are owned by their creator; admins may manage them.
	SpecAlbum = Spec{
		Resource:      "album",
		Table:         "media_albums",
		ParentColumn:  "group_id",
		OwnerColumns:  []string{"created_by"},
		AdminOverride: true,
	}

	// SpecMedia: media items are owned by their uploader; admins may manage them.
	SpecMedia = Spec{
		Resource:      "media",
		Table:         "media",
		ParentColumn:  "album_id",
		OwnerColumns:  []string{"uploaded_by"},
		AdminOverride: true,
	}

	// SpecComment: comments are owned by their sender; admins may manage them.
	SpecComment = Spec{
		Resource:      "comment",
		Table:         "media_comments",
		ParentColumn:  "media_id",
		OwnerColumns:  []string{"sender_id"},
		AdminOverride: true,
	}

	// SpecList: a list is owned by its creator OR its assignee.
	SpecList = Spec{
		Resource:      "list",
		Table:         "lists",
		ParentColumn:  "group_id",
		OwnerColumns:  []string{"created_by", "assigned_to"},
		AdminOverride: true,
	}

	// SpecListItem: items carry no owner column; ownership is held by the
	// enclosing list (creator or assignee), with admin override.
	SpecListItem = Spec{
		Resource:     "list item",
		Table:        "list_items",
		ParentColumn: "list_id",
		ParentOwner: &ParentOwner{
			Table:        "lists",
			ScopeColumn:  "group_id",
			OwnerColumns: []string{"created_by", "assigned_to"},
		},
		AdminOverride: true,
	}

	// SpecEvent: calendar events are owned by their creator; admins may manage them.
	SpecEvent = Spec{
		Resource:      "event",
		Table:         "events",
		ParentColumn:  "group_id",
		OwnerColumns:  []string{"created_by"},
		AdminOverride: true,
	}

	// SpecChannel: text channels are owned by the admin who created them.
	SpecChannel = Spec{
		Resource:      "text channel",
		Table:         "text_channels",
		ParentColumn:  "group_id",
		OwnerColumns:  []string{"created_by"},
		AdminOverride: true,
	}

	// SpecMessageDelete: admins may remove another member's message.
	SpecMessageDelete = Spec{
		Resource:      "message",
		Table:         "messages",
		ParentColumn:  "channel_id",
		OwnerColumns:  []string{"sender_id"},
		AdminOverride: true,
	}

	// SpecMessageEdit: editing stays sender-only; admins may delete a
	// message but not rewrite it.
	SpecMessageEdit = Spec{
		Resource:      "message",
		Table:         "messages",
		ParentColumn:  "channel_id",
		OwnerColumns:  []string{"sender_id"},
		AdminOverride: false,
	}
)

// Package album provides the JSON API handlers for albums, media and media
// comments.
package album

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/hearth-app/hearth/internal/authz"
	"github.com/hearth-app/hearth/internal/config"
	albumctl "github.com/hearth-app/hearth/internal/db/controller/album"
	"github.com/hearth-app/hearth/internal/db/models"
	"github.com/hearth-app/hearth/internal/web/handler"
)

const (
	// Path is the base path for album management within a group.
	Path = handler.GroupPath + "/albums"

	// RouteAlbum addresses one album.
	RouteAlbum = Path + "/:albumId"
	// RouteMedia addresses an album's media collection.
	RouteMedia = RouteAlbum + "/media"
	// RouteMediaItem addresses one media item.
	RouteMediaItem = RouteMedia + "/:mediaId"
	// RouteComments addresses a media item's comment collection.
	RouteComments = handler.GroupPath + "/media/:mediaId/comments"
	// RouteComment addresses one comment.
	RouteComment = RouteComments + "/:commentId"
)

// Service provides the album API handlers.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	resolver  *authz.Resolver
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, resolver *authz.Resolver) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.resolver = resolver
	s.validator = validator.New()

	app.Post(Path, s.Create)
	app.Get(Path, s.List)
	app.Get(RouteAlbum, s.Get)
	app.Patch(RouteAlbum, s.Update)
	app.Delete(RouteAlbum, s.Delete)
	app.Post(RouteMedia, s.AddMedia)
	app.Get(RouteMedia, s.MediaList)
	app.Delete(RouteMediaItem, s.DeleteMedia)
	app.Post(RouteComments, s.AddComment)
	app.Get(RouteComments, s.Comments)
	app.Delete(RouteComment, s.DeleteComment)
}

type createInput struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=255"`
}

// Create creates an album owned by the caller.
func (s *Service) Create(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	var in createInput
	if err := c.BodyParser(&in); err != nil {
		return handler.RenderValidation(c, err)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.RenderValidation(c, err)
	}

	a, err := albumctl.CreateAlbum(c.UserContext(), s.db, m, in.Name, in.Description)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(a)
}

// List returns the group's albums.
func (s *Service) List(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	albums, err := albumctl.Albums(c.UserContext(), s.db, m)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(albums)
}

// Get returns one album.
func (s *Service) Get(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	albumID, err := handler.ParseID(c, "albumId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	a, err := albumctl.GetAlbum(c.UserContext(), s.db, m, albumID)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(a)
}

type updateInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// Update applies a partial update (owner or admin).
func (s *Service) Update(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	albumID, err := handler.ParseID(c, "albumId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	var in updateInput
	if err := c.BodyParser(&in); err != nil {
		return handler.RenderValidation(c, err)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.RenderValidation(c, err)
	}

	a, err := albumctl.UpdateAlbum(c.UserContext(), s.db, m, albumID, albumctl.AlbumPatch{
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(a)
}

// Delete removes an album (owner or admin).
func (s *Service) Delete(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	albumID, err := handler.ParseID(c, "albumId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	if _, err := albumctl.DeleteAlbum(c.UserContext(), s.db, m, albumID); err != nil {
		return handler.RenderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type mediaInput struct {
	Type      string `json:"type" validate:"required,oneof=image video"`
	MimeType  string `json:"mimeType" validate:"required,max=100"`
	URL       string `json:"url" validate:"required,max=512"`
	SizeBytes int64  `json:"sizeBytes" validate:"min=0"`
	Filename  string `json:"filename" validate:"max=255"`
}

// AddMedia records an uploaded media item.
func (s *Service) AddMedia(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	albumID, err := handler.ParseID(c, "albumId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	var in mediaInput
	if err := c.BodyParser(&in); err != nil {
		return handler.RenderValidation(c, err)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.RenderValidation(c, err)
	}

	media, err := albumctl.AddMedia(c.UserContext(), s.db, m, albumID, albumctl.MediaInput{
		Type:      models.MediaType(in.Type),
		MimeType:  in.MimeType,
		URL:       in.URL,
		SizeBytes: in.SizeBytes,
		Filename:  in.Filename,
	})
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(media)
}

// MediaList returns an album's media.
func (s *Service) MediaList(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	albumID, err := handler.ParseID(c, "albumId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	media, err := albumctl.MediaList(c.UserContext(), s.db, m, albumID)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(media)
}

// DeleteMedia removes a media item (uploader or admin).
func (s *Service) DeleteMedia(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	albumID, err := handler.ParseID(c, "albumId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	mediaID, err := handler.ParseID(c, "mediaId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	if _, err := albumctl.DeleteMedia(c.UserContext(), s.db, m, albumID, mediaID); err != nil {
		return handler.RenderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type commentInput struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// AddComment posts a comment on a media item.
func (s *Service) AddComment(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	mediaID, err := handler.ParseID(c, "mediaId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	var in commentInput
	if err := c.BodyParser(&in); err != nil {
		return handler.RenderValidation(c, err)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.RenderValidation(c, err)
	}

	comment, err := albumctl.AddComment(c.UserContext(), s.db, m, mediaID, in.Content)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// Comments returns a media item's comments.
func (s *Service) Comments(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	mediaID, err := handler.ParseID(c, "mediaId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	comments, err := albumctl.Comments(c.UserContext(), s.db, m, mediaID)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(comments)
}

// DeleteComment removes a comment (sender or admin).
func (s *Service) DeleteComment(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	mediaID, err := handler.ParseID(c, "mediaId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	commentID, err := handler.ParseID(c, "commentId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	if _, err := albumctl.DeleteComment(c.UserContext(), s.db, m, mediaID, commentID); err != nil {
		return handler.RenderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

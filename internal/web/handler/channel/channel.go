// Package channel provides the JSON API handlers for text channels and
// chat messages. Successful message mutations are handed to the realtime
// broadcaster for fan-out to connected clients.
package channel

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/hearth-app/hearth/internal/authz"
	"github.com/hearth-app/hearth/internal/config"
	channelctl "github.com/hearth-app/hearth/internal/db/controller/channel"
	"github.com/hearth-app/hearth/internal/realtime"
	"github.com/hearth-app/hearth/internal/web/handler"
)

const (
	// Path is the base path for channel management within a group.
	Path = handler.GroupPath + "/channels"

	// RouteChannel addresses one channel.
	RouteChannel = Path + "/:channelId"
	// RouteMessages addresses a channel's message collection.
	RouteMessages = RouteChannel + "/messages"
	// RouteMessage addresses one message.
	RouteMessage = RouteMessages + "/:messageId"

	// QueryLimit is the query parameter bounding a message page.
	QueryLimit = "limit"
	// QueryBefore is the query parameter restricting a page to older messages.
	QueryBefore = "before"

	// EventMessageCreated is broadcast when a message is posted.
	EventMessageCreated = "message.created"
	// EventMessageUpdated is broadcast when a message is edited.
	EventMessageUpdated = "message.updated"
	// EventMessageDeleted is broadcast when a message is removed.
	EventMessageDeleted = "message.deleted"
)

// Service provides the channel API handlers.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	resolver    *authz.Resolver
	validator   *validator.Validate
	broadcaster realtime.Broadcaster
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, resolver *authz.Resolver, broadcaster realtime.Broadcaster) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.resolver = resolver
	s.validator = validator.New()
	s.broadcaster = broadcaster

	if s.broadcaster == nil {
		s.broadcaster = realtime.Noop{}
	}

	app.Post(Path, s.Create)
	app.Get(Path, s.List)
	app.Patch(RouteChannel, s.Update)
	app.Delete(RouteChannel, s.Delete)
	app.Post(RouteMessages, s.PostMessage)
	app.Get(RouteMessages, s.Messages)
	app.Patch(RouteMessage, s.EditMessage)
	app.Delete(RouteMessage, s.DeleteMessage)
}

type createInput struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// Create creates a text channel (admin).
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

	tc, err := channelctl.CreateChannel(c.UserContext(), s.db, m, in.Name)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(tc)
}

// List returns the group's channels.
func (s *Service) List(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	channels, err := channelctl.Channels(c.UserContext(), s.db, m)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(channels)
}

type updateInput struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=100"`
}

// Update applies a partial update (owner or admin).
func (s *Service) Update(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	channelID, err := handler.ParseID(c, "channelId")
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

	tc, err := channelctl.UpdateChannel(c.UserContext(), s.db, m, channelID, channelctl.ChannelPatch{
		Name: in.Name,
	})
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(tc)
}

// Delete removes a channel (owner or admin).
func (s *Service) Delete(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	channelID, err := handler.ParseID(c, "channelId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	if _, err := channelctl.DeleteChannel(c.UserContext(), s.db, m, channelID); err != nil {
		return handler.RenderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type messageInput struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// PostMessage posts a message and broadcasts it to the channel room.
func (s *Service) PostMessage(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	channelID, err := handler.ParseID(c, "channelId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	var in messageInput
	if err := c.BodyParser(&in); err != nil {
		return handler.RenderValidation(c, err)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.RenderValidation(c, err)
	}

	msg, err := channelctl.PostMessage(c.UserContext(), s.db, m, channelID, in.Content)
	if err != nil {
		return handler.RenderError(c, err)
	}

	s.broadcaster.Broadcast(realtime.Event{
		Room:    realtime.ChannelRoom(m.GroupID, channelID),
		Kind:    EventMessageCreated,
		Payload: msg,
	})

	return c.Status(fiber.StatusCreated).JSON(msg)
}

// Messages returns a page of channel messages, newest first.
func (s *Service) Messages(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	channelID, err := handler.ParseID(c, "channelId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	var before *time.Time

	if raw := c.Query(QueryBefore); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return handler.RenderValidation(c, err)
		}

		before = &t
	}

	messages, err := channelctl.Messages(c.UserContext(), s.db, m, channelID, c.QueryInt(QueryLimit), before)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(messages)
}

// EditMessage rewrites a message (sender only) and broadcasts the change.
func (s *Service) EditMessage(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	channelID, err := handler.ParseID(c, "channelId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	messageID, err := handler.ParseID(c, "messageId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	var in messageInput
	if err := c.BodyParser(&in); err != nil {
		return handler.RenderValidation(c, err)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.RenderValidation(c, err)
	}

	msg, err := channelctl.EditMessage(c.UserContext(), s.db, m, channelID, messageID, in.Content)
	if err != nil {
		return handler.RenderError(c, err)
	}

	s.broadcaster.Broadcast(realtime.Event{
		Room:    realtime.ChannelRoom(m.GroupID, channelID),
		Kind:    EventMessageUpdated,
		Payload: msg,
	})

	return c.JSON(msg)
}

// DeleteMessage removes a message (sender or admin) and broadcasts the
// removal.
func (s *Service) DeleteMessage(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	channelID, err := handler.ParseID(c, "channelId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	messageID, err := handler.ParseID(c, "messageId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	msg, err := channelctl.DeleteMessage(c.UserContext(), s.db, m, channelID, messageID)
	if err != nil {
		return handler.RenderError(c, err)
	}

	s.broadcaster.Broadcast(realtime.Event{
		Room:    realtime.ChannelRoom(m.GroupID, channelID),
		Kind:    EventMessageDeleted,
		Payload: msg,
	})

	return c.SendStatus(fiber.StatusNoContent)
}

// Package list provides the JSON API handlers for shared lists and their
// items.
package list

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/hearth-app/hearth/internal/authz"
	"github.com/hearth-app/hearth/internal/config"
	listctl "github.com/hearth-app/hearth/internal/db/controller/list"
	"github.com/hearth-app/hearth/internal/web/handler"
)

const (
	// Path is the base path for list management within a group.
	Path = handler.GroupPath + "/lists"

	// RouteList addresses one list.
	RouteList = Path + "/:listId"
	// RouteItems addresses a list's item collection.
	RouteItems = RouteList + "/items"
	// RouteItem addresses one item.
	RouteItem = RouteItems + "/:itemId"
)

// Service provides the list API handlers.
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
	app.Get(RouteList, s.Get)
	app.Patch(RouteList, s.Update)
	app.Delete(RouteList, s.Delete)
	app.Post(RouteItems, s.AddItem)
	app.Get(RouteItems, s.Items)
	app.Patch(RouteItem, s.UpdateItem)
	app.Delete(RouteItem, s.DeleteItem)
}

type createInput struct {
	Title      string     `json:"title" validate:"required,min=1,max=200"`
	ListType   string     `json:"listType" validate:"required,min=1,max=50"`
	AssignedTo *string    `json:"assignedTo" validate:"omitempty,uuid"`
	DueDate    *time.Time `json:"dueDate"`
}

// Create creates a list owned by the caller.
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

	var assignee *uuid.UUID

	if in.AssignedTo != nil {
		id, err := handler.ParseBodyID(*in.AssignedTo)
		if err != nil {
			return handler.RenderError(c, err)
		}

		assignee = &id
	}

	l, err := listctl.Create(c.UserContext(), s.db, m, listctl.CreateInput{
		Title:      in.Title,
		ListType:   in.ListType,
		AssignedTo: assignee,
		DueDate:    in.DueDate,
	})
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(l)
}

// List returns the group's lists.
func (s *Service) List(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	lists, err := listctl.Lists(c.UserContext(), s.db, m)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(lists)
}

// Get returns one list.
func (s *Service) Get(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	listID, err := handler.ParseID(c, "listId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	l, err := listctl.Get(c.UserContext(), s.db, m, listID)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(l)
}

type updateInput struct {
	Title         *string    `json:"title" validate:"omitempty,min=1,max=200"`
	ListType      *string    `json:"listType" validate:"omitempty,min=1,max=50"`
	AssignedTo    *string    `json:"assignedTo" validate:"omitempty,uuid"`
	ClearAssignee bool       `json:"clearAssignee"`
	DueDate       *time.Time `json:"dueDate"`
	ClearDueDate  bool       `json:"clearDueDate"`
}

// Update applies a partial update (creator, assignee or admin).
func (s *Service) Update(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	listID, err := handler.ParseID(c, "listId")
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

	patch := listctl.Patch{
		Title:         in.Title,
		ListType:      in.ListType,
		ClearAssignee: in.ClearAssignee,
		DueDate:       in.DueDate,
		ClearDueDate:  in.ClearDueDate,
	}

	if in.AssignedTo != nil {
		id, err := handler.ParseBodyID(*in.AssignedTo)
		if err != nil {
			return handler.RenderError(c, err)
		}

		patch.AssignedTo = &id
	}

	l, err := listctl.Update(c.UserContext(), s.db, m, listID, patch)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(l)
}

// Delete removes a list (creator, assignee or admin).
func (s *Service) Delete(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	listID, err := handler.ParseID(c, "listId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	if _, err := listctl.Delete(c.UserContext(), s.db, m, listID); err != nil {
		return handler.RenderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type itemInput struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// AddItem adds an item to a list the caller may write.
func (s *Service) AddItem(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	listID, err := handler.ParseID(c, "listId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	var in itemInput
	if err := c.BodyParser(&in); err != nil {
		return handler.RenderValidation(c, err)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.RenderValidation(c, err)
	}

	item, err := listctl.AddItem(c.UserContext(), s.db, m, listID, in.Content)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// Items returns a list's items.
func (s *Service) Items(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	listID, err := handler.ParseID(c, "listId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	items, err := listctl.Items(c.UserContext(), s.db, m, listID)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(items)
}

type itemPatchInput struct {
	Content   *string `json:"content" validate:"omitempty,min=1,max=500"`
	Completed *bool   `json:"completed"`
}

// UpdateItem applies a partial update to an item.
func (s *Service) UpdateItem(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	listID, err := handler.ParseID(c, "listId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	itemID, err := handler.ParseID(c, "itemId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	var in itemPatchInput
	if err := c.BodyParser(&in); err != nil {
		return handler.RenderValidation(c, err)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.RenderValidation(c, err)
	}

	item, err := listctl.UpdateItem(c.UserContext(), s.db, m, listID, itemID, listctl.ItemPatch{
		Content:   in.Content,
		Completed: in.Completed,
	})
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(item)
}

// DeleteItem removes an item.
func (s *Service) DeleteItem(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	listID, err := handler.ParseID(c, "listId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	itemID, err := handler.ParseID(c, "itemId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	if _, err := listctl.DeleteItem(c.UserContext(), s.db, m, listID, itemID); err != nil {
		return handler.RenderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Package group provides the JSON API handlers for groups and their
// members.
package group

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/hearth-app/hearth/internal/authz"
	"github.com/hearth-app/hearth/internal/config"
	groupctl "github.com/hearth-app/hearth/internal/db/controller/group"
	"github.com/hearth-app/hearth/internal/web/handler"
)

const (
	// Path is the base path for group management.
	Path = handler.APIPath + "/groups"

	// RouteGroup addresses one group.
	RouteGroup = Path + "/:groupId"
	// RouteMembers addresses a group's member collection.
	RouteMembers = RouteGroup + "/members"
	// RouteMember addresses one membership.
	RouteMember = RouteMembers + "/:userId"
	// RouteMemberRole addresses one membership's role.
	RouteMemberRole = RouteMember + "/role"
)

// Service provides the group API handlers.
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
	app.Get(RouteGroup, s.Get)
	app.Patch(RouteGroup, s.Update)
	app.Delete(RouteGroup, s.Delete)
	app.Get(RouteMembers, s.Members)
	app.Post(RouteMembers, s.AddMember)
	app.Put(RouteMemberRole, s.SetMemberRole)
	app.Delete(RouteMember, s.RemoveMember)
}

type createInput struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=255"`
}

// Create creates a group; the caller becomes member, admin and creator.
func (s *Service) Create(c *fiber.Ctx) error {
	caller, err := handler.Caller(c)
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

	g, err := groupctl.Create(c.UserContext(), s.db, caller.UserID, in.Name, in.Description)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(g)
}

// Get returns the caller's group.
func (s *Service) Get(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	g, err := groupctl.Get(c.UserContext(), s.db, m)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(g)
}

type updateInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// Update applies a partial update to the group (admin).
func (s *Service) Update(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
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

	g, err := groupctl.Update(c.UserContext(), s.db, m, groupctl.Patch{
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(g)
}

// Delete removes the group (creator).
func (s *Service) Delete(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	if err := groupctl.Delete(c.UserContext(), s.db, m); err != nil {
		return handler.RenderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Members lists the group's memberships.
func (s *Service) Members(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	members, err := groupctl.Members(c.UserContext(), s.db, m)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(members)
}

type addMemberInput struct {
	UserID string `json:"userId" validate:"required,uuid4"`
}

// AddMember adds a user to the group (admin).
func (s *Service) AddMember(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	var in addMemberInput
	if err := c.BodyParser(&in); err != nil {
		return handler.RenderValidation(c, err)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.RenderValidation(c, err)
	}

	userID, err := handler.ParseBodyID(in.UserID)
	if err != nil {
		return handler.RenderError(c, err)
	}

	member, err := groupctl.AddMember(c.UserContext(), s.db, m, userID)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(member)
}

type setRoleInput struct {
	IsAdmin bool `json:"isAdmin"`
}

// SetMemberRole sets a member's admin flag (admin).
func (s *Service) SetMemberRole(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	userID, err := handler.ParseID(c, "userId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	var in setRoleInput
	if err := c.BodyParser(&in); err != nil {
		return handler.RenderValidation(c, err)
	}

	role, err := groupctl.SetMemberRole(c.UserContext(), s.db, m, userID, in.IsAdmin)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(role)
}

// RemoveMember removes a member (admin, or the member themselves).
func (s *Service) RemoveMember(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	userID, err := handler.ParseID(c, "userId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	if err := groupctl.RemoveMember(c.UserContext(), s.db, m, userID); err != nil {
		return handler.RenderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

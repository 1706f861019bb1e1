// Package calendar provides the JSON API handlers for group calendar
// events.
package calendar

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/hearth-app/hearth/internal/authz"
	"github.com/hearth-app/hearth/internal/config"
	calendarctl "github.com/hearth-app/hearth/internal/db/controller/calendar"
	"github.com/hearth-app/hearth/internal/web/handler"
)

const (
	// Path is the base path for event management within a group.
	Path = handler.GroupPath + "/events"

	// RouteEvent addresses one event.
	RouteEvent = Path + "/:eventId"

	// QueryFrom is the query parameter naming the range start.
	QueryFrom = "from"
	// QueryTo is the query parameter naming the range end.
	QueryTo = "to"

	// defaultRange is the range window applied when the caller names none.
	defaultRange = 30 * 24 * time.Hour
)

// Service provides the calendar API handlers.
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
	app.Get(Path, s.Range)
	app.Get(RouteEvent, s.Get)
	app.Patch(RouteEvent, s.Update)
	app.Delete(RouteEvent, s.Delete)
}

type createInput struct {
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	StartTime   time.Time `json:"startTime" validate:"required"`
	EndTime     time.Time `json:"endTime" validate:"required,gtefield=StartTime"`
	AllDay      bool      `json:"allDay"`
	Location    string    `json:"location" validate:"max=255"`
}

// Create creates an event owned by the caller.
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

	e, err := calendarctl.Create(c.UserContext(), s.db, m, calendarctl.CreateInput{
		Title:       in.Title,
		Description: in.Description,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		AllDay:      in.AllDay,
		Location:    in.Location,
	})
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(e)
}

// Range returns the group's events overlapping the requested window.
func (s *Service) Range(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	from := time.Now().UTC()

	if raw := c.Query(QueryFrom); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return handler.RenderValidation(c, err)
		}
	}

	to := from.Add(defaultRange)

	if raw := c.Query(QueryTo); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return handler.RenderValidation(c, err)
		}
	}

	events, err := calendarctl.Range(c.UserContext(), s.db, m, from, to)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(events)
}

// Get returns one event.
func (s *Service) Get(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	eventID, err := handler.ParseID(c, "eventId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	e, err := calendarctl.Get(c.UserContext(), s.db, m, eventID)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(e)
}

type updateInput struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	AllDay      *bool      `json:"allDay"`
	Location    *string    `json:"location" validate:"omitempty,max=255"`
}

// Update applies a partial update (owner or admin).
func (s *Service) Update(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	eventID, err := handler.ParseID(c, "eventId")
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

	e, err := calendarctl.Update(c.UserContext(), s.db, m, eventID, calendarctl.Patch{
		Title:       in.Title,
		Description: in.Description,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		AllDay:      in.AllDay,
		Location:    in.Location,
	})
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(e)
}

// Delete removes an event (owner or admin).
func (s *Service) Delete(c *fiber.Ctx) error {
	m, err := handler.Membership(c, s.resolver)
	if err != nil {
		return handler.RenderError(c, err)
	}

	eventID, err := handler.ParseID(c, "eventId")
	if err != nil {
		return handler.RenderError(c, err)
	}

	if _, err := calendarctl.Delete(c.UserContext(), s.db, m, eventID); err != nil {
		return handler.RenderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

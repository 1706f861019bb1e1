package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/hearth-app/hearth/internal/authz"
	"github.com/hearth-app/hearth/internal/db/controller/calendar"
	"github.com/hearth-app/hearth/internal/db/controller/group"
)

// errorBody is the JSON error payload.
type errorBody struct {
	Error string `json:"error"`
}

// RenderError is the error translation boundary: one exhaustive mapping
// from the authorization taxonomy (and controller errors) to transport
// status codes. Denials are operational outcomes and log at debug;
// everything unexpected is an infrastructure failure, logged at error and
// presented as a generic 500.
func RenderError(c *fiber.Ctx, err error) error {
	var status int

	switch {
	case errors.Is(err, authz.ErrNotMember),
		errors.Is(err, authz.ErrInsufficientRole),
		errors.Is(err, authz.ErrNotOwnerOrAdmin),
		errors.Is(err, group.ErrCannotRemoveCreator):
		status = fiber.StatusForbidden
	case errors.Is(err, authz.ErrResourceNotFound),
		errors.Is(err, authz.ErrInvalidParentScope),
		errors.Is(err, group.ErrMemberNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, group.ErrAlreadyMember):
		status = fiber.StatusConflict
	case errors.Is(err, calendar.ErrInvalidRange):
		status = fiber.StatusBadRequest
	default:
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(errorBody{Error: fiberErr.Message})
		}

		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")

		return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: "internal error"})
	}

	log.Debug().Err(err).Str("path", c.Path()).Int("status", status).Msg("request denied")

	return c.Status(status).JSON(errorBody{Error: err.Error()})
}

// RenderValidation presents an input validation failure.
func RenderValidation(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(errorBody{Error: err.Error()})
}

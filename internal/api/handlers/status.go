package handlers

import (
	"Foodgram-Backend/domain"
	"errors"

	"github.com/gofiber/fiber/v2"
)

// statusFromError maps the domain error taxonomy to a client-facing
// status code. Every domain failure is request-scoped and recoverable.
func statusFromError(err error) int {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, domain.ErrRelationExists),
		errors.Is(err, domain.ErrRelationNotFound),
		errors.Is(err, domain.ErrSelfSubscription),
		errors.Is(err, domain.ErrEmptyShoppingCart),
		errors.Is(err, domain.ErrEmailAlreadyUsed),
		errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrParseUUID):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrRecipeNotFound),
		errors.Is(err, domain.ErrTagNotFound),
		errors.Is(err, domain.ErrIngredientNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorizedRecipeAccess):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrIngredientInUse):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

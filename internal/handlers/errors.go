package handlers

import (
	"errors"
	"log"

	"lapak/internal/repositories"
	"lapak/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses:
// missing fields and bad quantities are 400, authorization failures are
// 403, unknown records 404, illegal transitions 409 and persistence or
// collaborator failures 502.
func respondServiceError(c *fiber.Ctx, err error) error {
	var missing *services.MissingFieldError
	if errors.As(err, &missing) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Missing required field",
			"error":   err.Error(),
		})
	}

	var quantity *services.InvalidQuantityError
	if errors.As(err, &quantity) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid quantity",
			"error":   err.Error(),
		})
	}

	if errors.Is(err, services.ErrNotAuthorized) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Not authorized for this resource",
		})
	}

	if errors.Is(err, repositories.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Record not found",
			"error":   err.Error(),
		})
	}

	var transition *services.InvalidTransitionError
	if errors.As(err, &transition) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Invalid status transition",
			"error":   err.Error(),
		})
	}

	var upstream *services.UpstreamError
	if errors.As(err, &upstream) {
		log.Printf("Upstream failure during %s: %v", upstream.Step, upstream.Err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "A dependent system failed; the operation may be partially applied",
			"error":   err.Error(),
		})
	}

	log.Printf("Unhandled service error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
		"error":   err.Error(),
	})
}

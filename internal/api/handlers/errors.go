package handlers

import (
	"errors"

	"purchase-control/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgInvalidBody = "Corpo da requisição inválido"
	msgInvalidID   = "ID inválido"
)

// statusFor maps a service error kind to the HTTP status it is reported with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrUpstreamHTTP), errors.Is(err, service.ErrEmptyResponse), errors.Is(err, service.ErrParse):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes {"error": ...}. User errors keep their message;
// anything else is logged and answered with fallback.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	var userErr *service.UserError
	if errors.As(err, &userErr) {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": userErr.Message,
		})
	}

	status := statusFor(err)
	logger.Error(fallback, zap.Error(err), zap.String("path", c.Path()), zap.Int("status", status))
	return c.Status(status).JSON(fiber.Map{
		"error": fallback,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

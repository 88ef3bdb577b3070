package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/logistics-erp/internal/middleware"
	"github.com/example/logistics-erp/internal/services"
)

// ErrorHandler renders every error as {"success": false, "message": ...}.
// Unexpected errors are logged and reported with a generic message.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		} else {
			logger.Error("unhandled error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}

// serviceError maps service sentinel errors to HTTP errors.
func serviceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDuplicateShipment):
		return fiber.NewError(fiber.StatusBadRequest, "duplicate shipmentId")
	case errors.Is(err, services.ErrDuplicateOrder):
		return fiber.NewError(fiber.StatusBadRequest, "order already exists")
	case errors.Is(err, services.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, "access denied")
	case errors.Is(err, services.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "not found")
	default:
		return err
	}
}

func currentRequester(c *fiber.Ctx) (services.Requester, error) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return services.Requester{}, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return services.Requester{UserID: identity.UserID, Role: identity.Role, Email: identity.Email}, nil
}

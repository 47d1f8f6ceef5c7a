package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
)

// ErrorHandler renders every error returned by a handler in the API envelope.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"success": false,
				"message": fe.Message,
			})
		}

		ae, ok := apperr.As(err)
		if !ok {
			ae = apperr.Internal(err, "internal server error")
		}
		if ae.HTTPStatus() >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.Error(err),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
			)
		}

		body := fiber.Map{
			"success": false,
			"message": ae.Message,
			"code":    ae.Code,
		}
		if len(ae.Details) > 0 {
			body["details"] = ae.Details
		}
		return c.Status(ae.HTTPStatus()).JSON(body)
	}
}

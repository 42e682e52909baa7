package serverutils

import (
	"errors"

	"github.com/Wollie333/vilo-sub013/internal/pkg/apperrors"
	"github.com/Wollie333/vilo-sub013/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler builds the fiber error handler: business errors map through
// their kind to a status code and envelope, fiber errors keep their code,
// anything else is a 500 with the message withheld.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		if kind, ok := apperrors.KindOf(err); ok {
			status := apperrors.HTTPStatus(err)
			if status >= fiber.StatusInternalServerError {
				log.Error("HTTP", "Request failed", map[string]interface{}{
					"path":  ctx.Path(),
					"kind":  string(kind),
					"error": err.Error(),
				})
			}
			return ctx.Status(status).JSON(ErrorResponseKind(status, string(kind), err.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}

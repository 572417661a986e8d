package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docmind-be/internal/apperror"
	"docmind-be/internal/pkg/logger"
)

// ErrorHandlerMiddleware maps the error taxonomy to HTTP statuses. Client
// input errors name the violated precondition; server-side failures return a
// generic message while the full cause goes to the log.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var clientErr *apperror.ClientInputError
		if errors.As(err, &clientErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": clientErr.Message,
			})
		}

		if errors.Is(err, apperror.ErrNoActiveSession) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Please upload a document before starting a chat. No active conversation found.",
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"message": fiberErr.Message,
			})
		}

		log.Error("http", "request failed", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err.Error(),
		})

		message := "An internal error occurred"
		var procErr *apperror.ProcessingError
		var modelErr *apperror.ModelInvocationError
		switch {
		case errors.As(err, &procErr):
			message = "Error processing document"
		case errors.As(err, &modelErr):
			message = "Error generating a response"
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}

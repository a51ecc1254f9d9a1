package serverutils

import (
	"errors"

	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps errors escaping a handler onto the response
// envelope. Service errors keep their status and message; anything unknown
// collapses to a bare 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var svcErr *service.ServiceError
		if errors.As(err, &svcErr) {
			return ctx.Status(svcErr.HTTPStatus).JSON(ErrorResponse(svcErr.HTTPStatus, svcErr.Msg))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}

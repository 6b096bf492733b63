package handlers

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"github.com/nijaru/lexai/errors"
	"github.com/nijaru/lexai/models"
	"github.com/sirupsen/logrus"
)

// ErrorHandler turns handler errors into the JSON error body. Only the
// user-facing message leaves the process; the full chain is logged.
func ErrorHandler(logger logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var appErr *errors.AppError
		var fiberErr *fiber.Error
		switch {
		case stderrors.As(err, &appErr):
			code = appErr.Code
			message = appErr.Message
		case stderrors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		}

		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID(c),
			"path":       c.Path(),
			"method":     c.Method(),
			"status":     code,
			"error":      err.Error(),
		})
		if code >= fiber.StatusInternalServerError {
			entry.Error("Request error")
		} else {
			entry.Warn("Request error")
		}

		return c.Status(code).JSON(models.ErrorResponse{
			Success:   false,
			Error:     message,
			RequestID: requestID(c),
		})
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

package middleware

import "github.com/gofiber/fiber/v2"

// SuccessResponse writes the standard success envelope. Extra top-level keys
// (access_token, user_id, data, ...) are merged into the payload.
func SuccessResponse(c *fiber.Ctx, statusCode int, message string, extra fiber.Map) error {
	payload := fiber.Map{
		"status":  "success",
		"message": message,
	}
	for k, v := range extra {
		payload[k] = v
	}
	return c.Status(statusCode).JSON(payload)
}

// ErrorResponse writes the standard error envelope.
func ErrorResponse(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

// ValidationErrorResponse reports every collected field error in one response.
func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  "error",
		"message": "Validation failed",
		"errors":  errors,
	})
}

// UnexpectedErrorResponse surfaces the raw error text with a 500. Clients
// treat the message as diagnostic only.
func UnexpectedErrorResponse(c *fiber.Ctx, err error) error {
	return ErrorResponse(c, fiber.StatusInternalServerError, err.Error())
}

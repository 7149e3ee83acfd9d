package middleware

import (
	"strings"

	"fintrack/token"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth checks for a valid session bearer token and stores the verified
// subject email in the request context. Anything else is rejected before
// business logic runs.
func RequireAuth(tokens *token.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return ErrorResponse(c, fiber.StatusUnauthorized, "Missing or invalid Authorization header")
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return ErrorResponse(c, fiber.StatusUnauthorized, "Invalid Authorization header format")
		}

		tokenString := authHeader[len("Bearer "):]

		claims, err := tokens.Verify(tokenString)
		if err != nil || claims.Purpose != token.PurposeSession {
			return ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals("email", claims.Subject)
		return c.Next()
	}
}

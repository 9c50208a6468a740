package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UserIDKey is where the identity middleware stores the caller's id in the
// request locals.
const UserIDKey = "userID"

// Identity reads the user id the upstream auth proxy attaches to every
// request. Authentication itself happens outside this service; requests
// without a valid id never reach the handlers.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get("X-User-ID")
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing user identity",
			})
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid user identity",
			})
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

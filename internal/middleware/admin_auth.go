package middleware

import (
	"crypto/subtle"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
)

// RequireAdminToken gates admin routes behind a shared token header
func RequireAdminToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminToken := os.Getenv("ADMIN_API_TOKEN")
		if adminToken == "" {
			fmt.Println("ERROR: ADMIN_API_TOKEN not set")
			return c.Status(500).JSON(fiber.Map{
				"error": "Server configuration error",
			})
		}

		provided := c.Get("X-Admin-Token")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(adminToken)) != 1 {
			return c.Status(401).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		return c.Next()
	}
}

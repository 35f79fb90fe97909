package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
)

// ValidateRelaySignature validates that a webhook request came from the relay
func ValidateRelaySignature() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get relay signature from header
		relaySignature := c.Get("X-Relay-Signature")
		if relaySignature == "" {
			return c.Status(401).JSON(fiber.Map{
				"error": "Missing relay signature",
			})
		}

		// Get signing secret from environment
		signingSecret := os.Getenv("RELAY_SIGNING_SECRET")
		if signingSecret == "" {
			// Log error but don't expose to client
			fmt.Println("ERROR: RELAY_SIGNING_SECRET not set")
			return c.Status(500).JSON(fiber.Map{
				"error": "Server configuration error",
			})
		}

		// Calculate expected signature over the raw body
		expectedSignature := calculateRelaySignature(signingSecret, c.Body())

		// Compare signatures
		if !hmac.Equal([]byte(relaySignature), []byte(expectedSignature)) {
			return c.Status(401).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}

		return c.Next()
	}
}

// calculateRelaySignature calculates the expected HMAC-SHA256 body signature
func calculateRelaySignature(signingSecret string, body []byte) string {
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write(body)

	// Return base64 encoded
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/duderstadt-center/button-backend/internal/models"
	"github.com/duderstadt-center/button-backend/internal/services"
)

// WebhookHandler accepts pushed reply events as an alternative to queue
// polling. The body is the same envelope the queue carries; matching against
// the active session happens on the next countdown tick.
type WebhookHandler struct {
	manager *services.SessionManager
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(manager *services.SessionManager) *WebhookHandler {
	return &WebhookHandler{manager: manager}
}

// HandleReply processes one pushed reply event
func (h *WebhookHandler) HandleReply(c *fiber.Ctx) error {
	reply, ok, err := models.ParseReplyMessage(string(c.Body()))
	if err != nil {
		log.Printf("Error parsing reply webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid reply payload",
		})
	}

	if !ok {
		// not a reply event; accepted and dropped, like a non-reply queue
		// message
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	log.Printf("💬 Webhook reply for message %s from %s", reply.MessageTS, reply.Author)
	h.manager.OfferReply(reply)

	return c.JSON(fiber.Map{"status": "accepted"})
}

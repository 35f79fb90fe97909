package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/duderstadt-center/button-backend/internal/storage"
)

// AuditHandler serves recent audit log rows
type AuditHandler struct {
	store storage.Store
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(store storage.Store) *AuditHandler {
	return &AuditHandler{store: store}
}

// GetRecent returns the most recent audit entries, newest first
func (h *AuditHandler) GetRecent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	entries, err := h.store.GetRecentAuditEntries(limit)
	if err != nil {
		log.Printf("ERROR: failed to load audit entries: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load audit log",
		})
	}

	return c.JSON(fiber.Map{
		"count":   len(entries),
		"entries": entries,
	})
}

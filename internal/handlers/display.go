package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/duderstadt-center/button-backend/internal/services"
)

// DisplayHandler serves the display state the kiosk polls for rendering
type DisplayHandler struct {
	display *services.ScreenDisplay
}

// NewDisplayHandler creates a new display handler
func NewDisplayHandler(display *services.ScreenDisplay) *DisplayHandler {
	return &DisplayHandler{display: display}
}

// GetDisplay returns the current display snapshot
func (h *DisplayHandler) GetDisplay(c *fiber.Ctx) error {
	return c.JSON(h.display.Snapshot())
}

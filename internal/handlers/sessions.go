package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/duderstadt-center/button-backend/internal/services"
)

// SessionHandler exposes the active session registry
type SessionHandler struct {
	manager *services.SessionManager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(manager *services.SessionManager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// GetActiveSessions lists all sessions that have not reached a terminal state
func (h *SessionHandler) GetActiveSessions(c *fiber.Ctx) error {
	sessions := h.manager.ActiveSessions()
	return c.JSON(fiber.Map{
		"count":         len(sessions),
		"sessions":      sessions,
		"pending_reply": h.manager.PendingReply(),
	})
}

package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/duderstadt-center/button-backend/internal/services"
)

// PressHandler handles button press requests from the kiosk
type PressHandler struct {
	dispatcher *services.Dispatcher
}

// NewPressHandler creates a new press handler
func NewPressHandler(dispatcher *services.Dispatcher) *PressHandler {
	return &PressHandler{dispatcher: dispatcher}
}

type pressRequest struct {
	DeviceID string `json:"device_id"`
}

// HandlePress dispatches a help request for the pressed device
func (h *PressHandler) HandlePress(c *fiber.Ctx) error {
	var req pressRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid press payload",
		})
	}
	if req.DeviceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "device_id is required",
		})
	}

	result, err := h.dispatcher.Press(c.Context(), req.DeviceID)
	if err != nil {
		if errors.Is(err, services.ErrUnknownDevice) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Unknown device",
			})
		}
		log.Printf("ERROR: press dispatch failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to dispatch help request",
		})
	}

	if result.Outcome == services.PressRateLimited {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"outcome": result.Outcome,
			"message": "Rate limit applied. Please wait before tapping again.",
		})
	}

	return c.JSON(result)
}

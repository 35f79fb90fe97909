package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/duderstadt-center/button-backend/internal/models"
	"github.com/duderstadt-center/button-backend/internal/services"
	"github.com/duderstadt-center/button-backend/internal/storage"
)

// DeviceHandler manages device config rows (admin only)
type DeviceHandler struct {
	store   storage.Store
	devices *services.DeviceConfigService
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(store storage.Store, devices *services.DeviceConfigService) *DeviceHandler {
	return &DeviceHandler{store: store, devices: devices}
}

// RegisterDevice creates a device config row
func (h *DeviceHandler) RegisterDevice(c *fiber.Ctx) error {
	var reg models.DeviceRegistration
	if err := c.BodyParser(&reg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid device payload",
		})
	}
	if reg.DeviceID == "" || reg.ChannelID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "device_id and channel_id are required",
		})
	}

	device, err := h.store.CreateDevice(&reg)
	if err != nil {
		log.Printf("ERROR: failed to register device %s: %v", reg.DeviceID, err)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Failed to register device",
		})
	}

	h.devices.Invalidate(device.DeviceID)
	return c.Status(fiber.StatusCreated).JSON(device)
}

// ListDevices returns every configured device
func (h *DeviceHandler) ListDevices(c *fiber.Ctx) error {
	devices, err := h.store.GetAllDevices()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load devices",
		})
	}
	return c.JSON(fiber.Map{
		"count":   len(devices),
		"devices": devices,
	})
}

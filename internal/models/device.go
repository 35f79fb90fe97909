package models

import (
	"time"

	"gorm.io/gorm"
)

// Device is one physical help button, keyed by its hardware device ID.
// One process serves one device, but the config table can hold the whole fleet.
type Device struct {
	gorm.Model
	DeviceID         string    `gorm:"uniqueIndex;not null" json:"device_id"`
	Location         string    `json:"location"`
	ChannelID        string    `json:"channel_id"`
	RateLimitSeconds int       `gorm:"default:300" json:"rate_limit_seconds"`
	MessageText      string    `json:"message_text"`
	LastSeenAt       time.Time `json:"last_seen_at"`
}

// DeviceRegistration is the payload for registering a new device
type DeviceRegistration struct {
	DeviceID         string `json:"device_id"`
	Location         string `json:"location"`
	ChannelID        string `json:"channel_id"`
	RateLimitSeconds int    `json:"rate_limit_seconds"`
	MessageText      string `json:"message_text"`
}

const fallbackMessage = "Unknown button pressed."

// HelpMessage returns the configured message text, falling back to a
// placeholder when the config row left it blank.
func (d *Device) HelpMessage() string {
	if d.MessageText == "" {
		return fallbackMessage
	}
	return d.MessageText
}

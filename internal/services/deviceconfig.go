package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/duderstadt-center/button-backend/internal/models"
	"github.com/duderstadt-center/button-backend/internal/storage"
)

// ErrUnknownDevice marks a press from a device with no config row
var ErrUnknownDevice = errors.New("unknown device")

// DeviceConfigService resolves device ids to their config rows with a short
// TTL cache, so a press doesn't hit the store on every tap.
type DeviceConfigService struct {
	store storage.Store
	ttl   time.Duration

	mu    sync.Mutex
	cache map[string]cachedDevice
}

type cachedDevice struct {
	device    *models.Device
	fetchedAt time.Time
}

// NewDeviceConfigService creates a config service with a 5 minute cache
func NewDeviceConfigService(store storage.Store) *DeviceConfigService {
	return &DeviceConfigService{
		store: store,
		ttl:   5 * time.Minute,
		cache: make(map[string]cachedDevice),
	}
}

// Lookup returns the device config, from cache when fresh. An unknown device
// is an error; callers must not create a session for one.
func (dc *DeviceConfigService) Lookup(deviceID string) (*models.Device, error) {
	dc.mu.Lock()
	if cached, ok := dc.cache[deviceID]; ok && time.Since(cached.fetchedAt) < dc.ttl {
		dc.mu.Unlock()
		return cached.device, nil
	}
	dc.mu.Unlock()

	device, err := dc.store.GetDeviceByDeviceID(deviceID)
	if err != nil {
		log.Printf("ERROR: Unable to get device config. Device %s was not listed: %v", deviceID, err)
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, deviceID)
	}
	log.Printf("Got device info: %s at %q (channel %s, rate limit %ds)",
		device.DeviceID, device.Location, device.ChannelID, device.RateLimitSeconds)

	dc.mu.Lock()
	dc.cache[deviceID] = cachedDevice{device: device, fetchedAt: time.Now()}
	dc.mu.Unlock()

	return device, nil
}

// Invalidate drops a cached row, e.g. after an admin update
func (dc *DeviceConfigService) Invalidate(deviceID string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	delete(dc.cache, deviceID)
}

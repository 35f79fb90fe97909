package storage

import (
	"sync"
	"time"

	"github.com/duderstadt-center/button-backend/internal/models"
)

var (
	storeInstance Store
	storeOnce     sync.Once
)

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeOnce.Do(func() {
		storeInstance = s
	})
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// Device config operations
	CreateDevice(reg *models.DeviceRegistration) (*models.Device, error)
	GetDeviceByDeviceID(deviceID string) (*models.Device, error)
	GetAllDevices() ([]*models.Device, error)
	UpdateDevice(device *models.Device) error

	// Audit log operations
	CreateAuditEntry(entry *models.AuditEntry) (*models.AuditEntry, error)
	GetRecentAuditEntries(limit int) ([]*models.AuditEntry, error)
	CountOutcomesSince(since time.Time) (map[string]int64, error)
	DeleteAuditEntriesBefore(cutoff time.Time) (int64, error)
}

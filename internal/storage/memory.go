package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/duderstadt-center/button-backend/internal/models"
)

// MemoryStore holds all data in memory, for tests and single-kiosk deployments
type MemoryStore struct {
	devices map[string]*models.Device
	audit   []*models.AuditEntry

	// Mutexes for thread safety
	deviceMu sync.RWMutex
	auditMu  sync.RWMutex

	// Counters for ID generation
	deviceCounter uint
	auditCounter  uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		devices: make(map[string]*models.Device),
	}
}

// Device operations

func (m *MemoryStore) CreateDevice(reg *models.DeviceRegistration) (*models.Device, error) {
	m.deviceMu.Lock()
	defer m.deviceMu.Unlock()

	if _, exists := m.devices[reg.DeviceID]; exists {
		return nil, fmt.Errorf("device %s already registered", reg.DeviceID)
	}

	m.deviceCounter++
	device := &models.Device{
		DeviceID:         reg.DeviceID,
		Location:         reg.Location,
		ChannelID:        reg.ChannelID,
		RateLimitSeconds: reg.RateLimitSeconds,
		MessageText:      reg.MessageText,
	}
	device.ID = m.deviceCounter
	device.CreatedAt = time.Now()
	device.UpdatedAt = time.Now()

	m.devices[device.DeviceID] = device
	return device, nil
}

func (m *MemoryStore) GetDeviceByDeviceID(deviceID string) (*models.Device, error) {
	m.deviceMu.RLock()
	defer m.deviceMu.RUnlock()

	device, exists := m.devices[deviceID]
	if !exists {
		return nil, fmt.Errorf("device not found")
	}
	return device, nil
}

func (m *MemoryStore) GetAllDevices() ([]*models.Device, error) {
	m.deviceMu.RLock()
	defer m.deviceMu.RUnlock()

	devices := make([]*models.Device, 0, len(m.devices))
	for _, device := range m.devices {
		devices = append(devices, device)
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].DeviceID < devices[j].DeviceID
	})
	return devices, nil
}

func (m *MemoryStore) UpdateDevice(device *models.Device) error {
	m.deviceMu.Lock()
	defer m.deviceMu.Unlock()

	if _, exists := m.devices[device.DeviceID]; !exists {
		return fmt.Errorf("device not found")
	}
	device.UpdatedAt = time.Now()
	m.devices[device.DeviceID] = device
	return nil
}

// Audit operations

func (m *MemoryStore) CreateAuditEntry(entry *models.AuditEntry) (*models.AuditEntry, error) {
	m.auditMu.Lock()
	defer m.auditMu.Unlock()

	m.auditCounter++
	entry.ID = m.auditCounter
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt

	m.audit = append(m.audit, entry)
	return entry, nil
}

func (m *MemoryStore) GetRecentAuditEntries(limit int) ([]*models.AuditEntry, error) {
	m.auditMu.RLock()
	defer m.auditMu.RUnlock()

	if limit <= 0 || limit > len(m.audit) {
		limit = len(m.audit)
	}

	// newest first
	entries := make([]*models.AuditEntry, 0, limit)
	for i := len(m.audit) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, m.audit[i])
	}
	return entries, nil
}

func (m *MemoryStore) CountOutcomesSince(since time.Time) (map[string]int64, error) {
	m.auditMu.RLock()
	defer m.auditMu.RUnlock()

	counts := make(map[string]int64)
	for _, entry := range m.audit {
		if entry.Timestamp.Before(since) {
			continue
		}
		counts[entry.Outcome]++
	}
	return counts, nil
}

func (m *MemoryStore) DeleteAuditEntriesBefore(cutoff time.Time) (int64, error) {
	m.auditMu.Lock()
	defer m.auditMu.Unlock()

	kept := m.audit[:0]
	var removed int64
	for _, entry := range m.audit {
		if entry.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	m.audit = kept
	return removed, nil
}

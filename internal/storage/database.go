package storage

import (
	"time"

	"gorm.io/gorm"

	"github.com/duderstadt-center/button-backend/internal/models"
)

// DatabaseStore implements Store on top of PostgreSQL via GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Device operations

func (d *DatabaseStore) CreateDevice(reg *models.DeviceRegistration) (*models.Device, error) {
	device := &models.Device{
		DeviceID:         reg.DeviceID,
		Location:         reg.Location,
		ChannelID:        reg.ChannelID,
		RateLimitSeconds: reg.RateLimitSeconds,
		MessageText:      reg.MessageText,
	}
	if err := d.db.Create(device).Error; err != nil {
		return nil, err
	}
	return device, nil
}

func (d *DatabaseStore) GetDeviceByDeviceID(deviceID string) (*models.Device, error) {
	var device models.Device
	if err := d.db.Where("device_id = ?", deviceID).First(&device).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

func (d *DatabaseStore) GetAllDevices() ([]*models.Device, error) {
	var devices []*models.Device
	if err := d.db.Order("device_id").Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (d *DatabaseStore) UpdateDevice(device *models.Device) error {
	return d.db.Save(device).Error
}

// Audit operations

func (d *DatabaseStore) CreateAuditEntry(entry *models.AuditEntry) (*models.AuditEntry, error) {
	if err := d.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (d *DatabaseStore) GetRecentAuditEntries(limit int) ([]*models.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []*models.AuditEntry
	if err := d.db.Order("timestamp DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (d *DatabaseStore) CountOutcomesSince(since time.Time) (map[string]int64, error) {
	type outcomeCount struct {
		Outcome string
		Count   int64
	}

	var rows []outcomeCount
	err := d.db.Model(&models.AuditEntry{}).
		Select("outcome, COUNT(*) as count").
		Where("timestamp >= ?", since).
		Group("outcome").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Outcome] = row.Count
	}
	return counts, nil
}

func (d *DatabaseStore) DeleteAuditEntriesBefore(cutoff time.Time) (int64, error) {
	result := d.db.Where("timestamp < ?", cutoff).Delete(&models.AuditEntry{})
	return result.RowsAffected, result.Error
}

package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/duderstadt-center/button-backend/internal/models"
	"github.com/duderstadt-center/button-backend/internal/services"
	"github.com/duderstadt-center/button-backend/internal/storage"
)

// Retention horizon for audit rows
const auditRetentionDays = 90

// MaintenanceJob handles scheduled housekeeping
type MaintenanceJob struct {
	store     storage.Store
	gateway   services.NotificationGateway
	isRunning bool
}

// NewMaintenanceJob creates a new maintenance job scheduler
func NewMaintenanceJob(store storage.Store, gateway services.NotificationGateway) *MaintenanceJob {
	return &MaintenanceJob{
		store:     store,
		gateway:   gateway,
		isRunning: false,
	}
}

// Start begins all scheduled maintenance jobs
func (m *MaintenanceJob) Start() {
	if m.isRunning {
		log.Println("Maintenance jobs already running")
		return
	}

	m.isRunning = true
	log.Println("Starting scheduled maintenance jobs...")

	go m.scheduleDailySummary()
	go m.scheduleAuditRetention()

	log.Println("All maintenance jobs started successfully")
}

// Stop halts all scheduled jobs
func (m *MaintenanceJob) Stop() {
	m.isRunning = false
	log.Println("Stopping scheduled maintenance jobs...")
}

// DAILY SUMMARY - Runs every day at 6 PM
func (m *MaintenanceJob) scheduleDailySummary() {
	for m.isRunning {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())
		if !nextRun.After(now) {
			nextRun = nextRun.AddDate(0, 0, 1)
		}
		duration := nextRun.Sub(now)

		log.Printf("Next daily summary scheduled in %v", duration)
		time.Sleep(duration)

		if !m.isRunning {
			break
		}

		m.sendDailySummaries()
	}
}

// sendDailySummaries posts yesterday's outcome counts to each device channel
func (m *MaintenanceJob) sendDailySummaries() {
	log.Println("Sending daily usage summaries...")

	counts, err := m.store.CountOutcomesSince(time.Now().Add(-24 * time.Hour))
	if err != nil {
		log.Printf("Error counting outcomes for daily summary: %v", err)
		return
	}

	total := counts[models.OutcomeResolved] + counts[models.OutcomeReplied] + counts[models.OutcomeTimedOut]
	if total == 0 {
		log.Println("No help requests in the last 24h, skipping summary")
		return
	}

	summary := fmt.Sprintf(
		"Help button daily summary:\n• %d requests\n• %d resolved\n• %d replied\n• %d timed out",
		total, counts[models.OutcomeResolved], counts[models.OutcomeReplied], counts[models.OutcomeTimedOut])

	devices, err := m.store.GetAllDevices()
	if err != nil {
		log.Printf("Error getting devices for daily summary: %v", err)
		return
	}

	sentCount := 0
	for _, device := range devices {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		_, err := m.gateway.PostHelpRequest(ctx, summary, device.ChannelID, device.DeviceID)
		cancel()
		if err != nil {
			log.Printf("Error sending daily summary for device %s: %v", device.DeviceID, err)
			continue
		}
		sentCount++
	}

	log.Printf("✅ Daily summaries sent to %d channels", sentCount)
}

// AUDIT RETENTION - Runs once a day
func (m *MaintenanceJob) scheduleAuditRetention() {
	for m.isRunning {
		time.Sleep(24 * time.Hour)

		if !m.isRunning {
			break
		}

		m.sweepAuditLog()
	}
}

// sweepAuditLog removes audit rows past the retention horizon
func (m *MaintenanceJob) sweepAuditLog() {
	cutoff := time.Now().AddDate(0, 0, -auditRetentionDays)

	removed, err := m.store.DeleteAuditEntriesBefore(cutoff)
	if err != nil {
		log.Printf("Error sweeping audit log: %v", err)
		return
	}

	if removed > 0 {
		log.Printf("🧹 Removed %d audit rows older than %d days", removed, auditRetentionDays)
	}
}

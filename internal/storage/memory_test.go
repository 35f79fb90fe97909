package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duderstadt-center/button-backend/internal/models"
)

func TestMemoryStoreDevices(t *testing.T) {
	store := NewMemoryStore()

	device, err := store.CreateDevice(&models.DeviceRegistration{
		DeviceID:         "dude-1",
		Location:         "Fishbowl",
		ChannelID:        "C05T5H5GK54",
		RateLimitSeconds: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, "dude-1", device.DeviceID)

	_, err = store.CreateDevice(&models.DeviceRegistration{DeviceID: "dude-1"})
	assert.Error(t, err, "duplicate device id rejected")

	found, err := store.GetDeviceByDeviceID("dude-1")
	require.NoError(t, err)
	assert.Equal(t, "Fishbowl", found.Location)

	_, err = store.GetDeviceByDeviceID("missing")
	assert.Error(t, err)

	found.Location = "Studio B"
	require.NoError(t, store.UpdateDevice(found))
	updated, err := store.GetDeviceByDeviceID("dude-1")
	require.NoError(t, err)
	assert.Equal(t, "Studio B", updated.Location)
}

func TestMemoryStoreAuditLog(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	outcomes := []string{models.OutcomeTimedOut, models.OutcomeReplied, models.OutcomeResolved}
	for i, outcome := range outcomes {
		_, err := store.CreateAuditEntry(&models.AuditEntry{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Location:  "Fishbowl",
			Outcome:   outcome,
		})
		require.NoError(t, err)
	}

	recent, err := store.GetRecentAuditEntries(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, models.OutcomeResolved, recent[0].Outcome, "newest first")
	assert.Equal(t, models.OutcomeReplied, recent[1].Outcome)

	counts, err := store.CountOutcomesSince(base.Add(30 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.OutcomeReplied])
	assert.Equal(t, int64(1), counts[models.OutcomeResolved])
	assert.Zero(t, counts[models.OutcomeTimedOut])

	removed, err := store.DeleteAuditEntriesBefore(base.Add(90 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	remaining, err := store.GetRecentAuditEntries(0)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, models.OutcomeResolved, remaining[0].Outcome)
}

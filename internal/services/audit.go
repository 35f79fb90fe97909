package services

import (
	"time"

	"github.com/duderstadt-center/button-backend/internal/models"
	"github.com/duderstadt-center/button-backend/internal/storage"
)

// AuditSink records session outcomes to an append-only log. Callers fire
// Append from their own goroutines; a failed append never affects session
// state.
type AuditSink interface {
	Append(timestamp time.Time, location, outcome string) error
}

// StoreAuditSink writes outcome rows to the configured store
type StoreAuditSink struct {
	store storage.Store
}

// NewStoreAuditSink creates a store-backed audit sink
func NewStoreAuditSink(store storage.Store) *StoreAuditSink {
	return &StoreAuditSink{store: store}
}

// Append writes one [timestamp, location, outcome] row
func (s *StoreAuditSink) Append(timestamp time.Time, location, outcome string) error {
	_, err := s.store.CreateAuditEntry(&models.AuditEntry{
		Timestamp: timestamp,
		Location:  location,
		Outcome:   outcome,
	})
	return err
}

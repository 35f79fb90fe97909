package models

import (
	"time"

	"gorm.io/gorm"
)

// Outcome values for finished sessions
const (
	OutcomeResolved = "Resolved"
	OutcomeReplied  = "Replied"
	OutcomeTimedOut = "Timed Out"
)

// AuditEntry is one append-only outcome row, mirroring the
// [timestamp, location, outcome] rows the logging spreadsheet used to hold.
type AuditEntry struct {
	gorm.Model
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	Location  string    `json:"location"`
	Outcome   string    `gorm:"index" json:"outcome"`
}

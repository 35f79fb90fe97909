package services

import (
	"sync"
	"time"
)

// Display screens. Rendering is the kiosk client's problem; the backend only
// publishes which screen should be showing and with what data.
const (
	ScreenIdle        = "idle"
	ScreenRateLimited = "rate_limited"
	ScreenWaiting     = "waiting"
	ScreenReply       = "reply"
)

// Display receives status changes from the session lifecycle
type Display interface {
	ShowIdle()
	ShowRateLimited(deviceID string)
	ShowDispatched(remainingSeconds int)
	ShowCountdown(remainingSeconds int)
	ShowReply(author, text string, remainingSeconds int)
}

// DisplaySnapshot is the current display state served to the kiosk client
type DisplaySnapshot struct {
	Screen           string    `json:"screen"`
	RemainingSeconds int       `json:"remaining_seconds"`
	ReplyAuthor      string    `json:"reply_author,omitempty"`
	ReplyText        string    `json:"reply_text,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ScreenDisplay implements Display as a mutex-guarded snapshot polled by the
// kiosk over HTTP
type ScreenDisplay struct {
	mu       sync.RWMutex
	snapshot DisplaySnapshot
}

// NewScreenDisplay creates a display showing the idle screen
func NewScreenDisplay() *ScreenDisplay {
	return &ScreenDisplay{
		snapshot: DisplaySnapshot{Screen: ScreenIdle, UpdatedAt: time.Now()},
	}
}

// Snapshot returns the current display state
func (d *ScreenDisplay) Snapshot() DisplaySnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

func (d *ScreenDisplay) ShowIdle() {
	d.set(DisplaySnapshot{Screen: ScreenIdle})
}

func (d *ScreenDisplay) ShowRateLimited(deviceID string) {
	d.set(DisplaySnapshot{Screen: ScreenRateLimited})
}

func (d *ScreenDisplay) ShowDispatched(remainingSeconds int) {
	d.set(DisplaySnapshot{Screen: ScreenWaiting, RemainingSeconds: remainingSeconds})
}

func (d *ScreenDisplay) ShowCountdown(remainingSeconds int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// a countdown tick only updates the timer; it must not knock a shown
	// reply off the screen
	d.snapshot.RemainingSeconds = remainingSeconds
	d.snapshot.UpdatedAt = time.Now()
	if d.snapshot.Screen == ScreenIdle || d.snapshot.Screen == ScreenRateLimited {
		d.snapshot.Screen = ScreenWaiting
	}
}

func (d *ScreenDisplay) ShowReply(author, text string, remainingSeconds int) {
	d.set(DisplaySnapshot{
		Screen:           ScreenReply,
		RemainingSeconds: remainingSeconds,
		ReplyAuthor:      author,
		ReplyText:        text,
	})
}

func (d *ScreenDisplay) set(snapshot DisplaySnapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	snapshot.UpdatedAt = time.Now()
	d.snapshot = snapshot
}

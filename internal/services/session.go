package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/duderstadt-center/button-backend/internal/models"
)

// InteractionSession is one outstanding help request, from dispatch until
// a terminal outcome. All fields after creation are mutated only by the
// countdown driver, under the session manager's lock.
type InteractionSession struct {
	SessionID string
	DeviceID  string
	Location  string
	MessageID string
	ChannelID string

	State              models.SessionState
	BaseTimeoutSeconds int
	RemainingSeconds   int
	ReplyReceived      bool
	CreatedAt          time.Time

	// cancel stops the session's reply consumer; observed at the top of its
	// next poll iteration
	cancel context.CancelFunc
}

// NewInteractionSession builds a pending session for a freshly posted message
func NewInteractionSession(device *models.Device, posted *PostedMessage, baseTimeoutSeconds int) *InteractionSession {
	return &InteractionSession{
		SessionID:          uuid.New().String(),
		DeviceID:           device.DeviceID,
		Location:           device.Location,
		MessageID:          posted.MessageID,
		ChannelID:          posted.ChannelID,
		State:              models.SessionPending,
		BaseTimeoutSeconds: baseTimeoutSeconds,
		RemainingSeconds:   baseTimeoutSeconds,
		CreatedAt:          time.Now(),
	}
}

// View returns an API snapshot of the session. Callers must hold the
// manager's lock or accept a possibly stale copy.
func (s *InteractionSession) View() models.SessionView {
	return models.SessionView{
		SessionID:        s.SessionID,
		DeviceID:         s.DeviceID,
		MessageID:        s.MessageID,
		ChannelID:        s.ChannelID,
		State:            s.State,
		RemainingSeconds: s.RemainingSeconds,
		ReplyReceived:    s.ReplyReceived,
		CreatedAt:        s.CreatedAt,
	}
}

// SessionManager owns the active-session registry and the shared reply slot.
// One mutex guards both: the consumer writes the slot, the countdown driver
// reads-and-clears it and mutates session state in the same critical section.
type SessionManager struct {
	mu     sync.Mutex
	active map[string]*InteractionSession // keyed by device id
	slot   *models.Reply
}

// NewSessionManager creates an empty session manager
func NewSessionManager() *SessionManager {
	return &SessionManager{
		active: make(map[string]*InteractionSession),
	}
}

// Register adds a session as the single active session for its device
func (sm *SessionManager) Register(session *InteractionSession) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if existing, ok := sm.active[session.DeviceID]; ok {
		return fmt.Errorf("device %s already has active session %s", session.DeviceID, existing.SessionID)
	}
	sm.active[session.DeviceID] = session
	return nil
}

// HasActive reports whether the device has a non-terminal session
func (sm *SessionManager) HasActive(deviceID string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	_, ok := sm.active[deviceID]
	return ok
}

// ActiveSessions returns snapshots of every active session
func (sm *SessionManager) ActiveSessions() []models.SessionView {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	views := make([]models.SessionView, 0, len(sm.active))
	for _, session := range sm.active {
		views = append(views, session.View())
	}
	return views
}

// OfferReply publishes a decoded reply into the shared slot. The slot holds
// at most one unconsumed reply; an unread older reply is overwritten
// (last-write-wins, matching the upstream queue contract).
func (sm *SessionManager) OfferReply(reply *models.Reply) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.slot != nil {
		log.Printf("⚠️  Reply slot overwritten before consumption (old ts %s, new ts %s)",
			sm.slot.MessageTS, reply.MessageTS)
	}
	sm.slot = reply
}

// PendingReply returns a copy of the unconsumed reply currently in the slot,
// or nil. Diagnostic only; it does not consume the slot.
func (sm *SessionManager) PendingReply() *models.Reply {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.slot == nil {
		return nil
	}
	copied := *sm.slot
	return &copied
}

// takeSlotLocked reads and clears the reply slot. Callers must hold sm.mu.
func (sm *SessionManager) takeSlotLocked() *models.Reply {
	reply := sm.slot
	sm.slot = nil
	return reply
}

// removeLocked drops a session from the registry. Callers must hold sm.mu;
// pairing removal with the terminal state change under one lock is what makes
// finalization exactly-once.
func (sm *SessionManager) removeLocked(session *InteractionSession) {
	if current, ok := sm.active[session.DeviceID]; ok && current.SessionID == session.SessionID {
		delete(sm.active, session.DeviceID)
	}
}

package services

import (
	"context"
	"log"
	"time"

	"github.com/duderstadt-center/button-backend/internal/models"
)

// Countdown drives one session at a tick per second: decrement the timer,
// publish it to the display, evaluate the reply slot, and finalize at zero.
// All session mutation happens inside tick, under the manager's lock.
type Countdown struct {
	manager *SessionManager
	session *InteractionSession
	gateway NotificationGateway
	audit   AuditSink
	display Display

	interval time.Duration
	now      func() time.Time
}

// NewCountdown creates the countdown driver for a registered session
func NewCountdown(manager *SessionManager, session *InteractionSession,
	gateway NotificationGateway, audit AuditSink, display Display) *Countdown {
	return &Countdown{
		manager:  manager,
		session:  session,
		gateway:  gateway,
		audit:    audit,
		display:  display,
		interval: time.Second,
		now:      time.Now,
	}
}

// Run ticks until the session reaches a terminal state or the context is
// cancelled
func (c *Countdown) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.tick() {
				return
			}
		}
	}
}

// tick advances the session by one second and returns true once the session
// is finalized. Gateway and audit calls are fired outside the critical
// section; nothing network-bound runs under the lock.
func (c *Countdown) tick() bool {
	s := c.session

	c.manager.mu.Lock()

	if s.State.Terminal() {
		c.manager.mu.Unlock()
		return true
	}

	s.RemainingSeconds--
	reply := c.manager.takeSlotLocked()

	// replies for a different (stale) session are dropped; the slot was
	// already cleared above
	if reply != nil && reply.MessageTS != s.MessageID {
		log.Printf("Ignoring reply for unknown message %s", reply.MessageTS)
		reply = nil
	}

	if reply != nil {
		if reply.IsResolving() {
			return c.finalizeLocked(models.OutcomeResolved, false)
		}
		c.applyReplyLocked(reply)
		return false
	}

	if s.RemainingSeconds <= 0 {
		outcome := models.OutcomeTimedOut
		if s.ReplyReceived {
			outcome = models.OutcomeReplied
		}
		return c.finalizeLocked(outcome, !s.ReplyReceived)
	}

	remaining := s.RemainingSeconds
	c.manager.mu.Unlock()

	c.display.ShowCountdown(remaining)
	return false
}

// applyReplyLocked handles a non-resolving reply: the session moves to
// Replied, the sticky reply flag is set, and the countdown is raised to the
// floor of base/3 if it has run below it (an already-longer countdown is
// never truncated). Called and returns with the manager lock held until the
// state change is done; the gateway notification is fire-and-forget.
func (c *Countdown) applyReplyLocked(reply *models.Reply) {
	s := c.session

	s.State = models.SessionReplied
	s.ReplyReceived = true

	if floor := s.BaseTimeoutSeconds / 3; s.RemainingSeconds < floor {
		s.RemainingSeconds = floor
	}

	remaining := s.RemainingSeconds
	messageID, channelID := s.MessageID, s.ChannelID
	author, text := reply.Author, reply.Text
	c.manager.mu.Unlock()

	log.Printf("💬 Displaying reply from %s, countdown at %ds", author, remaining)
	c.display.ShowReply(author, text, remaining)

	go func() {
		if err := c.gateway.MarkReplied(context.Background(), messageID, channelID); err != nil {
			log.Printf("ERROR: failed to mark message %s replied: %v", messageID, err)
		}
	}()
}

// finalizeLocked ends the session exactly once: the terminal state change and
// the registry removal happen under the same lock acquisition, so a second
// finalization can never observe the session as active. Must be called with
// the manager lock held; releases it.
func (c *Countdown) finalizeLocked(outcome string, notifyTimeout bool) bool {
	s := c.session

	switch outcome {
	case models.OutcomeResolved:
		s.State = models.SessionResolved
	default:
		s.State = models.SessionTimedOut
	}
	c.manager.removeLocked(s)

	location := s.Location
	messageID, channelID := s.MessageID, s.ChannelID
	c.manager.mu.Unlock()

	log.Printf("Session %s for device %s finished: %s", s.SessionID, s.DeviceID, outcome)

	// stop the reply consumer; it notices at its next poll iteration
	if s.cancel != nil {
		s.cancel()
	}

	now := c.now()
	go func() {
		if err := c.audit.Append(now, location, outcome); err != nil {
			log.Printf("ERROR: failed to append audit row: %v", err)
		}
	}()

	if notifyTimeout {
		go func() {
			if err := c.gateway.MarkTimedOut(context.Background(), messageID, channelID); err != nil {
				log.Printf("ERROR: failed to mark message %s timed out: %v", messageID, err)
			}
		}()
	}

	c.display.ShowIdle()
	return true
}

package services

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Press outcomes
const (
	PressDispatched  = "dispatched"
	PressRateLimited = "rate_limited"
)

// Default session timing
const (
	DefaultBaseTimeoutSeconds = 180
	DefaultPollWait           = 3 * time.Second
)

// footer appended to every dispatched help message
const replyInstructions = "\n*To respond, reply to this message in a thread within 3 minutes*\n*To resolve, react with :white_check_mark: or :+1:*"

// PressResult is the synchronous answer to a button press
type PressResult struct {
	Outcome   string `json:"outcome"`
	SessionID string `json:"session_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
}

// Dispatcher is the press entry point: it gates a press through the
// rate limiter, posts through the gateway, and starts exactly one countdown
// driver and one reply consumer for the new session.
type Dispatcher struct {
	devices *DeviceConfigService
	limiter *RateLimiter
	gateway NotificationGateway
	queue   ReplyQueue
	manager *SessionManager
	audit   AuditSink
	display Display

	baseTimeoutSeconds int
	pollWait           time.Duration
	tickInterval       time.Duration
	now                func() time.Time
}

// NewDispatcher wires the press path
func NewDispatcher(devices *DeviceConfigService, limiter *RateLimiter,
	gateway NotificationGateway, queue ReplyQueue, manager *SessionManager,
	audit AuditSink, display Display) *Dispatcher {
	return &Dispatcher{
		devices:            devices,
		limiter:            limiter,
		gateway:            gateway,
		queue:              queue,
		manager:            manager,
		audit:              audit,
		display:            display,
		baseTimeoutSeconds: DefaultBaseTimeoutSeconds,
		pollWait:           DefaultPollWait,
		tickInterval:       time.Second,
		now:                time.Now,
	}
}

// Press handles one button press. An unknown device or a failed gateway post
// returns an error and creates no session; a gateway failure still leaves the
// rate-limit window consumed so a failing backend isn't hammered by retries.
func (d *Dispatcher) Press(ctx context.Context, deviceID string) (*PressResult, error) {
	log.Printf("Interaction received for device %s, handling", deviceID)

	device, err := d.devices.Lookup(deviceID)
	if err != nil {
		return nil, err
	}

	// the rate-limit window normally exceeds the session lifetime, but the
	// session-existence check is the authoritative single-session guard
	if d.manager.HasActive(deviceID) {
		log.Printf("Device %s already has an active session. Message not sent.", deviceID)
		d.display.ShowRateLimited(deviceID)
		return &PressResult{Outcome: PressRateLimited}, nil
	}

	if !d.limiter.Accept(deviceID, d.now(), device.RateLimitSeconds) {
		log.Println("Rate limit applied. Message not sent.")
		d.display.ShowRateLimited(deviceID)
		return &PressResult{Outcome: PressRateLimited}, nil
	}

	message := device.HelpMessage() + replyInstructions

	// synchronous: the caller waits for the post so it can show the result
	posted, err := d.gateway.PostHelpRequest(ctx, message, device.ChannelID, deviceID)
	if err != nil {
		return nil, fmt.Errorf("gateway post failed: %w", err)
	}

	session := NewInteractionSession(device, posted, d.baseTimeoutSeconds)

	runCtx, cancel := context.WithCancel(context.Background())
	session.cancel = cancel

	if err := d.manager.Register(session); err != nil {
		cancel()
		return nil, err
	}

	consumer := NewReplyConsumer(d.queue, d.manager, deviceID, d.pollWait)
	go consumer.Run(runCtx)

	countdown := NewCountdown(d.manager, session, d.gateway, d.audit, d.display)
	countdown.interval = d.tickInterval
	go countdown.Run(runCtx)

	d.display.ShowDispatched(d.baseTimeoutSeconds)
	log.Printf("✅ Session %s dispatched for device %s (message %s)",
		session.SessionID, deviceID, posted.MessageID)

	return &PressResult{
		Outcome:   PressDispatched,
		SessionID: session.SessionID,
		MessageID: posted.MessageID,
		ChannelID: posted.ChannelID,
	}, nil
}

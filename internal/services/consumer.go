package services

import (
	"context"
	"log"
	"time"

	"github.com/duderstadt-center/button-backend/internal/models"
)

// ReplyConsumer pulls inbound messages off the reply queue one at a time and
// publishes decoded replies into the session manager's slot. It never touches
// session state directly.
type ReplyConsumer struct {
	queue    ReplyQueue
	manager  *SessionManager
	deviceID string
	wait     time.Duration
}

// NewReplyConsumer creates a consumer for one session's lifetime
func NewReplyConsumer(queue ReplyQueue, manager *SessionManager, deviceID string, wait time.Duration) *ReplyConsumer {
	return &ReplyConsumer{
		queue:    queue,
		manager:  manager,
		deviceID: deviceID,
		wait:     wait,
	}
}

// Run polls until the context is cancelled. Cancellation is observed at the
// top of each iteration, so stop latency is bounded by one poll wait. A single
// failed receive or decode is logged and the loop continues.
func (rc *ReplyConsumer) Run(ctx context.Context) {
	log.Printf("Starting reply poll loop for device %s", rc.deviceID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Stopping reply poll loop for device %s", rc.deviceID)
			return
		default:
		}

		message, err := rc.queue.ReceiveOne(ctx, rc.wait)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("Stopping reply poll loop for device %s", rc.deviceID)
				return
			}
			log.Printf("ERROR: reply receive failed: %v", err)
			// back off for one poll wait so a broken transport doesn't spin
			select {
			case <-ctx.Done():
			case <-time.After(rc.wait):
			}
			continue
		}
		if message == nil {
			continue
		}

		reply, ok, err := models.ParseReplyMessage(message.Body)
		switch {
		case err != nil:
			log.Printf("ERROR: dropping undecodable queue message: %v", err)
		case ok:
			log.Printf("💬 Reply received for message %s from %s", reply.MessageTS, reply.Author)
			rc.manager.OfferReply(reply)
		}

		// always delete after processing, reply or not, so redeliveries
		// don't pile up
		if err := rc.queue.Ack(ctx, message.ReceiptHandle); err != nil {
			log.Printf("ERROR: failed to ack queue message: %v", err)
		}
	}
}

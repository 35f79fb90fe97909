package services

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// fakeGateway records gateway calls in memory
type fakeGateway struct {
	mu       sync.Mutex
	postErr  error
	posted   []string // message bodies
	replied  []string // message ids
	timedOut []string // message ids
}

func (g *fakeGateway) PostHelpRequest(ctx context.Context, message, channelID, deviceID string) (*PostedMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.postErr != nil {
		return nil, g.postErr
	}
	g.posted = append(g.posted, message)
	return &PostedMessage{
		MessageID: fmt.Sprintf("1700000000.%06d", len(g.posted)),
		ChannelID: channelID,
	}, nil
}

func (g *fakeGateway) MarkTimedOut(ctx context.Context, messageID, channelID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timedOut = append(g.timedOut, messageID)
	return nil
}

func (g *fakeGateway) MarkReplied(ctx context.Context, messageID, channelID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replied = append(g.replied, messageID)
	return nil
}

func (g *fakeGateway) repliedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.replied)
}

func (g *fakeGateway) timedOutCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.timedOut)
}

// fakeAudit records appended outcome rows
type fakeAudit struct {
	mu   sync.Mutex
	rows []auditRow
}

type auditRow struct {
	timestamp time.Time
	location  string
	outcome   string
}

func (a *fakeAudit) Append(timestamp time.Time, location, outcome string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rows = append(a.rows, auditRow{timestamp, location, outcome})
	return nil
}

func (a *fakeAudit) outcomes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	outcomes := make([]string, len(a.rows))
	for i, row := range a.rows {
		outcomes[i] = row.outcome
	}
	return outcomes
}

// scriptedQueue serves a fixed sequence of messages, then empty receives
type scriptedQueue struct {
	mu       sync.Mutex
	messages []QueueMessage
	recvErrs []error // returned (and consumed) before any messages
	acks     []string
}

func (q *scriptedQueue) ReceiveOne(ctx context.Context, wait time.Duration) (*QueueMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.recvErrs) > 0 {
		err := q.recvErrs[0]
		q.recvErrs = q.recvErrs[1:]
		return nil, err
	}
	if len(q.messages) == 0 {
		return nil, nil
	}
	message := q.messages[0]
	q.messages = q.messages[1:]
	return &message, nil
}

func (q *scriptedQueue) Ack(ctx context.Context, receiptHandle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acks = append(q.acks, receiptHandle)
	return nil
}

func (q *scriptedQueue) ackedHandles() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.acks...)
}

func (q *scriptedQueue) drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages) == 0 && len(q.recvErrs) == 0
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// QueueMessage is one raw message pulled off the reply queue. The body is the
// wire-format envelope; the receipt handle acknowledges (deletes) it.
type QueueMessage struct {
	Body          string `json:"body"`
	ReceiptHandle string `json:"receipt_handle"`
}

// ReplyQueue is the inbound transport the consumer pulls replies from.
// ReceiveOne long-polls for at most one message and returns nil when the wait
// elapses with nothing queued. Delivery is at-least-once with no ordering.
type ReplyQueue interface {
	ReceiveOne(ctx context.Context, wait time.Duration) (*QueueMessage, error)
	Ack(ctx context.Context, receiptHandle string) error
}

// HTTPReplyQueue talks to the reply queue's HTTP API: long-poll receives on
// GET /messages, acknowledgements on DELETE /messages/{handle}.
type HTTPReplyQueue struct {
	queueURL string
	client   *http.Client
}

// NewHTTPReplyQueue creates a queue client from REPLY_QUEUE_URL
func NewHTTPReplyQueue() (*HTTPReplyQueue, error) {
	queueURL := os.Getenv("REPLY_QUEUE_URL")
	if queueURL == "" {
		return nil, fmt.Errorf("missing REPLY_QUEUE_URL in environment variables")
	}

	return &HTTPReplyQueue{
		queueURL: queueURL,
		client:   &http.Client{},
	}, nil
}

type receiveResponse struct {
	Messages []QueueMessage `json:"messages"`
}

// ReceiveOne long-polls the queue for a single message
func (q *HTTPReplyQueue) ReceiveOne(ctx context.Context, wait time.Duration) (*QueueMessage, error) {
	// the request deadline must outlive the server-side long poll
	ctx, cancel := context.WithTimeout(ctx, wait+10*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/messages?max=1&wait=%d", q.queueURL, int(wait.Seconds()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build receive request: %w", err)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("queue receive failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("queue returned status %d: %s", resp.StatusCode, string(raw))
	}

	var decoded receiveResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode queue response: %w", err)
	}

	if len(decoded.Messages) == 0 {
		return nil, nil
	}

	message := decoded.Messages[0]
	return &message, nil
}

// Ack deletes a processed message from the queue
func (q *HTTPReplyQueue) Ack(ctx context.Context, receiptHandle string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/messages/%s", q.queueURL, url.PathEscape(receiptHandle))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build ack request: %w", err)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("queue ack failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("queue ack returned status %d", resp.StatusCode)
	}
	return nil
}

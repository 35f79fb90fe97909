package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// PostedMessage identifies a message the gateway posted on our behalf.
// MessageID is the correlation key replies are matched against.
type PostedMessage struct {
	MessageID string
	ChannelID string
}

// NotificationGateway is the messaging backend the button posts through.
// PostHelpRequest is synchronous; the mark calls are best-effort and callers
// fire them from their own goroutines.
type NotificationGateway interface {
	PostHelpRequest(ctx context.Context, message, channelID, deviceID string) (*PostedMessage, error)
	MarkTimedOut(ctx context.Context, messageID, channelID string) error
	MarkReplied(ctx context.Context, messageID, channelID string) error
}

// RelayGateway posts through the Slack relay function over HTTP. The relay
// owns the Slack credentials; we just invoke it with typed payloads.
type RelayGateway struct {
	functionURL string
	client      *http.Client
}

// NewRelayGateway creates a relay gateway from RELAY_FUNCTION_URL
func NewRelayGateway() (*RelayGateway, error) {
	functionURL := os.Getenv("RELAY_FUNCTION_URL")
	if functionURL == "" {
		return nil, fmt.Errorf("missing RELAY_FUNCTION_URL in environment variables")
	}

	return &RelayGateway{
		functionURL: functionURL,
		client:      &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type relayRequest struct {
	Body relayBody `json:"body"`
}

type relayBody struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	ChannelID string `json:"channel_id"`
	DeviceID  string `json:"device_id,omitempty"`
}

type relayResponse struct {
	PostedMessageID      string `json:"posted_message_id"`
	PostedMessageChannel string `json:"posted_message_channel"`
}

// PostHelpRequest posts the help message and returns the posted message identity
func (g *RelayGateway) PostHelpRequest(ctx context.Context, message, channelID, deviceID string) (*PostedMessage, error) {
	log.Printf("📤 Posting help request for device %s to channel %s", deviceID, channelID)

	resp, err := g.invoke(ctx, relayBody{
		Type:      "post",
		Message:   message,
		ChannelID: channelID,
		DeviceID:  deviceID,
	})
	if err != nil {
		return nil, err
	}

	if resp.PostedMessageID == "" {
		return nil, fmt.Errorf("relay response missing posted_message_id")
	}

	log.Printf("✅ Help request posted, message id %s", resp.PostedMessageID)
	return &PostedMessage{
		MessageID: resp.PostedMessageID,
		ChannelID: resp.PostedMessageChannel,
	}, nil
}

// MarkTimedOut edits the posted message to show the request timed out
func (g *RelayGateway) MarkTimedOut(ctx context.Context, messageID, channelID string) error {
	log.Printf("Marking message %s as timed out", messageID)

	_, err := g.invoke(ctx, relayBody{
		Type:      "message_timeout",
		MessageID: messageID,
		ChannelID: channelID,
	})
	return err
}

// MarkReplied edits the posted message to show the request was replied to
func (g *RelayGateway) MarkReplied(ctx context.Context, messageID, channelID string) error {
	log.Printf("Marking message %s as replied", messageID)

	_, err := g.invoke(ctx, relayBody{
		Type:      "message_replied",
		MessageID: messageID,
		ChannelID: channelID,
	})
	return err
}

func (g *RelayGateway) invoke(ctx context.Context, body relayBody) (*relayResponse, error) {
	payload, err := json.Marshal(relayRequest{Body: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal relay payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.functionURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay invoke failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read relay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("relay returned status %d: %s", resp.StatusCode, string(raw))
	}

	var decoded relayResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode relay response: %w", err)
		}
	}
	return &decoded, nil
}

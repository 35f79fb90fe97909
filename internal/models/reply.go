package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Resolution markers recognized in reply text. A reply containing either one
// closes the session without a timeout/replied notification.
const (
	ResolutionMarkerCheck    = "white_check_mark"
	ResolutionMarkerThumbsUp = "+1"
)

// Reply is one decoded inbound reply from the messaging side.
// MessageTS is the correlation key of the original posted message.
type Reply struct {
	MessageTS string `json:"ts"`
	Author    string `json:"reply_author"`
	Text      string `json:"reply_text"`
}

// IsResolving reports whether the reply text carries a resolution marker.
// Matching is substring and case-sensitive.
func (r *Reply) IsResolving() bool {
	return strings.Contains(r.Text, ResolutionMarkerCheck) ||
		strings.Contains(r.Text, ResolutionMarkerThumbsUp)
}

// queueEnvelope is the outer notification wrapper on queue message bodies.
// The inner Message field is itself a JSON document.
type queueEnvelope struct {
	Message string `json:"Message"`
}

// ParseReplyMessage decodes a raw queue message body. The body is JSON whose
// Message field is another JSON string holding the reply fields.
// A decoded event without reply text is returned with ok=false so callers can
// ack and skip it; decode failures return an error.
func ParseReplyMessage(body string) (*Reply, bool, error) {
	var envelope queueEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, false, fmt.Errorf("failed to decode queue envelope: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(envelope.Message), &fields); err != nil {
		return nil, false, fmt.Errorf("failed to decode queue message: %w", err)
	}

	// events without a reply_text field are not replies (e.g. reaction or
	// housekeeping events) and are skipped after acking
	if _, hasReply := fields["reply_text"]; !hasReply {
		return nil, false, nil
	}

	var reply Reply
	if err := json.Unmarshal([]byte(envelope.Message), &reply); err != nil {
		return nil, false, fmt.Errorf("failed to decode reply fields: %w", err)
	}

	return &reply, true, nil
}

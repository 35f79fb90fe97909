package models

import "time"

// SessionState tracks where an interaction session is in its lifecycle
type SessionState string

const (
	SessionPending  SessionState = "pending"
	SessionReplied  SessionState = "replied"
	SessionResolved SessionState = "resolved"
	SessionTimedOut SessionState = "timed_out"
)

// Terminal reports whether the state ends the session
func (s SessionState) Terminal() bool {
	return s == SessionResolved || s == SessionTimedOut
}

// SessionView is the JSON shape returned by the sessions API
type SessionView struct {
	SessionID        string       `json:"session_id"`
	DeviceID         string       `json:"device_id"`
	MessageID        string       `json:"message_id"`
	ChannelID        string       `json:"channel_id"`
	State            SessionState `json:"state"`
	RemainingSeconds int          `json:"remaining_seconds"`
	ReplyReceived    bool         `json:"reply_received"`
	CreatedAt        time.Time    `json:"created_at"`
}

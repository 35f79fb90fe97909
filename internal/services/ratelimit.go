package services

import (
	"sync"
	"time"
)

// RateLimiter tracks the last accepted dispatch per device and rejects
// presses that arrive inside the device's rate-limit window.
type RateLimiter struct {
	mu           sync.Mutex
	lastDispatch map[string]time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		lastDispatch: make(map[string]time.Time),
	}
}

// Accept decides whether a press at the given time may dispatch. On accept it
// records the new last-dispatch time; on reject it leaves state untouched.
// A limit of 0 seconds always accepts.
func (rl *RateLimiter) Accept(deviceID string, now time.Time, limitSeconds int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if last, ok := rl.lastDispatch[deviceID]; ok && limitSeconds > 0 {
		if now.Sub(last) < time.Duration(limitSeconds)*time.Second {
			return false
		}
	}

	rl.lastDispatch[deviceID] = now
	return true
}

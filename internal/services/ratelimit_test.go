package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, rl.Accept("dude-1", base, 300), "first press always accepted")
	assert.False(t, rl.Accept("dude-1", base.Add(299*time.Second), 300), "second press inside window rejected")
	assert.True(t, rl.Accept("dude-1", base.Add(300*time.Second), 300), "press at window edge accepted")
}

func TestRateLimiterRejectDoesNotConsume(t *testing.T) {
	rl := NewRateLimiter()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, rl.Accept("dude-1", base, 300))
	assert.False(t, rl.Accept("dude-1", base.Add(200*time.Second), 300))

	// the rejected press must not have moved the window
	assert.True(t, rl.Accept("dude-1", base.Add(301*time.Second), 300))
}

func TestRateLimiterZeroLimitAlwaysAccepts(t *testing.T) {
	rl := NewRateLimiter()
	now := time.Now()

	for i := 0; i < 5; i++ {
		assert.True(t, rl.Accept("dude-1", now, 0))
	}
}

func TestRateLimiterPerDevice(t *testing.T) {
	rl := NewRateLimiter()
	now := time.Now()

	assert.True(t, rl.Accept("dude-1", now, 300))
	assert.True(t, rl.Accept("dude-2", now, 300), "devices are limited independently")
}

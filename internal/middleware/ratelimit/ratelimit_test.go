package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow_ExhaustsBucket(t *testing.T) {
	rl := New(Config{MaxRequestsPerMinute: 3, WindowDuration: time.Hour})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow("session-a"), "request %d should pass", i+1)
	}
	assert.False(t, rl.allow("session-a"))
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	rl := New(Config{MaxRequestsPerMinute: 1, WindowDuration: time.Hour})
	defer rl.Stop()

	assert.True(t, rl.allow("session-a"))
	assert.False(t, rl.allow("session-a"))
	assert.True(t, rl.allow("session-b"))
}

func TestAllow_Refills(t *testing.T) {
	rl := New(Config{MaxRequestsPerMinute: 2, WindowDuration: 20 * time.Millisecond})
	defer rl.Stop()

	assert.True(t, rl.allow("session-a"))
	assert.True(t, rl.allow("session-a"))
	assert.False(t, rl.allow("session-a"))

	time.Sleep(15 * time.Millisecond)
	assert.True(t, rl.allow("session-a"))
}

func TestNew_Defaults(t *testing.T) {
	rl := New(Config{})
	defer rl.Stop()

	assert.Equal(t, 60, rl.maxTokens)
	assert.Equal(t, time.Second, rl.refillRate)
	assert.NotNil(t, rl.logger)
}

package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownGateAllowsFirstCall(t *testing.T) {
	clock := newFakeClock()
	gate := NewCooldownGate(clock, 2*time.Second)

	assert.True(t, gate.Allow("a"))
}

func TestCooldownGateBlocksInsideWindow(t *testing.T) {
	clock := newFakeClock()
	gate := NewCooldownGate(clock, 2*time.Second)

	assert.True(t, gate.Allow("a"))
	clock.Advance(1500 * time.Millisecond)
	assert.False(t, gate.Allow("a"))
	clock.Advance(600 * time.Millisecond)
	assert.True(t, gate.Allow("a"))
}

func TestCooldownGateRejectionKeepsTimestamp(t *testing.T) {
	clock := newFakeClock()
	gate := NewCooldownGate(clock, 2*time.Second)

	assert.True(t, gate.Allow("a"))
	clock.Advance(time.Second)
	// a rejected call must not push the window forward
	assert.False(t, gate.Allow("a"))
	clock.Advance(1100 * time.Millisecond)
	assert.True(t, gate.Allow("a"))
}

func TestCooldownGateKeysAreIndependent(t *testing.T) {
	clock := newFakeClock()
	gate := NewCooldownGate(clock, time.Minute)

	assert.True(t, gate.Allow("a"))
	assert.True(t, gate.Allow("b"))
	assert.False(t, gate.Allow("a"))
}

package services

import (
	"sync"
	"time"
)

// Clock is injectable so tests can simulate elapsed time deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

// CooldownGate tracks, per key, the timestamp of the last accepted call and
// silently rejects anything arriving before the cooldown has elapsed.
// Timestamps are monotonic per key: a rejected call does not touch them.
type CooldownGate struct {
	clock    Clock
	cooldown time.Duration
	mu       sync.Mutex
	last     map[string]time.Time
}

func NewCooldownGate(clock Clock, cooldown time.Duration) *CooldownGate {
	return &CooldownGate{
		clock:    clock,
		cooldown: cooldown,
		last:     make(map[string]time.Time),
	}
}

// Allow reports whether the call for key may proceed, recording the timestamp
// only when it does.
func (g *CooldownGate) Allow(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if last, ok := g.last[key]; ok && now.Sub(last) < g.cooldown {
		return false
	}
	g.last[key] = now
	return true
}

// Package lifecycle derives a booking's lifecycle stage and live settlement
// figures from its snapshot plus a current time. Everything here is a pure
// function of its inputs; the only time source is the injected Clock.
package lifecycle

import (
	"sync"
	"time"
)

// Clock supplies the current time. Production code uses SystemClock; tests
// freeze or step a FakeClock so stage and settlement math is deterministic.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FakeClock is a manually advanced clock for tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

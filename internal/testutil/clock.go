// Package testutil provides shared test helpers.
package testutil

import (
	"sync"
	"time"
)

// SteppedClock is a thread-safe deterministic wall clock for tests.
//
// Each call to Now returns a timestamp one fixed step after the previous
// one, so records written in sequence get strictly increasing,
// reproducible timestamps.
type SteppedClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewSteppedClock creates a clock starting at base, advancing by step
// per Now call.
func NewSteppedClock(base time.Time, step time.Duration) *SteppedClock {
	return &SteppedClock{next: base, step: step}
}

// Now returns the current timestamp and advances the clock.
func (c *SteppedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(c.step)
	return t
}

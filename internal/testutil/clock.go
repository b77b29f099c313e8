package testutil

import (
	"sync"
	"time"
)

// SteppingClock is a thread-safe deterministic time source for tests.
//
// Every call to Now returns the start time advanced by one more step, so
// records created in sequence get distinct, ordered timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SteppingClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	calls int64
}

// NewSteppingClock creates a clock whose first Now returns start.
//
// If step is zero, it defaults to one second.
func NewSteppingClock(start time.Time, step time.Duration) *SteppingClock {
	if step == 0 {
		step = time.Second
	}
	return &SteppingClock{start: start, step: step}
}

// Now returns the next timestamp.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.calls) * c.step)
	c.calls++
	return t
}

// Reset rewinds the clock to its start time.
func (c *SteppingClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
}

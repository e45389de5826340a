package state

import (
	"sync"
	"time"

	"github.com/ardanlabs/escrow/foundation/escrow/curve"
)

// Clock provides the moment operations and queries are evaluated at.
type Clock interface {
	Now() curve.Moment
}

// =============================================================================

// chainClock treats every accepted transaction as its own block. The next
// sequence is one past the last applied moment and time never goes back.
// It is read with the state lock held.
type chainClock struct {
	state *State
	wall  func() time.Time
}

// Now implements the Clock interface.
func (c chainClock) Now() curve.Moment {
	last := c.state.last

	ts := uint64(c.wall().UTC().Unix())
	if ts < last.Timestamp {
		ts = last.Timestamp
	}

	return curve.Moment{Timestamp: ts, Sequence: last.Sequence + 1}
}

// =============================================================================

// ManualClock is a clock moved by hand, used to drive the escrow through
// time in tests and tooling.
type ManualClock struct {
	m  curve.Moment
	mu sync.Mutex
}

// NewManualClock constructs a clock starting at the moment.
func NewManualClock(m curve.Moment) *ManualClock {
	return &ManualClock{m: m}
}

// Now implements the Clock interface.
func (c *ManualClock) Now() curve.Moment {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.m
}

// Set moves the clock to the moment.
func (c *ManualClock) Set(m curve.Moment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.m = m
}

// Advance moves the clock forward and returns the new moment.
func (c *ManualClock) Advance(seconds uint64, blocks uint64) curve.Moment {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.m.Timestamp += seconds
	c.m.Sequence += blocks
	return c.m
}

// Package clock provides monotonic time sources.
package clock

import "time"

// Clock reports monotonic time elapsed since a fixed origin.
type Clock interface {
	Now() time.Duration
}

// System is a Clock backed by the runtime monotonic clock.
type System struct {
	origin time.Time
}

// NewSystem returns a System clock whose origin is the current instant.
func NewSystem() *System {
	return &System{origin: time.Now()}
}

// Now implements Clock.
func (s *System) Now() time.Duration {
	return time.Since(s.origin)
}

// Manual is a Clock advanced explicitly. Used by tests and replays.
type Manual struct {
	now time.Duration
}

// Now implements Clock.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Duration) {
	m.now = t
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.now += d
}

// Package input turns raw key events into per-tick parry samples.
package input

import (
	"fmt"
	"time"

	"github.com/verte-zerg/parry/internal/model"
)

// Event is an input event observed between ticks.
type Event interface {
	isEvent()
}

// Quit requests the loop to stop.
type Quit struct{}

// KeyDown reports a key press (or terminal autorepeat) at clock time At.
type KeyDown struct {
	Key string
	At  time.Duration
}

func (Quit) isEvent()    {}
func (KeyDown) isEvent() {}

// Sample is the input state handed to the state machine for one tick.
type Sample struct {
	Pressed bool
	Quit    bool
}

// ParsePolicy validates a trigger policy name.
func ParsePolicy(name string) (model.TriggerPolicy, error) {
	switch model.TriggerPolicy(name) {
	case model.TriggerEdge, model.TriggerLevel:
		return model.TriggerPolicy(name), nil
	default:
		return "", fmt.Errorf("unknown trigger policy %q (want %s or %s)", name, model.TriggerEdge, model.TriggerLevel)
	}
}

// repeatGap bounds the interval between autorepeat events once a key is
// known to be repeating. A longer gap is a new press.
const repeatGap = 150 * time.Millisecond

// Tracker accumulates events between ticks.
//
// Terminals deliver key presses, not key state, and a held key arrives as a
// stream of autorepeat presses. A key down within holdTimeout of the previous
// one starts autorepeat; while repeating, consecutive events must stay within
// repeatGap. Under the edge policy only the first press of a stream counts.
// Under the level policy a lone press counts once, and a repeating key counts
// as held on every tick until events stop for holdTimeout.
type Tracker struct {
	policy      model.TriggerPolicy
	key         string
	holdTimeout time.Duration

	pressed   bool
	seen      bool
	repeating bool
	lastDown  time.Duration
	quit      bool
}

// NewTracker returns a Tracker for the given parry key identifier.
func NewTracker(policy model.TriggerPolicy, key string, holdTimeout time.Duration) *Tracker {
	return &Tracker{policy: policy, key: key, holdTimeout: holdTimeout}
}

// Policy returns the active trigger policy.
func (t *Tracker) Policy() model.TriggerPolicy {
	return t.policy
}

// Key returns the parry key identifier.
func (t *Tracker) Key() string {
	return t.key
}

// Observe records an event.
func (t *Tracker) Observe(ev Event) {
	switch ev := ev.(type) {
	case Quit:
		t.quit = true
	case KeyDown:
		if ev.Key != t.key {
			return
		}
		if t.isRepeat(ev.At) {
			t.repeating = true
		} else {
			t.pressed = true
			t.repeating = false
		}
		t.seen = true
		t.lastDown = ev.At
	}
}

func (t *Tracker) isRepeat(at time.Duration) bool {
	if !t.seen {
		return false
	}
	gap := at - t.lastDown
	if t.repeating {
		return gap <= min(repeatGap, t.holdTimeout)
	}
	return gap <= t.holdTimeout
}

// Poll returns the sample for the tick at now and clears edge state.
func (t *Tracker) Poll(now time.Duration) Sample {
	s := Sample{Quit: t.quit, Pressed: t.pressed}
	if t.policy == model.TriggerLevel && t.repeating {
		if now-t.lastDown <= t.holdTimeout {
			s.Pressed = true
		} else {
			t.repeating = false
		}
	}
	t.pressed = false
	return s
}

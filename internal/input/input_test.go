package input

import (
	"testing"
	"time"

	"github.com/verte-zerg/parry/internal/model"
)

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func TestEdgeTriggerCountsOncePerPress(t *testing.T) {
	tr := NewTracker(model.TriggerEdge, "f", ms(500))
	if tr.Poll(ms(0)).Pressed {
		t.Fatalf("expected no press before any event")
	}
	tr.Observe(KeyDown{Key: "f", At: ms(10)})
	if !tr.Poll(ms(16)).Pressed {
		t.Fatalf("expected press on the tick after key down")
	}
	if tr.Poll(ms(32)).Pressed {
		t.Fatalf("edge trigger must not repeat without a new key down")
	}
}

func TestEdgeTriggerIgnoresOtherKeys(t *testing.T) {
	tr := NewTracker(model.TriggerEdge, "f", ms(500))
	tr.Observe(KeyDown{Key: "g", At: ms(5)})
	if tr.Poll(ms(16)).Pressed {
		t.Fatalf("unexpected press for a different key")
	}
}

// holdKey feeds a held key: the first press at from, autorepeat starting
// after delay and then every interval, polling every frame until until.
// It returns the poll times that reported a press.
func holdKey(tr *Tracker, from, delay, interval, until time.Duration) []time.Duration {
	const frame = 16 * time.Millisecond
	next := from
	var pressed []time.Duration
	for now := time.Duration(0); now <= until; now += frame {
		for next <= now {
			tr.Observe(KeyDown{Key: "f", At: next})
			if next == from {
				next += delay
			} else {
				next += interval
			}
		}
		if tr.Poll(now).Pressed {
			pressed = append(pressed, now)
		}
	}
	return pressed
}

func TestEdgeTriggerIgnoresAutorepeat(t *testing.T) {
	tr := NewTracker(model.TriggerEdge, "f", ms(550))
	pressed := holdKey(tr, ms(200), ms(500), ms(33), ms(1600))
	if len(pressed) != 1 || pressed[0] != ms(208) {
		t.Fatalf("held key must count once, got presses at %v", pressed)
	}

	// Released after the last repeat, then pressed again.
	tr.Observe(KeyDown{Key: "f", At: ms(1800)})
	if !tr.Poll(ms(1808)).Pressed {
		t.Fatalf("a new press after release must count")
	}
}

func TestEdgeTriggerFastRepeatFromStart(t *testing.T) {
	tr := NewTracker(model.TriggerEdge, "f", ms(550))
	pressed := holdKey(tr, ms(200), ms(33), ms(33), ms(1200))
	if len(pressed) != 1 {
		t.Fatalf("held key must count once, got presses at %v", pressed)
	}
}

func TestLevelTriggerLoneTapCountsOnce(t *testing.T) {
	tr := NewTracker(model.TriggerLevel, "f", ms(550))
	tr.Observe(KeyDown{Key: "f", At: ms(880)})
	if !tr.Poll(ms(896)).Pressed {
		t.Fatalf("expected the tap on the next tick")
	}
	for _, now := range []time.Duration{ms(912), ms(1008), ms(1024)} {
		if tr.Poll(now).Pressed {
			t.Fatalf("a lone tap must not count as held at %s", now)
		}
	}
}

func TestLevelTriggerHoldsWhileRepeating(t *testing.T) {
	tr := NewTracker(model.TriggerLevel, "f", ms(550))
	tr.Observe(KeyDown{Key: "f", At: ms(0)})
	if !tr.Poll(ms(16)).Pressed {
		t.Fatalf("expected the first press")
	}
	if tr.Poll(ms(32)).Pressed {
		t.Fatalf("no hold before autorepeat starts")
	}
	tr.Observe(KeyDown{Key: "f", At: ms(500)})
	tr.Observe(KeyDown{Key: "f", At: ms(533)})
	for _, now := range []time.Duration{ms(540), ms(556), ms(900), ms(1083)} {
		if !tr.Poll(now).Pressed {
			t.Fatalf("repeating key must read as held at %s", now)
		}
	}
	if tr.Poll(ms(1084)).Pressed {
		t.Fatalf("expected release after hold timeout")
	}
	if tr.Poll(ms(1100)).Pressed {
		t.Fatalf("released key must stay released")
	}
}

func TestLevelTriggerHeldStream(t *testing.T) {
	tr := NewTracker(model.TriggerLevel, "f", ms(550))
	pressed := holdKey(tr, ms(200), ms(500), ms(33), ms(1200))
	if len(pressed) == 0 || pressed[0] != ms(208) {
		t.Fatalf("expected the first press at 208ms, got %v", pressed)
	}
	last := pressed[len(pressed)-1]
	if last != ms(1200) {
		t.Fatalf("held key must read as held through the stream, last at %s", last)
	}
	for _, p := range pressed[1:] {
		if p < ms(704) {
			t.Fatalf("no hold before autorepeat begins, got press at %s", p)
		}
	}
}

func TestQuitIsSticky(t *testing.T) {
	tr := NewTracker(model.TriggerEdge, "f", 0)
	tr.Observe(Quit{})
	if !tr.Poll(0).Quit || !tr.Poll(ms(16)).Quit {
		t.Fatalf("quit must persist across polls")
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy("level"); err != nil || p != model.TriggerLevel {
		t.Fatalf("unexpected result: %q %v", p, err)
	}
	if _, err := ParsePolicy("both"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

package clock

import (
	"testing"
	"time"
)

func TestManual(t *testing.T) {
	var c Manual
	if c.Now() != 0 {
		t.Fatalf("expected zero origin")
	}
	c.Advance(250 * time.Millisecond)
	c.Advance(250 * time.Millisecond)
	if c.Now() != 500*time.Millisecond {
		t.Fatalf("unexpected time: %s", c.Now())
	}
	c.Set(2 * time.Second)
	if c.Now() != 2*time.Second {
		t.Fatalf("unexpected time: %s", c.Now())
	}
}

func TestSystemIsMonotonic(t *testing.T) {
	c := NewSystem()
	a := c.Now()
	b := c.Now()
	if a < 0 || b < a {
		t.Fatalf("clock went backwards: %s then %s", a, b)
	}
}

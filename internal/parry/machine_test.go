package parry

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/verte-zerg/parry/internal/generator"
	"github.com/verte-zerg/parry/internal/model"
)

type fixedSampler struct {
	delay time.Duration
}

func (f fixedSampler) Delay(_, _ time.Duration) time.Duration {
	return f.delay
}

func sec(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func newFixedMachine(t *testing.T, window time.Duration) *Machine {
	t.Helper()
	cfg := model.TimingConfig{DelayMin: time.Second, DelayMax: time.Second, ParryWindow: window, ParryKey: "f"}
	m, err := New(cfg, generator.NewWithSeed(1), nil)
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}
	return m
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name  string
		cfg   model.TimingConfig
		field string
	}{
		{"negative min", model.TimingConfig{DelayMin: -time.Second, DelayMax: time.Second, ParryWindow: time.Second}, "delay-min"},
		{"min above max", model.TimingConfig{DelayMin: 5 * time.Second, DelayMax: time.Second, ParryWindow: time.Second}, "delay-max"},
		{"zero window", model.TimingConfig{DelayMin: time.Second, DelayMax: time.Second}, "parry-window"},
		{"negative window", model.TimingConfig{DelayMin: time.Second, DelayMax: time.Second, ParryWindow: -time.Millisecond}, "parry-window"},
	}
	for _, tc := range cases {
		_, err := New(tc.cfg, fixedSampler{}, nil)
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%s: expected ConfigError, got %v", tc.name, err)
		}
		if cfgErr.Field != tc.field {
			t.Fatalf("%s: expected field %q, got %q", tc.name, tc.field, cfgErr.Field)
		}
	}
}

func TestSuccessfulParry(t *testing.T) {
	m := newFixedMachine(t, 500*time.Millisecond)

	res := m.Tick(0, false)
	if res.To != PhaseScheduled || m.FireAt() != time.Second {
		t.Fatalf("expected scheduled at 1s, got %s at %s", res.To, m.FireAt())
	}
	if len(res.Effects) != 0 || res.Resolved {
		t.Fatalf("scheduling must not emit anything: %+v", res)
	}

	res = m.Tick(time.Second, false)
	if res.To != PhasePunching {
		t.Fatalf("expected punching, got %s", res.To)
	}
	if !reflect.DeepEqual(res.Effects, []Effect{EffectShowAndPunchSound}) {
		t.Fatalf("unexpected effects: %v", res.Effects)
	}

	res = m.Tick(sec(1.3), true)
	if !res.Resolved {
		t.Fatalf("expected resolved round")
	}
	want := model.RoundOutcome{Success: true, ResponseTimeMs: 300}
	if res.Outcome != want {
		t.Fatalf("expected %+v, got %+v", want, res.Outcome)
	}
	if !reflect.DeepEqual(res.Effects, []Effect{EffectParrySound, EffectHideWindow}) {
		t.Fatalf("unexpected effects: %v", res.Effects)
	}
	if m.Phase() != PhaseIdle {
		t.Fatalf("expected idle after resolution, got %s", m.Phase())
	}
}

func TestMissedParry(t *testing.T) {
	m := newFixedMachine(t, 500*time.Millisecond)
	m.Tick(0, false)
	m.Tick(time.Second, false)

	res := m.Tick(sec(1.6), false)
	if !res.Resolved {
		t.Fatalf("expected resolved round")
	}
	if res.Outcome != (model.RoundOutcome{Success: false}) {
		t.Fatalf("expected failure, got %+v", res.Outcome)
	}
	if !reflect.DeepEqual(res.Effects, []Effect{EffectHitSound, EffectHideWindow}) {
		t.Fatalf("unexpected effects: %v", res.Effects)
	}
}

func TestPunchingWithinWindowWaits(t *testing.T) {
	m := newFixedMachine(t, 500*time.Millisecond)
	m.Tick(0, false)
	m.Tick(time.Second, false)
	res := m.Tick(sec(1.499), false)
	if res.Resolved || res.Transitioned() || len(res.Effects) != 0 {
		t.Fatalf("expected no change inside window: %+v", res)
	}
}

func TestPressWhileScheduledIgnored(t *testing.T) {
	m := newFixedMachine(t, 500*time.Millisecond)
	m.Tick(0, false)
	for _, now := range []time.Duration{sec(0.2), sec(0.5), sec(0.999)} {
		res := m.Tick(now, true)
		if res.Resolved || res.Transitioned() || len(res.Effects) != 0 {
			t.Fatalf("press at %s before fire time had an effect: %+v", now, res)
		}
	}
	if m.Phase() != PhaseScheduled {
		t.Fatalf("expected scheduled, got %s", m.Phase())
	}
}

func TestFiringTickDoesNotEvaluatePress(t *testing.T) {
	m := newFixedMachine(t, 500*time.Millisecond)
	m.Tick(0, false)
	res := m.Tick(time.Second, true)
	if res.Resolved || res.To != PhasePunching {
		t.Fatalf("expected punch to start without resolving: %+v", res)
	}
}

func TestWindowBoundaryPressWins(t *testing.T) {
	cfg := model.TimingConfig{DelayMin: 0, DelayMax: 0, ParryWindow: 600 * time.Millisecond}
	m, err := New(cfg, fixedSampler{}, nil)
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}
	m.Tick(0, false)
	m.Tick(0, false)
	if m.StartedAt() != 0 || m.Phase() != PhasePunching {
		t.Fatalf("expected punching from 0, got %s", m.Phase())
	}
	res := m.Tick(600*time.Millisecond, true)
	if !res.Outcome.Success || res.Outcome.ResponseTimeMs != 600 {
		t.Fatalf("expected success at boundary, got %+v", res.Outcome)
	}
}

func TestWindowBoundaryWithoutPressFails(t *testing.T) {
	cfg := model.TimingConfig{DelayMin: 0, DelayMax: 0, ParryWindow: 600 * time.Millisecond}
	m, err := New(cfg, fixedSampler{}, nil)
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}
	m.Tick(0, false)
	m.Tick(0, false)
	res := m.Tick(600*time.Millisecond, false)
	if !res.Resolved || res.Outcome.Success {
		t.Fatalf("expected failure at boundary, got %+v", res)
	}
}

func TestCycleOrder(t *testing.T) {
	m := newFixedMachine(t, 200*time.Millisecond)
	want := []Phase{PhaseScheduled, PhasePunching, PhaseIdle}
	now := time.Duration(0)
	var got []Phase
	for i := 0; i < 3000 && len(got) < 3*len(want); i++ {
		res := m.Tick(now, i%7 == 0)
		if res.Transitioned() {
			got = append(got, res.To)
		}
		now += 10 * time.Millisecond
	}
	if len(got) != 3*len(want) {
		t.Fatalf("expected %d transitions, got %d", 3*len(want), len(got))
	}
	for i, p := range got {
		if p != want[i%len(want)] {
			t.Fatalf("transition %d: expected %s, got %s (all: %v)", i, want[i%len(want)], p, got)
		}
	}
}

func TestScheduledDelayWithinBounds(t *testing.T) {
	cfg := model.TimingConfig{DelayMin: 15 * time.Second, DelayMax: 240 * time.Second, ParryWindow: 600 * time.Millisecond}
	m, err := New(cfg, generator.NewWithSeed(42), nil)
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}
	now := time.Duration(0)
	for i := 0; i < 500; i++ {
		m.Tick(now, false)
		delay := m.FireAt() - now
		if delay < cfg.DelayMin || delay > cfg.DelayMax {
			t.Fatalf("delay %s out of bounds", delay)
		}
		now = m.FireAt()
		m.Tick(now, false)
		now += time.Second
		m.Tick(now, false)
		if m.Phase() != PhaseIdle {
			t.Fatalf("expected idle after missed punch, got %s", m.Phase())
		}
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() []Result {
		cfg := model.TimingConfig{DelayMin: time.Second, DelayMax: 3 * time.Second, ParryWindow: 400 * time.Millisecond}
		m, err := New(cfg, generator.NewWithSeed(7), nil)
		if err != nil {
			t.Fatalf("new machine: %v", err)
		}
		var out []Result
		for i := 0; i < 2000; i++ {
			now := time.Duration(i) * 16 * time.Millisecond
			res := m.Tick(now, i%25 == 0)
			if res.Transitioned() {
				out = append(out, res)
			}
		}
		return out
	}
	a, b := run(), run()
	if len(a) == 0 {
		t.Fatalf("expected transitions")
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("runs diverged")
	}
}

func TestWindowFraction(t *testing.T) {
	m := newFixedMachine(t, 500*time.Millisecond)
	if f := m.WindowFraction(0); f != 0 {
		t.Fatalf("expected 0 while idle, got %f", f)
	}
	m.Tick(0, false)
	m.Tick(time.Second, false)
	if f := m.WindowFraction(sec(1.25)); f != 0.5 {
		t.Fatalf("expected 0.5, got %f", f)
	}
	if f := m.WindowFraction(sec(3)); f != 1 {
		t.Fatalf("expected clamp to 1, got %f", f)
	}
}

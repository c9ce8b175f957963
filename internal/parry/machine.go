// Package parry implements the punch/parry round state machine.
package parry

import (
	"log/slog"
	"math"
	"time"

	"github.com/verte-zerg/parry/internal/model"
)

// Phase is the round lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScheduled
	PhasePunching
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseScheduled:
		return "scheduled"
	case PhasePunching:
		return "punching"
	default:
		return "unknown"
	}
}

// Sampler draws the delay before the next punch.
type Sampler interface {
	Delay(lo, hi time.Duration) time.Duration
}

// Result is what a single Tick produced.
type Result struct {
	From     Phase
	To       Phase
	Resolved bool
	Outcome  model.RoundOutcome
	Effects  []Effect
}

// Transitioned reports whether the tick changed phase.
func (r Result) Transitioned() bool {
	return r.From != r.To
}

// Machine owns the round state. It performs no I/O; side effects are
// returned as Effect values for the caller to dispatch.
type Machine struct {
	cfg    model.TimingConfig
	rng    Sampler
	logger *slog.Logger

	phase     Phase
	fireAt    time.Duration
	startedAt time.Duration
}

// New validates cfg and returns a Machine in the idle phase.
func New(cfg model.TimingConfig, rng Sampler, logger *slog.Logger) (*Machine, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Machine{cfg: cfg, rng: rng, logger: logger}, nil
}

// Config returns the timing configuration.
func (m *Machine) Config() model.TimingConfig {
	return m.cfg
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// FireAt returns the scheduled punch time. Only meaningful while scheduled.
func (m *Machine) FireAt() time.Duration {
	return m.fireAt
}

// StartedAt returns when the active punch started. Only meaningful while punching.
func (m *Machine) StartedAt() time.Duration {
	return m.startedAt
}

// WindowFraction reports how much of the parry window has elapsed at now,
// clamped to [0, 1]. It is 0 outside the punching phase.
func (m *Machine) WindowFraction(now time.Duration) float64 {
	if m.phase != PhasePunching {
		return 0
	}
	f := float64(now-m.startedAt) / float64(m.cfg.ParryWindow)
	return math.Max(0, math.Min(1, f))
}

// Tick advances the machine by at most one transition.
// pressed reports whether the parry key counts as pressed for this tick.
func (m *Machine) Tick(now time.Duration, pressed bool) Result {
	res := Result{From: m.phase}
	switch m.phase {
	case PhaseIdle:
		delay := m.rng.Delay(m.cfg.DelayMin, m.cfg.DelayMax)
		m.fireAt = now + delay
		m.phase = PhaseScheduled
		m.logger.Debug("next punch scheduled", "delay", delay.Round(10*time.Millisecond))
	case PhaseScheduled:
		if now >= m.fireAt {
			m.startedAt = now
			m.phase = PhasePunching
			res.Effects = append(res.Effects, EffectShowAndPunchSound)
			m.logger.Debug("punch")
		}
	case PhasePunching:
		elapsed := now - m.startedAt
		switch {
		case pressed:
			res.Resolved = true
			res.Outcome = model.RoundOutcome{Success: true, ResponseTimeMs: roundMillis(elapsed)}
			res.Effects = append(res.Effects, EffectParrySound, EffectHideWindow)
			m.reset()
		case elapsed >= m.cfg.ParryWindow:
			res.Resolved = true
			res.Outcome = model.RoundOutcome{Success: false}
			res.Effects = append(res.Effects, EffectHitSound, EffectHideWindow)
			m.reset()
		}
	}
	res.To = m.phase
	return res
}

func (m *Machine) reset() {
	m.phase = PhaseIdle
	m.fireAt = 0
	m.startedAt = 0
}

func roundMillis(d time.Duration) int64 {
	return int64(math.Round(float64(d) / float64(time.Millisecond)))
}

package stats

import "github.com/verte-zerg/parry/internal/model"

// Log is an append-only, chronologically ordered record of round outcomes.
type Log struct {
	outcomes []model.RoundOutcome
}

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Record appends an outcome.
func (l *Log) Record(outcome model.RoundOutcome) {
	l.outcomes = append(l.outcomes, outcome)
}

// Len returns the number of recorded outcomes.
func (l *Log) Len() int {
	return len(l.outcomes)
}

// Outcomes returns a copy of the recorded outcomes in insertion order.
func (l *Log) Outcomes() []model.RoundOutcome {
	out := make([]model.RoundOutcome, len(l.outcomes))
	copy(out, l.outcomes)
	return out
}

// Summary recomputes aggregate statistics from the full log.
func (l *Log) Summary() model.Summary {
	return Summarize(l.outcomes)
}

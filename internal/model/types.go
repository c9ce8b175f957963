// Package model defines shared data structures.
package model

import "time"

// TriggerPolicy controls how parry key input is sampled per tick.
type TriggerPolicy string

const (
	// TriggerEdge counts a parry only when the key went down during the tick.
	TriggerEdge TriggerPolicy = "edge"
	// TriggerLevel counts a parry whenever the key is held at tick time.
	TriggerLevel TriggerPolicy = "level"
)

// TimingConfig defines punch scheduling and parry settings.
type TimingConfig struct {
	DelayMin    time.Duration
	DelayMax    time.Duration
	ParryWindow time.Duration
	ParryKey    string
}

// RoundOutcome captures a resolved round. ResponseTimeMs is 0 for failures.
type RoundOutcome struct {
	Success        bool
	ResponseTimeMs int64
}

// Summary aggregates recorded outcomes.
type Summary struct {
	Total          int     `yaml:"total"`
	Successes      int     `yaml:"successes"`
	SuccessRate    float64 `yaml:"success_rate"`
	MeanResponseMs float64 `yaml:"mean_response_ms"`
}

// JournalRound is a round as stored in the run journal.
type JournalRound struct {
	Seq            int
	RunID          string
	Success        bool
	ResponseTimeMs int64
	ResolvedAt     time.Duration
}

// LatencyBucket counts successful responses within [LowMs, LowMs+width).
type LatencyBucket struct {
	LowMs int64 `yaml:"low_ms"`
	Count int   `yaml:"count"`
}

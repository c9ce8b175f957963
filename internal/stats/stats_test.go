package stats

import (
	"math"
	"testing"

	"github.com/verte-zerg/parry/internal/model"
)

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	if got != (model.Summary{}) {
		t.Fatalf("expected zero summary, got %+v", got)
	}
	if line := FormatSummary(got); line != "0 / 0 (0.00%), average response: 0ms" {
		t.Fatalf("unexpected summary line: %q", line)
	}
}

func TestSummarizeMixed(t *testing.T) {
	got := Summarize([]model.RoundOutcome{
		{Success: true, ResponseTimeMs: 300},
		{Success: false},
		{Success: true, ResponseTimeMs: 251},
	})
	if got.Total != 3 || got.Successes != 2 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if math.Abs(got.SuccessRate-2.0/3.0) > 1e-9 {
		t.Fatalf("unexpected rate: %f", got.SuccessRate)
	}
	if got.MeanResponseMs != 275.5 {
		t.Fatalf("unexpected mean: %f", got.MeanResponseMs)
	}
	if line := FormatSummary(got); line != "2 / 3 (66.67%), average response: 276ms" {
		t.Fatalf("unexpected summary line: %q", line)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{400, 100, 300, 200}
	if got := Percentile(values, 0); got != 100 {
		t.Fatalf("expected min 100, got %f", got)
	}
	if got := Percentile(values, 100); got != 400 {
		t.Fatalf("expected max 400, got %f", got)
	}
	if got := Percentile(values, 50); got != 250 {
		t.Fatalf("expected median 250, got %f", got)
	}
	if got := Percentile(nil, 50); got != 0 {
		t.Fatalf("expected 0 for empty input, got %f", got)
	}
	if values[0] != 400 {
		t.Fatalf("input must not be reordered")
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestSparklineFlat(t *testing.T) {
	if got := Sparkline([]float64{5, 5, 5}); got != "+++" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
	if got := Sparkline([]float64{0, 10}); got != " @" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
}

func TestDownsample(t *testing.T) {
	got := Downsample([]float64{1, 3, 5, 7, 9, 11}, 3)
	want := []float64{2, 6, 10}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/parry/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summarize computes totals, success rate, and mean successful response time.
func Summarize(outcomes []model.RoundOutcome) model.Summary {
	var s model.Summary
	var sumMs int64
	for _, o := range outcomes {
		s.Total++
		if o.Success {
			s.Successes++
			sumMs += o.ResponseTimeMs
		}
	}
	if s.Total > 0 {
		s.SuccessRate = float64(s.Successes) / float64(s.Total)
	}
	if s.Successes > 0 {
		s.MeanResponseMs = float64(sumMs) / float64(s.Successes)
	}
	return s
}

// FormatSummary renders the rolling summary line.
func FormatSummary(s model.Summary) string {
	return fmt.Sprintf("%d / %d (%.2f%%), average response: %dms",
		s.Successes, s.Total, s.SuccessRate*100, int64(math.Round(s.MeanResponseMs)))
}

// ResponseTimes returns successful response times in chronological order.
func ResponseTimes(outcomes []model.RoundOutcome) []float64 {
	out := make([]float64, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Success {
			out = append(out, float64(o.ResponseTimeMs))
		}
	}
	return out
}

// Percentile returns the p-th percentile (0-100) using linear interpolation.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Downsample averages values into at most width buckets.
func Downsample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

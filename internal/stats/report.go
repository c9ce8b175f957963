package stats

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/parry/internal/model"
	"github.com/verte-zerg/parry/internal/store"
)

const (
	defaultBucketMs     = 50
	trendWindow         = 5
	histogramBarWidth   = 30
	terminalWidthBackup = 80
)

// Report contains precomputed data for end-of-run rendering.
type Report struct {
	RunID    string                `yaml:"run_id"`
	Summary  model.Summary         `yaml:"summary"`
	BestMs   float64               `yaml:"best_ms"`
	MedianMs float64               `yaml:"median_ms"`
	P90Ms    float64               `yaml:"p90_ms"`
	WorstMs  float64               `yaml:"worst_ms"`
	Buckets  []model.LatencyBucket `yaml:"latency_buckets"`
	Trend    []float64             `yaml:"-"`
}

// BuildReport loads a run's rounds from the journal and prepares the report.
func BuildReport(ctx context.Context, st *store.Store, runID string) (Report, error) {
	rounds, err := st.ListRounds(ctx, runID)
	if err != nil {
		return Report{}, err
	}
	buckets, err := st.LatencyBuckets(ctx, runID, defaultBucketMs)
	if err != nil {
		return Report{}, err
	}

	outcomes := make([]model.RoundOutcome, len(rounds))
	for i, r := range rounds {
		outcomes[i] = model.RoundOutcome{Success: r.Success, ResponseTimeMs: r.ResponseTimeMs}
	}
	times := ResponseTimes(outcomes)
	return Report{
		RunID:    runID,
		Summary:  Summarize(outcomes),
		BestMs:   Percentile(times, 0),
		MedianMs: Percentile(times, 50),
		P90Ms:    Percentile(times, 90),
		WorstMs:  Percentile(times, 100),
		Buckets:  buckets,
		Trend:    MovingAverage(times, trendWindow),
	}, nil
}

// RenderReport prints a human-readable report sized to width columns.
func RenderReport(w io.Writer, r Report, width int) error {
	if r.Summary.Total == 0 {
		_, err := fmt.Fprintln(w, "No rounds played.")
		return err
	}
	if width <= 0 {
		width = terminalWidthBackup
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	headers := []string{"Rounds", "Parried", "Rate", "Mean", "Best", "Median", "P90", "Worst"}
	rows := [][]string{{
		fmt.Sprintf("%d", r.Summary.Total),
		fmt.Sprintf("%d", r.Summary.Successes),
		fmt.Sprintf("%.2f%%", r.Summary.SuccessRate*100),
		formatMs(r.Summary.MeanResponseMs),
		formatMs(r.BestMs),
		formatMs(r.MedianMs),
		formatMs(r.P90Ms),
		formatMs(r.WorstMs),
	}}
	rightAlign := map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if r.Summary.Successes == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Response Times"); err != nil {
		return err
	}
	maxCount := 0
	for _, b := range r.Buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	barWidth := histogramBarWidth
	if width-20 < barWidth {
		barWidth = maxInt(width-20, 1)
	}
	histRows := make([][]string, 0, len(r.Buckets))
	for _, b := range r.Buckets {
		n := int(math.Round(float64(b.Count) / float64(maxCount) * float64(barWidth)))
		if n < 1 {
			n = 1
		}
		histRows = append(histRows, []string{
			fmt.Sprintf("%dms", b.LowMs),
			strings.Repeat("#", n),
			fmt.Sprintf("%d", b.Count),
		})
	}
	for _, line := range formatTable(nil, histRows, map[int]bool{0: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if len(r.Trend) > 1 {
		trend := Downsample(r.Trend, width-8)
		if _, err := fmt.Fprintf(w, "\nTrend  %s\n", Sparkline(trend)); err != nil {
			return err
		}
	}
	return nil
}

// RenderReportYAML encodes the report as YAML.
func RenderReportYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

// TerminalWidth returns the width of f when it is a terminal, or a default.
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func formatMs(v float64) string {
	return fmt.Sprintf("%dms", int64(math.Round(v)))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

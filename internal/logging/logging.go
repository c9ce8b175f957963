// Package logging builds the application logger.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const timeFormat = "2006-01-02 15:04:05.000"

// New returns a text logger writing timestamp, level and message to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				return slog.String(slog.TimeKey, a.Value.Time().Format(timeFormat))
			}
			return a
		},
	}))
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// Sink is an io.Writer that either passes output through or holds complete
// lines until drained. The TUI buffers while it owns the terminal and prints
// drained lines above its view.
type Sink struct {
	mu        sync.Mutex
	out       io.Writer
	buffering bool
	partial   []byte
	lines     []string
}

// NewSink returns a pass-through Sink.
func NewSink(out io.Writer) *Sink {
	return &Sink{out: out}
}

// Write implements io.Writer.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.buffering {
		return s.out.Write(p)
	}
	s.partial = append(s.partial, p...)
	for {
		idx := bytes.IndexByte(s.partial, '\n')
		if idx < 0 {
			break
		}
		s.lines = append(s.lines, string(s.partial[:idx]))
		s.partial = s.partial[idx+1:]
	}
	return len(p), nil
}

// Buffer starts holding lines.
func (s *Sink) Buffer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffering = true
}

// Drain returns and clears held lines.
func (s *Sink) Drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.lines
	s.lines = nil
	return lines
}

// Flush writes held lines to the underlying writer and stops buffering.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffering = false
	lines := s.lines
	s.lines = nil
	if len(s.partial) > 0 {
		lines = append(lines, string(s.partial))
		s.partial = nil
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(s.out, line); err != nil {
			return err
		}
	}
	return nil
}

// Package window shows and hides the trainer in the terminal.
package window

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const hookTimeout = 5 * time.Second

// Runner executes a hook command line.
type Runner func(ctx context.Context, command string) error

// HookFailedMsg is delivered when a show/hide hook command fails.
type HookFailedMsg struct {
	Action string
	Err    error
}

// Window owns visibility. Showing switches to the alternate screen so the
// punch banner takes over the terminal; hiding restores the normal screen.
// Optional hook commands run asynchronously, e.g. to raise the terminal.
type Window struct {
	visible bool
	showCmd string
	hideCmd string
	run     Runner
}

// New returns a hidden Window with optional hook commands.
func New(showCmd, hideCmd string) *Window {
	return &Window{
		showCmd: strings.TrimSpace(showCmd),
		hideCmd: strings.TrimSpace(hideCmd),
		run:     ShellRunner,
	}
}

// WithRunner replaces the hook runner.
func (w *Window) WithRunner(run Runner) *Window {
	w.run = run
	return w
}

// Visible reports whether the window is shown.
func (w *Window) Visible() bool {
	return w.visible
}

// Show makes the window visible. The screen command must run in order with
// other output; the hook command may run concurrently.
func (w *Window) Show() (screen, hook tea.Cmd) {
	if w.visible {
		return nil, nil
	}
	w.visible = true
	return tea.EnterAltScreen, w.hook("show", w.showCmd)
}

// Hide makes the window invisible.
func (w *Window) Hide() (screen, hook tea.Cmd) {
	if !w.visible {
		return nil, nil
	}
	w.visible = false
	return tea.ExitAltScreen, w.hook("hide", w.hideCmd)
}

func (w *Window) hook(action, command string) tea.Cmd {
	if command == "" || w.run == nil {
		return nil
	}
	run := w.run
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
		defer cancel()
		if err := run(ctx, command); err != nil {
			return HookFailedMsg{Action: action, Err: err}
		}
		return nil
	}
}

// ShellRunner runs command through sh -c.
func ShellRunner(ctx context.Context, command string) error {
	out, err := exec.CommandContext(ctx, "sh", "-c", command).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

package window

import (
	"context"
	"errors"
	"testing"
)

func TestShowHideToggles(t *testing.T) {
	w := New("", "")
	if w.Visible() {
		t.Fatalf("window must start hidden")
	}
	if screen, hook := w.Hide(); screen != nil || hook != nil {
		t.Fatalf("hiding a hidden window must be a no-op")
	}
	screen, hook := w.Show()
	if screen == nil {
		t.Fatalf("expected alt screen command on show")
	}
	if hook != nil {
		t.Fatalf("no hook configured")
	}
	if !w.Visible() {
		t.Fatalf("expected visible window")
	}
	if screen, _ := w.Show(); screen != nil {
		t.Fatalf("showing a visible window must be a no-op")
	}
	if screen, _ := w.Hide(); screen == nil {
		t.Fatalf("expected alt screen command on hide")
	}
	if w.Visible() {
		t.Fatalf("expected hidden window")
	}
}

func TestHookFailureIsReported(t *testing.T) {
	boom := errors.New("boom")
	var ran []string
	w := New("raise", "").WithRunner(func(_ context.Context, command string) error {
		ran = append(ran, command)
		return boom
	})
	cmd := w.hook("show", w.showCmd)
	if cmd == nil {
		t.Fatalf("expected hook command")
	}
	msg, ok := cmd().(HookFailedMsg)
	if !ok {
		t.Fatalf("expected HookFailedMsg")
	}
	if msg.Action != "show" || !errors.Is(msg.Err, boom) {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if len(ran) != 1 || ran[0] != "raise" {
		t.Fatalf("unexpected runs: %v", ran)
	}
	if w.hook("hide", w.hideCmd) != nil {
		t.Fatalf("empty hook must not produce a command")
	}
}

func TestShellRunner(t *testing.T) {
	if err := ShellRunner(context.Background(), "true"); err != nil {
		t.Fatalf("expected success: %v", err)
	}
	if err := ShellRunner(context.Background(), "echo nope >&2; exit 3"); err == nil {
		t.Fatalf("expected failure")
	}
}

// Package tui provides the Bubble Tea parry practice driver.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/parry/internal/audio"
	"github.com/verte-zerg/parry/internal/clock"
	"github.com/verte-zerg/parry/internal/input"
	"github.com/verte-zerg/parry/internal/keys"
	"github.com/verte-zerg/parry/internal/logging"
	"github.com/verte-zerg/parry/internal/model"
	"github.com/verte-zerg/parry/internal/parry"
	"github.com/verte-zerg/parry/internal/stats"
	"github.com/verte-zerg/parry/internal/store"
	"github.com/verte-zerg/parry/internal/window"
)

const defaultFPS = 60

// SoundPlayer plays a sound effect without blocking.
type SoundPlayer interface {
	Play(audio.Sound) error
}

type frameMsg struct{}

// Options wires the collaborators the driver owns for the lifetime of a run.
type Options struct {
	Machine *parry.Machine
	Tracker *input.Tracker
	Clock   clock.Clock
	Log     *stats.Log
	Journal *store.Store
	RunID   string
	Sound   SoundPlayer
	Window  *window.Window
	Logger  *slog.Logger
	Sink    *logging.Sink
	FPS     int
}

type keyMap struct {
	Parry key.Binding
	Hide  key.Binding
	Quit  key.Binding
}

func newKeyMap(parryKey string) keyMap {
	return keyMap{
		Parry: key.NewBinding(key.WithKeys(parryKey), key.WithHelp(keys.Display(parryKey), "parry")),
		Hide:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "hide")),
		Quit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Parry, k.Hide, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Model is the event loop driver: each frame it polls the clock and input,
// ticks the state machine, and dispatches the requested side effects.
type Model struct {
	machine *parry.Machine
	tracker *input.Tracker
	clock   clock.Clock
	log     *stats.Log
	journal *store.Store
	runID   string
	sound   SoundPlayer
	window  *window.Window
	logger  *slog.Logger
	sink    *logging.Sink
	frame   time.Duration

	keys     keyMap
	help     help.Model
	bar      progress.Model
	width    int
	height   int
	now      time.Duration
	quitting bool

	soundDisabledLogged bool
}

// NewModel constructs the driver.
func NewModel(opts Options) *Model {
	fps := opts.FPS
	if fps <= 0 {
		fps = defaultFPS
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Model{
		machine: opts.Machine,
		tracker: opts.Tracker,
		clock:   opts.Clock,
		log:     opts.Log,
		journal: opts.Journal,
		runID:   opts.RunID,
		sound:   opts.Sound,
		window:  opts.Window,
		logger:  logger,
		sink:    opts.Sink,
		frame:   time.Second / time.Duration(fps),
		keys:    newKeyMap(opts.Tracker.Key()),
		help:    help.New(),
		bar:     progress.New(progress.WithGradient("#C89A3A", "#FF4D4F"), progress.WithoutPercentage()),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.nextFrame()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case frameMsg:
		return m, m.step(m.clock.Now())
	case window.HookFailedMsg:
		m.logger.Warn(fmt.Sprintf("window %s command failed", msg.Action), "err", msg.Err)
		return m, tea.Sequence(m.logLines()...)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	now := m.clock.Now()
	m.logger.Debug("key down", "key", msg.String())
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.logger.Info("Received Ctrl + C, exiting...")
		m.tracker.Observe(input.Quit{})
		return nil
	case key.Matches(msg, m.keys.Hide):
		screen, hook := m.window.Hide()
		return tea.Batch(screen, hook)
	default:
		m.tracker.Observe(input.KeyDown{Key: msg.String(), At: now})
		return nil
	}
}

// step runs one loop iteration at clock time now.
//
// Screen switches, printed log lines and the next frame are sequenced so
// lines never reach the alternate screen; hook commands run concurrently.
func (m *Model) step(now time.Duration) tea.Cmd {
	m.now = now
	sample := m.tracker.Poll(now)
	if sample.Quit {
		m.quitting = true
		screen, hook := m.window.Hide()
		seq := append([]tea.Cmd{screen}, m.logLines()...)
		seq = append(seq, tea.Quit)
		return tea.Batch(hook, tea.Sequence(seq...))
	}

	res := m.machine.Tick(now, sample.Pressed)
	seq, async := m.dispatch(res.Effects)
	if res.Resolved {
		m.record(res.Outcome, now)
	}
	seq = append(seq, m.logLines()...)
	seq = append(seq, m.nextFrame())
	return tea.Batch(append(async, tea.Sequence(seq...))...)
}

func (m *Model) dispatch(effects []parry.Effect) (seq, async []tea.Cmd) {
	for _, e := range effects {
		switch e {
		case parry.EffectShowAndPunchSound:
			screen, hook := m.window.Show()
			seq = append(seq, screen)
			async = append(async, hook)
			m.play(audio.SoundPunch)
		case parry.EffectParrySound:
			m.play(audio.SoundParry)
		case parry.EffectHitSound:
			m.play(audio.SoundHit)
		case parry.EffectHideWindow:
			screen, hook := m.window.Hide()
			seq = append(seq, screen)
			async = append(async, hook)
		}
	}
	return seq, async
}

func (m *Model) play(sound audio.Sound) {
	if m.sound == nil {
		return
	}
	err := m.sound.Play(sound)
	if err == nil {
		return
	}
	if errors.Is(err, audio.ErrDisabled) {
		if m.soundDisabledLogged {
			return
		}
		m.soundDisabledLogged = true
	}
	m.logger.Warn("failed to play sound", "sound", string(sound), "err", err)
}

func (m *Model) record(outcome model.RoundOutcome, now time.Duration) {
	m.log.Record(outcome)
	if m.journal != nil {
		if _, err := m.journal.InsertRound(context.Background(), m.runID, outcome, now); err != nil {
			m.logger.Warn("failed to journal round", "err", err)
		}
	}
	if outcome.Success {
		m.logger.Info(fmt.Sprintf("Parry success: %dms", outcome.ResponseTimeMs), "elapsed_ms", outcome.ResponseTimeMs)
	} else {
		m.logger.Info("Parry failed, you died.")
	}
	m.logger.Info(stats.FormatSummary(m.log.Summary()))
}

// logLines turns buffered log output into print commands. Lines are held
// while the alternate screen is active because it discards printed output.
func (m *Model) logLines() []tea.Cmd {
	if m.sink == nil || m.window.Visible() {
		return nil
	}
	lines := m.sink.Drain()
	cmds := make([]tea.Cmd, len(lines))
	for i, line := range lines {
		cmds[i] = tea.Println(line)
	}
	return cmds
}

func (m *Model) nextFrame() tea.Cmd {
	return tea.Tick(m.frame, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

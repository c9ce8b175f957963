// Package main provides the CLI entrypoint for parry.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/parry/internal/audio"
	"github.com/verte-zerg/parry/internal/clock"
	"github.com/verte-zerg/parry/internal/config"
	"github.com/verte-zerg/parry/internal/generator"
	"github.com/verte-zerg/parry/internal/input"
	"github.com/verte-zerg/parry/internal/keys"
	"github.com/verte-zerg/parry/internal/logging"
	"github.com/verte-zerg/parry/internal/model"
	"github.com/verte-zerg/parry/internal/parry"
	"github.com/verte-zerg/parry/internal/stats"
	"github.com/verte-zerg/parry/internal/store"
	"github.com/verte-zerg/parry/internal/tui"
	"github.com/verte-zerg/parry/internal/window"
)

const (
	defaultDelayMin    = 15.0
	defaultDelayMax    = 240.0
	defaultParryWindow = 600
	defaultHoldTimeout = 550
	defaultFPS         = 60
	defaultVolume      = 0.8
	defaultReport      = reportText
	defaultLogLevel    = "info"
)

const (
	reportText = "text"
	reportYAML = "yaml"
	reportNone = "none"
)

var (
	practiceDelayMin    float64
	practiceDelayMax    float64
	practiceParryWindow int
	practiceParryKey    string
	practiceTrigger     string
	practiceHoldTimeout int
	practiceSeed        int64
	practiceFPS         int
	practiceMute        bool
	practiceVolume      float64
	practiceSoundDir    string
	practiceShowCmd     string
	practiceHideCmd     string
	practiceReport      string
	practiceLogLevel    string
)

// runOptions is the merged flag and config file state.
type runOptions struct {
	Timing      model.TimingConfig
	Trigger     model.TriggerPolicy
	HoldTimeout time.Duration
	Seed        int64
	FPS         int
	Audio       audio.Config
	ShowCmd     string
	HideCmd     string
	Report      string
	LogLevel    slog.Level
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "parry",
		Short:         "Punch/parry reflex trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().Float64VarP(&practiceDelayMin, "delay-min", "m", defaultDelayMin, "minimum delay before a punch (seconds)")
	rootCmd.Flags().Float64VarP(&practiceDelayMax, "delay-max", "x", defaultDelayMax, "maximum delay before a punch (seconds)")
	rootCmd.Flags().IntVarP(&practiceParryWindow, "parry-window", "w", defaultParryWindow, "time allowed to parry (milliseconds)")
	rootCmd.Flags().StringVarP(&practiceParryKey, "parry-key", "k", keys.Default, "key used to parry (see: parry keys)")
	rootCmd.Flags().StringVar(&practiceTrigger, "trigger", string(model.TriggerEdge), "input trigger policy: edge or level")
	rootCmd.Flags().IntVar(&practiceHoldTimeout, "hold-timeout", defaultHoldTimeout, "ms within which a repeated key down is autorepeat of a held key")
	rootCmd.Flags().Int64Var(&practiceSeed, "seed", 0, "random seed for punch delays (0 = time based)")
	rootCmd.Flags().IntVar(&practiceFPS, "fps", defaultFPS, "input polling rate (frames per second)")
	rootCmd.Flags().BoolVar(&practiceMute, "mute", false, "disable sound")
	rootCmd.Flags().Float64Var(&practiceVolume, "volume", defaultVolume, "sound volume (0-1)")
	rootCmd.Flags().StringVar(&practiceSoundDir, "sound-dir", config.DefaultSoundDir(), "directory with punch.wav, parry.wav and hit.wav overrides")
	rootCmd.Flags().StringVar(&practiceShowCmd, "show-cmd", "", "shell command run when the punch window shows")
	rootCmd.Flags().StringVar(&practiceHideCmd, "hide-cmd", "", "shell command run when the punch window hides")
	rootCmd.Flags().StringVar(&practiceReport, "report", defaultReport, "end-of-run report: text, yaml or none")
	rootCmd.Flags().StringVar(&practiceLogLevel, "log-level", defaultLogLevel, "log level: debug, info, warn or error")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newKeysCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFileConfig(cmd, fileCfg)

	opts, err := buildOptions()
	if err != nil {
		return err
	}

	sink := logging.NewSink(os.Stderr)
	logger := logging.New(sink, opts.LogLevel)

	parryKey, err := keys.ResolveOr(opts.Timing.ParryKey, keys.Default)
	if err != nil {
		logger.Warn(fmt.Sprintf("%v, using %q", err, keys.Default))
	}
	opts.Timing.ParryKey = parryKey

	machine, err := parry.New(opts.Timing, newSampler(opts.Seed), logger)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("parry needs an interactive terminal")
	}

	runID := uuid.New().String()
	logStartup(logger, runID, opts)

	player := audio.NewPlayer(opts.Audio)
	if err := player.Init(); err != nil {
		logger.Warn("failed to initialize audio, continuing without sound", "err", err)
	}
	defer player.Close()

	journal, err := store.Open(store.MemoryPath)
	if err != nil {
		return fmt.Errorf("failed to open round journal: %w", err)
	}
	defer func() {
		if cerr := journal.Close(); cerr != nil {
			logErrf("failed to close round journal: %v\n", cerr)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcomes := stats.NewLog()
	driver := tui.NewModel(tui.Options{
		Machine: machine,
		Tracker: input.NewTracker(opts.Trigger, parryKey, opts.HoldTimeout),
		Clock:   clock.NewSystem(),
		Log:     outcomes,
		Journal: journal,
		RunID:   runID,
		Sound:   player,
		Window:  window.New(opts.ShowCmd, opts.HideCmd),
		Logger:  logger,
		Sink:    sink,
		FPS:     opts.FPS,
	})

	sink.Buffer()
	program := tea.NewProgram(driver, tea.WithContext(ctx))
	_, runErr := program.Run()
	if err := sink.Flush(); err != nil {
		logErrf("failed to flush log: %v\n", err)
	}
	switch {
	case errors.Is(runErr, tea.ErrProgramKilled):
		logger.Info("Received signal, exiting...")
	case runErr != nil:
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}

	played := outcomes.Summary()
	logger.Info("Final score: " + stats.FormatSummary(played))
	return writeReport(cmd.OutOrStdout(), logger, journal, runID, opts.Report, played)
}

func applyFileConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyFloatConfig(cmd, "delay-min", &practiceDelayMin, fileCfg.Timing.DelayMin)
	applyFloatConfig(cmd, "delay-max", &practiceDelayMax, fileCfg.Timing.DelayMax)
	applyIntConfig(cmd, "parry-window", &practiceParryWindow, fileCfg.Timing.ParryWindow)
	applyStringConfig(cmd, "parry-key", &practiceParryKey, fileCfg.Timing.ParryKey)
	applyStringConfig(cmd, "trigger", &practiceTrigger, fileCfg.Timing.Trigger)
	applyIntConfig(cmd, "hold-timeout", &practiceHoldTimeout, fileCfg.Timing.HoldTimeout)
	applyInt64Config(cmd, "seed", &practiceSeed, fileCfg.Timing.Seed)
	applyIntConfig(cmd, "fps", &practiceFPS, fileCfg.Timing.FPS)
	applyBoolConfig(cmd, "mute", &practiceMute, fileCfg.Audio.Mute)
	applyFloatConfig(cmd, "volume", &practiceVolume, fileCfg.Audio.Volume)
	applyStringConfig(cmd, "sound-dir", &practiceSoundDir, fileCfg.Audio.SoundDir)
	applyStringConfig(cmd, "show-cmd", &practiceShowCmd, fileCfg.Window.ShowCmd)
	applyStringConfig(cmd, "hide-cmd", &practiceHideCmd, fileCfg.Window.HideCmd)
	applyStringConfig(cmd, "report", &practiceReport, fileCfg.Output.Report)
	applyStringConfig(cmd, "log-level", &practiceLogLevel, fileCfg.Output.LogLevel)
}

func buildOptions() (runOptions, error) {
	opts := runOptions{
		Timing: model.TimingConfig{
			DelayMin:    seconds(practiceDelayMin),
			DelayMax:    seconds(practiceDelayMax),
			ParryWindow: time.Duration(practiceParryWindow) * time.Millisecond,
			ParryKey:    practiceParryKey,
		},
		HoldTimeout: time.Duration(practiceHoldTimeout) * time.Millisecond,
		Seed:        practiceSeed,
		FPS:         practiceFPS,
		Audio: audio.Config{
			Muted:    practiceMute,
			Volume:   practiceVolume,
			SoundDir: strings.TrimSpace(practiceSoundDir),
		},
		ShowCmd: practiceShowCmd,
		HideCmd: practiceHideCmd,
		Report:  strings.ToLower(strings.TrimSpace(practiceReport)),
	}
	trigger, err := input.ParsePolicy(strings.ToLower(strings.TrimSpace(practiceTrigger)))
	if err != nil {
		return runOptions{}, fmt.Errorf("--trigger: %w", err)
	}
	opts.Trigger = trigger
	level, err := logging.ParseLevel(practiceLogLevel)
	if err != nil {
		return runOptions{}, fmt.Errorf("--log-level: %w", err)
	}
	opts.LogLevel = level
	if err := validateOptions(opts); err != nil {
		return runOptions{}, err
	}
	return opts, nil
}

func validateOptions(opts runOptions) error {
	if opts.HoldTimeout <= 0 {
		return fmt.Errorf("--hold-timeout must be > 0")
	}
	if opts.FPS <= 0 {
		return fmt.Errorf("--fps must be > 0")
	}
	if opts.Audio.Volume < 0 || opts.Audio.Volume > 1 {
		return fmt.Errorf("--volume must be between 0 and 1")
	}
	switch opts.Report {
	case reportText, reportYAML, reportNone:
	default:
		return fmt.Errorf("--report must be one of %s, %s, %s", reportText, reportYAML, reportNone)
	}
	return nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func newSampler(seed int64) *generator.Generator {
	if seed == 0 {
		return generator.New()
	}
	return generator.NewWithSeed(seed)
}

func logStartup(logger *slog.Logger, runID string, opts runOptions) {
	logger.Info("Starting parry practice", "run", runID)
	logger.Info(fmt.Sprintf("Delay: %g..%gs", opts.Timing.DelayMin.Seconds(), opts.Timing.DelayMax.Seconds()))
	logger.Info(fmt.Sprintf("Parry Window: %dms", opts.Timing.ParryWindow.Milliseconds()))
	logger.Info("Parry Key: " + keys.Display(opts.Timing.ParryKey))
	logger.Info("Trigger: "+string(opts.Trigger), "hold_timeout", opts.HoldTimeout)
	logger.Info("Press Ctrl + C to quit, Esc to hide the window.")
}

// writeReport renders the journal report. played is the summary of the
// in-memory outcome log; the report totals always match it.
func writeReport(w io.Writer, logger *slog.Logger, st *store.Store, runID, format string, played model.Summary) error {
	if format == reportNone {
		return nil
	}
	report, err := stats.BuildReport(context.Background(), st, runID)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if report.Summary != played {
		logger.Warn("round journal is incomplete, latency figures cover journaled rounds only",
			"journaled", report.Summary.Total, "played", played.Total)
		report.Summary = played
	}
	if format == reportYAML {
		return stats.RenderReportYAML(w, report)
	}
	return stats.RenderReport(w, report, stats.TerminalWidth(os.Stdout))
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List named parry keys",
		Args:  cobra.NoArgs,
		RunE:  runKeysCmd,
	}
}

func runKeysCmd(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	lines := []string{
		"Any single printable character (e.g. f, j, /) or ctrl+<char> is accepted.",
		"Named keys:",
	}
	for _, name := range keys.Names() {
		lines = append(lines, "  "+name)
	}
	lines = append(lines, "Reserved:")
	for _, id := range []string{"ctrl+c", "esc"} {
		lines = append(lines, fmt.Sprintf("  %-8s %s", id, keys.Reserved[id]))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# parry configuration
# Uncomment a value to enable it. CLI flags override config values.

[timing]
# delay-min = %.1f      # Minimum delay before a punch (seconds)
# delay-max = %.1f     # Maximum delay before a punch (seconds)
# parry-window = %d     # Time allowed to parry (milliseconds)
# parry-key = %q         # Parry key (see: parry keys)
# trigger = %q        # edge or level
# hold-timeout = %d     # ms within which a repeated key down is autorepeat
# seed = 0                # Random seed (0 = time based)
# fps = %d               # Input polling rate

[audio]
# mute = false
# volume = %.1f
# sound-dir = %q

[window]
# show-cmd = ""           # Shell command run when the punch window shows
# hide-cmd = ""           # Shell command run when the punch window hides

[output]
# report = %q         # text, yaml or none
# log-level = %q      # debug, info, warn or error
`,
		defaultDelayMin,
		defaultDelayMax,
		defaultParryWindow,
		keys.Default,
		string(model.TriggerEdge),
		defaultHoldTimeout,
		defaultFPS,
		defaultVolume,
		config.DefaultSoundDir(),
		defaultReport,
		defaultLogLevel,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

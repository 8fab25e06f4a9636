// Package main provides the CLI entrypoint for digitpad.
package main

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder for predict.
	_ "image/png"  // PNG decoder for predict.
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gogpu/gg"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/digitpad/internal/canvas"
	"github.com/verte-zerg/digitpad/internal/config"
	"github.com/verte-zerg/digitpad/internal/generator"
	"github.com/verte-zerg/digitpad/internal/historyui"
	"github.com/verte-zerg/digitpad/internal/model"
	"github.com/verte-zerg/digitpad/internal/predict"
	"github.com/verte-zerg/digitpad/internal/stats"
	"github.com/verte-zerg/digitpad/internal/store"
	"github.com/verte-zerg/digitpad/internal/tui"
)

const (
	defaultCurveWindow = 10
	defaultLogLevel    = "info"
	defaultWeakTop     = 3
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 50
)

var (
	serviceEndpoint string
	serviceTimeout  time.Duration
	noHistory       bool
	logLevel        string
	logFile         string

	drillEnabled    bool
	drillWeakTop    int
	drillWeakFactor float64
	drillWeakWindow int

	historySince       string
	historyLast        int
	historyCurveWindow int
	historyPlain       bool
)

// settings is the merged view of config file and flags.
type settings struct {
	cfg      model.Config
	logLevel slog.Level
	logPath  string
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "digitpad",
		Short:         "Draw a digit in the terminal and have it recognized",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDrawCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&serviceEndpoint, "endpoint", predict.DefaultEndpoint, "prediction service URL")
	flags.DurationVar(&serviceTimeout, "timeout", 0, "request timeout (0 waits indefinitely)")
	flags.BoolVar(&noHistory, "no-history", false, "do not record prediction attempts")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", config.DefaultLogPath(), "log file path")

	rootCmd.Flags().BoolVar(&drillEnabled, "drill", false, "prompt for target digits, favoring weak ones")
	rootCmd.Flags().IntVar(&drillWeakTop, "weak-top", defaultWeakTop, "number of weak digits to favor")
	rootCmd.Flags().Float64Var(&drillWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak digits")
	rootCmd.Flags().IntVar(&drillWeakWindow, "weak-window", defaultWeakWindow, "number of recent attempts to compute weak digits")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newPredictCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	return mergeSettings(cmd, fileCfg)
}

func mergeSettings(cmd *cobra.Command, fileCfg config.FileConfig) (settings, error) {
	applyStringConfig(cmd, "endpoint", &serviceEndpoint, fileCfg.Service.Endpoint)
	timeout, ok, err := fileCfg.Service.TimeoutDuration()
	if err != nil {
		return settings{}, err
	}
	if ok {
		applyDurationConfig(cmd, "timeout", &serviceTimeout, &timeout)
	}
	if fileCfg.History.Enabled != nil {
		disabled := !*fileCfg.History.Enabled
		applyBoolConfig(cmd, "no-history", &noHistory, &disabled)
	}
	applyBoolConfig(cmd, "drill", &drillEnabled, fileCfg.Drill.Enabled)
	applyIntConfig(cmd, "weak-top", &drillWeakTop, fileCfg.Drill.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &drillWeakFactor, fileCfg.Drill.WeakFactor)
	applyIntConfig(cmd, "weak-window", &drillWeakWindow, fileCfg.Drill.WeakWindow)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)

	cfg := model.Config{
		Endpoint:       strings.TrimSpace(serviceEndpoint),
		Timeout:        serviceTimeout,
		HistoryEnabled: !noHistory,
		Drill:          drillEnabled,
		WeakTop:        drillWeakTop,
		WeakFactor:     drillWeakFactor,
		WeakWindow:     drillWeakWindow,
	}
	if err := validateConfig(cfg); err != nil {
		return settings{}, err
	}
	level, err := config.ParseLevel(logLevel)
	if err != nil {
		return settings{}, fmt.Errorf("invalid --log-level: %w", err)
	}
	return settings{cfg: cfg, logLevel: level, logPath: logFile}, nil
}

// openLogger sets up the file logger shared with the rasterizer. Failures
// fall back to a discarding logger.
func openLogger(s settings) (*slog.Logger, func()) {
	logger, closer, err := config.OpenLogger(s.logPath, s.logLevel)
	if err != nil {
		logErrf("logging disabled: %v\n", err)
		logger = slog.New(slog.DiscardHandler)
		closer = io.NopCloser(nil)
	}
	gg.SetLogger(logger)
	return logger, func() {
		if cerr := closer.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}
}

func openStore() (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}, nil
}

func newClient(cfg model.Config) *predict.Client {
	return predict.NewClient(cfg.Endpoint, predict.WithTimeout(cfg.Timeout))
}

func runDrawCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, closeLog := openLogger(s)
	defer closeLog()

	var st *store.Store
	if s.cfg.HistoryEnabled || s.cfg.Drill {
		var closeStore func()
		st, closeStore, err = openStore()
		if err != nil {
			return err
		}
		defer closeStore()
	}
	var recorder tui.Recorder
	if s.cfg.HistoryEnabled {
		recorder = st
	}

	logger.Info("session started", "endpoint", s.cfg.Endpoint, "timeout", s.cfg.Timeout, "history", s.cfg.HistoryEnabled, "drill", s.cfg.Drill)
	m := tui.NewModel(newClient(s.cfg), recorder, logger)
	if s.cfg.Drill {
		weak := loadWeakDigits(cmd.Context(), st, s.cfg)
		logger.Info("drill enabled", "weak", len(weak))
		m.EnableDrill(tui.Drill{
			Generator: generator.New(),
			Weak:      weak,
			Factor:    s.cfg.WeakFactor,
		})
	}
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadWeakDigits returns the least confident digits of recent attempts. A
// failed lookup leaves the drill unweighted.
func loadWeakDigits(ctx context.Context, src stats.Source, cfg model.Config) map[int]struct{} {
	aggs, err := src.DigitAggregates(ctx, model.HistoryConfig{Last: cfg.WeakWindow})
	if err != nil {
		logErrf("failed to load weak digits: %v\n", err)
		return nil
	}
	weak := map[int]struct{}{}
	for _, d := range stats.WeakDigits(aggs, cfg.WeakTop) {
		weak[d] = struct{}{}
	}
	return weak
}

func newPredictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict FILE",
		Short: "Send an image file to the prediction service",
		Args:  cobra.ExactArgs(1),
		RunE:  runPredictCmd,
	}
}

func runPredictCmd(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, closeLog := openLogger(s)
	defer closeLog()

	img, err := loadImage(args[0])
	if err != nil {
		return err
	}
	surface := canvas.New()
	surface.LoadImage(img)
	payload, err := surface.ExportSnapshot()
	if err != nil {
		return fmt.Errorf("failed to export image: %w", err)
	}

	client := newClient(s.cfg)
	id := uuid.NewString()
	start := time.Now()
	p, predictErr := client.Predict(predict.WithRequestID(cmd.Context(), id), payload)
	rec := predict.Record(id, client.Endpoint(), p, predictErr, time.Since(start))
	logger.Info("file prediction settled", "id", id, "file", args[0], "outcome", rec.Outcome, "err", predictErr)

	if s.cfg.HistoryEnabled {
		st, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()
		if err := st.InsertPrediction(cmd.Context(), rec); err != nil {
			logErrf("failed to save prediction: %v\n", err)
		}
	}

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), predict.FormatResult(p, predictErr)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if predictErr != nil {
		return fmt.Errorf("prediction failed: %w", predictErr)
	}
	return nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of a read-only file.
			_ = cerr
		}
	}()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show prediction history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&historyCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a plain report instead of the browser")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := historyConfig()
	if err != nil {
		return err
	}
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, closeLog := openLogger(s)
	defer closeLog()

	st, closeStore, err := openStore()
	if err != nil {
		logger.Error("history unavailable", "err", err)
		return err
	}
	defer closeStore()

	plain := historyPlain || !term.IsTerminal(int(os.Stdout.Fd()))
	logger.Info("showing history", "since", historySince, "last", cfg.Last, "curve_window", cfg.CurveWindow, "plain", plain)
	if plain {
		if err := printHistory(cmd, st, cfg); err != nil {
			logger.Error("history report failed", "err", err)
			return err
		}
		return nil
	}
	m := historyui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Error("history TUI failed", "err", err)
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func historyConfig() (model.HistoryConfig, error) {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if historyLast < 0 {
		return model.HistoryConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if historyCurveWindow < 1 {
		return model.HistoryConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return model.HistoryConfig{
		Since:       sinceTime,
		Last:        historyLast,
		CurveWindow: historyCurveWindow,
	}, nil
}

func printHistory(cmd *cobra.Command, src stats.Source, cfg model.HistoryConfig) error {
	report, err := stats.BuildReport(cmd.Context(), src, cfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Records); err != nil {
		return err
	}
	if len(report.Records) == 0 {
		return nil
	}
	if err := stats.RenderDigitTable(out, report.Digits); err != nil {
		return err
	}
	return stats.RenderCurves(out, report.Records, cfg.CurveWindow)
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

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target, value *time.Duration) {
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
	return fmt.Sprintf(`# digitpad configuration
# Uncomment a value to enable it. CLI flags override config values.

[service]
# endpoint = %q   # Prediction service URL
# timeout = "10s"   # Request timeout; unset waits indefinitely

[history]
# enabled = true    # Record prediction attempts

[drill]
# enabled = false   # Prompt for target digits
# weak-top = %d      # Number of weak digits to favor
# weak-factor = %.1f # Weight factor for weak digits
# weak-window = %d  # Number of recent attempts to compute weak digits

[log]
# level = %q        # debug, info, warn or error
# file = %q
`,
		predict.DefaultEndpoint,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("--endpoint must not be empty")
	}
	if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		return fmt.Errorf("--endpoint must be an http(s) URL")
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("--timeout must be >= 0")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

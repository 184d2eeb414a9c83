package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jesspatton/lazyremote/api"
	"github.com/jesspatton/lazyremote/config"
	"github.com/jesspatton/lazyremote/engine"
	"github.com/jesspatton/lazyremote/exitcodes"
	"github.com/jesspatton/lazyremote/ui"
)

// Global flags
var (
	configPath   string
	serverFlag   string
	intervalFlag time.Duration
	logLevelFlag string
	noColor      bool
)

var rootCmd = &cobra.Command{
	Use:   "lazyremote",
	Short: "Terminal dashboard for a remote test runner",
	Long: `lazyremote - drive a remote test-execution server from the terminal

Browse the server's test catalog, start single tests, suites or the whole
catalog, and watch results arrive while the run progresses.

Without a subcommand the interactive dashboard opens. The subcommands run
headless and exit 0 when every test passed, 1 on test failures and 2 on
errors.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runTUI(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultFile,
		"Path to the config file")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "",
		"Base URL of the test server (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&intervalFlag, "interval", 0,
		"Status poll interval (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: trace, debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored tables")

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newInitCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err, os.Stderr))
}

// exitCode maps a command error to the process exit code, reporting it on w.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return exitcodes.Success
	}
	var failed *testFailureError
	if errors.As(err, &failed) {
		return exitcodes.TestFailure
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitcodes.RuntimeErr
}

// testFailureError reports a run that finished with failing tests.
type testFailureError struct {
	Summary engine.Aggregate
}

func (e *testFailureError) Error() string {
	return e.Summary.String()
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server = serverFlag
	}
	if flags.Changed("interval") {
		cfg.PollInterval = intervalFlag
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevelFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging points the global logger at the log file while the TUI owns
// the terminal, and at stderr otherwise.
func setupLogging(cfg *config.Config, tui bool) (io.Closer, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(lvl)

	if !tui {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    !useColor(os.Stderr),
		}).With().Timestamp().Logger()
		return io.NopCloser(nil), nil
	}

	if dir := filepath.Dir(cfg.LogFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()
	return logFile, nil
}

func useColor(f *os.File) bool {
	return !noColor && isatty.IsTerminal(f.Fd())
}

func runTUI(ctx context.Context, cfg *config.Config) error {
	logFile, err := setupLogging(cfg, true)
	if err != nil {
		return err
	}
	defer logFile.Close()

	client, err := api.NewClient(cfg.Server, cfg.RequestTimeout)
	if err != nil {
		return err
	}

	log.Info().Str("server", client.BaseURL()).Dur("interval", cfg.PollInterval).Msg("Starting dashboard")

	e := engine.New(ctx, client, engine.Options{
		PollInterval: cfg.PollInterval,
		WatchPaths:   cfg.WatchPaths,
	})
	defer e.Close()

	p := tea.NewProgram(ui.NewModel(e, client.BaseURL()), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}

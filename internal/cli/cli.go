package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/event-ingest/internal/config"
	"github.com/pfrederiksen/event-ingest/internal/crypto"
	"github.com/pfrederiksen/event-ingest/internal/fetch"
	"github.com/pfrederiksen/event-ingest/internal/logger"
	"github.com/pfrederiksen/event-ingest/internal/parser"
	"github.com/pfrederiksen/event-ingest/internal/router"
	"github.com/pfrederiksen/event-ingest/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// errFailures signals that some URLs failed after the results were written
var errFailures = errors.New("one or more URLs failed")

// app holds the global flags and the resolved configuration shared by all
// subcommands
type app struct {
	configPath      string
	store           string
	verbose         bool
	metricsTextfile string

	cfg *config.Config

	// newFetcher builds the page fetcher; tests replace it
	newFetcher func(cfg *config.Config) parser.Fetcher
}

func newApp() *app {
	return &app{
		newFetcher: func(cfg *config.Config) parser.Fetcher {
			return fetch.New(
				fetch.WithTimeout(cfg.Fetch.Timeout),
				fetch.WithHostRate(cfg.Fetch.HostRate),
			)
		},
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event-ingest",
		Short: "Extract structured events from event pages",
		Long: `A CLI tool that turns Meetup, Facebook and generic event pages into
normalized event records, stores them and exports them as JSON or iCalendar.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.flushMetrics()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&a.store, "store", "", "Data directory or sqlite:<path> (default "+storage.DefaultDataDir+")")
	flags.StringVar(&a.store, "data-dir", "", "Alias for --store")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable verbose logging")
	flags.StringVar(&a.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this .prom file on exit")
	flags.MarkHidden("data-dir")

	cmd.AddCommand(
		newParseCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newDeleteCmd(a),
		newICSCmd(a),
		newServeCmd(a),
	)
	return cmd
}

// setup resolves the configuration: defaults, then the YAML file, then the
// environment, then command-line flags
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if a.store != "" {
		cfg.Store = a.store
	}
	if a.metricsTextfile != "" {
		cfg.MetricsTextfile = a.metricsTextfile
	}
	if a.verbose {
		cfg.LogLevel = string(logger.LevelDebug)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.SetDefault(logger.New(logger.ParseLevel(cfg.LogLevel), cmd.ErrOrStderr()))
	a.cfg = cfg
	return nil
}

func (a *app) flushMetrics() error {
	if a.cfg == nil || a.cfg.MetricsTextfile == "" {
		return nil
	}
	if err := logger.DefaultMetrics().WriteTextfile(a.cfg.MetricsTextfile); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

func (a *app) openStore() (storage.Store, error) {
	store, err := storage.Open(a.cfg.Store, storage.WithEncryptor(crypto.NewEncryptor(a.cfg.EncryptionKey)))
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, nil
}

func (a *app) newRouter(timeout time.Duration, concurrency int) *router.Router {
	cfg := *a.cfg
	if timeout > 0 {
		cfg.Fetch.Timeout = timeout
	}
	if concurrency <= 0 {
		concurrency = cfg.Concurrency
	}
	popts := []parser.Option{parser.WithFetcher(a.newFetcher(&cfg))}
	return router.Default(popts, router.WithConcurrency(concurrency))
}

func (a *app) debugf(w io.Writer, format string, args ...interface{}) {
	if a.verbose {
		fmt.Fprintf(w, format, args...)
	}
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFailures) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pfrederiksen/nascar-schedule/internal/logger"
	"github.com/pfrederiksen/nascar-schedule/internal/schedule"
	"github.com/pfrederiksen/nascar-schedule/internal/scraper"
	"github.com/pfrederiksen/nascar-schedule/internal/series"
	"github.com/pfrederiksen/nascar-schedule/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagDataDir  string
	flagYear     int
	flagConfig   string
	flagVerbose  bool
	flagLogLevel string
)

// Replaced in tests
var (
	newFetcher = func() schedule.Fetcher { return scraper.New() }
	now        = time.Now
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nascar-schedule",
		Short: "Fetch NASCAR schedules and export them as JSON, CSV and iCalendar",
		Long: `A CLI tool to fetch the published NASCAR Cup, Xfinity and Truck series schedules.
Races are normalized into one record format and written as JSON and CSV; the
combined schedule can be exported as an .ics calendar feed.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Debug("run metrics", logger.Fields{"metrics": logger.GetMetricsSnapshot()})
		},
	}

	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", ".", "Directory for the schedule, track, CSV and calendar files")
	cmd.PersistentFlags().IntVar(&flagYear, "year", series.DefaultYear, "Season year")
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML file with the series table (defaults to Cup, Xfinity and Trucks)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging (same as --log-level debug)")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn or error")

	cmd.AddCommand(
		newScrapeCmd(),
		newCalendarCmd(),
		newVerifyCmd(),
		newAnnounceCmd(),
	)

	return cmd
}

// setup configures logging for the run
func setup(cmd *cobra.Command, args []string) error {
	level, err := logger.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	if flagYear < 1 {
		return fmt.Errorf("invalid year: %d", flagYear)
	}
	return nil
}

// loadTable returns the series table selected by --config and --year
func loadTable() (*series.Table, error) {
	table, err := series.Load(flagConfig, flagYear)
	if err != nil {
		return nil, fmt.Errorf("loading series table: %w", err)
	}
	return table, nil
}

// openStorage opens the data directory for the season
func openStorage(year int) (*storage.Storage, error) {
	store, err := storage.New(flagDataDir, year)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, nil
}

// Execute runs the CLI
func Execute(version string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	cmd.Version = version

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}

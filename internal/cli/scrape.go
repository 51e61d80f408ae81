package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pfrederiksen/nascar-schedule/internal/calendar"
	"github.com/pfrederiksen/nascar-schedule/internal/logger"
	"github.com/pfrederiksen/nascar-schedule/internal/schedule"
	"github.com/pfrederiksen/nascar-schedule/internal/storage"
	"github.com/spf13/cobra"
)

func newScrapeCmd() *cobra.Command {
	var (
		withCalendar bool
		format       string
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch every series and write the schedule files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, OutputFormat(strings.ToLower(format)), withCalendar)
		},
	}

	cmd.Flags().BoolVar(&withCalendar, "calendar", false, "Also write the .ics calendar")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, format OutputFormat, withCalendar bool) error {
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", format)
	}

	table, err := loadTable()
	if err != nil {
		return err
	}

	store, err := openStorage(table.Year())
	if err != nil {
		return err
	}

	scrapedAt := now().UTC()
	builder, err := schedule.Collect(cmd.Context(), newFetcher(), table, scrapedAt)
	if err != nil {
		return fmt.Errorf("fetching schedules: %w", err)
	}

	doc := builder.Document()
	tracks := builder.Tracks()

	previous, err := store.LoadSchedule()
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("ignoring previous schedule", logger.Fields{"error": err.Error()})
		}
		previous = nil
	}

	if err := store.SaveSchedule(doc); err != nil {
		return fmt.Errorf("saving schedule: %w", err)
	}
	if err := store.SaveTracks(tracks); err != nil {
		return fmt.Errorf("saving tracks: %w", err)
	}
	if err := store.SaveCSV(doc.AllRacesChronological); err != nil {
		return fmt.Errorf("saving CSV: %w", err)
	}

	result := &ScrapeResult{
		ScrapedAt:    doc.ScrapedAt,
		Year:         doc.Year,
		TotalRaces:   doc.TotalRaces(),
		TotalTracks:  tracks.TotalTracks,
		ScheduleFile: store.SchedulePath(),
		TracksFile:   store.TracksPath(),
		CSVFile:      store.CSVPath(),
	}
	if previous != nil {
		result.Diff = schedule.Diff(previous, doc)
	}

	failed := 0
	for _, key := range builder.Order() {
		s := doc.SchedulesBySeries[key]
		sr, _ := table.Lookup(key)
		result.Series = append(result.Series, SeriesResult{
			Key:        key,
			Name:       s.SeriesName,
			APIURL:     sr.APIURL,
			TotalRaces: s.TotalRaces,
			Error:      s.Error,
			races:      s.Races,
		})
		if s.Error != "" {
			failed++
		}
	}

	if withCalendar {
		opts := calendar.DefaultOptions(doc.Year)
		opts.Now = scrapedAt
		ics, count := calendar.Generate(doc.AllRacesChronological, opts)
		if err := store.SaveCalendar(ics); err != nil {
			return fmt.Errorf("saving calendar: %w", err)
		}
		logger.AddCounter("calendar.events", int64(count))
		result.CalendarFile = store.CalendarPath()
		result.CalendarEvents = count
	}

	if err := WriteScrapeOutput(cmd.OutOrStdout(), result, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if failed > 0 && failed == len(result.Series) {
		return fmt.Errorf("no series could be fetched")
	}
	return nil
}

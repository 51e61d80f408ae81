package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pfrederiksen/nascar-schedule/internal/calendar"
	"github.com/pfrederiksen/nascar-schedule/internal/logger"
	"github.com/pfrederiksen/nascar-schedule/internal/schedule"
	"github.com/pfrederiksen/nascar-schedule/internal/storage"
	"github.com/spf13/cobra"
)

var importSteps = []string{
	"Go to Google Calendar",
	"Click the gear icon → Settings",
	"Click 'Import & export' in the left sidebar",
	"Click 'Select file from your computer'",
	"Select the generated .ics file",
	"Choose your '%d NASCAR' calendar",
	"Click 'Import'",
}

func newCalendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendar",
		Short: "Generate the .ics calendar from the last scrape",
		Args:  cobra.NoArgs,
		RunE:  runCalendar,
	}
}

func runCalendar(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	store, doc, err := loadSchedule(out)
	if err != nil || doc == nil {
		return err
	}

	fmt.Fprintln(out, "Generating ICS calendar file...")

	opts := calendar.DefaultOptions(doc.Year)
	opts.Now = now().UTC()
	ics, count := calendar.Generate(doc.AllRacesChronological, opts)
	if err := store.SaveCalendar(ics); err != nil {
		return fmt.Errorf("saving calendar: %w", err)
	}
	logger.AddCounter("calendar.events", int64(count))

	fmt.Fprintf(out, "\nCreated: %s\n", store.CalendarPath())
	fmt.Fprintf(out, "Total events: %d\n", count)
	printImportSteps(out, doc.Year)

	return nil
}

// loadSchedule reads the schedule document of the selected season. When no scrape
// has been run yet it prints a hint and returns a nil document without error.
func loadSchedule(out io.Writer) (*storage.Storage, *schedule.Document, error) {
	table, err := loadTable()
	if err != nil {
		return nil, nil, err
	}

	store, err := openStorage(table.Year())
	if err != nil {
		return nil, nil, err
	}

	doc, err := store.LoadSchedule()
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintf(out, "Error: %s not found. Run `nascar-schedule scrape` first.\n", store.SchedulePath())
		return store, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading schedule: %w", err)
	}
	if doc.Year == 0 {
		doc.Year = table.Year()
	}

	return store, doc, nil
}

func printImportSteps(w io.Writer, year int) {
	fmt.Fprintln(w, "\nTo import into Google Calendar:")
	for i, step := range importSteps {
		if i == 5 {
			step = fmt.Sprintf(step, year)
		}
		fmt.Fprintf(w, "%d. %s\n", i+1, step)
	}
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [file]",
		Short: "Parse a calendar feed and check every event",
		Long: `Parse an .ics file with an independent iCalendar parser and check that every
event has a UID and a start before its end. Defaults to the season's calendar file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runVerify,
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		table, err := loadTable()
		if err != nil {
			return err
		}
		store, err := openStorage(table.Year())
		if err != nil {
			return err
		}
		path = store.CalendarPath()
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening calendar: %w", err)
	}
	defer f.Close()

	summary, err := calendar.Verify(f)
	if err != nil {
		return fmt.Errorf("verifying %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d events, %d unique UIDs\n", path, summary.Events, len(summary.UIDs))
	return nil
}

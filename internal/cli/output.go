package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pfrederiksen/nascar-schedule/internal/race"
	"github.com/pfrederiksen/nascar-schedule/internal/schedule"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// previewRaces is the number of races listed per series in text output
const previewRaces = 3

// SeriesResult summarizes the fetch of one series
type SeriesResult struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	APIURL     string `json:"api_url"`
	TotalRaces int    `json:"total_races"`
	Error      string `json:"error,omitempty"`

	races []race.Race
}

// ScrapeResult contains data to be output after a scrape
type ScrapeResult struct {
	ScrapedAt      string         `json:"scraped_at"`
	Year           int            `json:"year"`
	Series         []SeriesResult `json:"series"`
	TotalRaces     int            `json:"total_races"`
	TotalTracks    int            `json:"total_tracks"`
	ScheduleFile   string         `json:"schedule_file"`
	TracksFile     string         `json:"tracks_file"`
	CSVFile        string         `json:"csv_file"`
	CalendarFile   string         `json:"calendar_file,omitempty"`
	CalendarEvents int            `json:"calendar_events,omitempty"`

	// Set when an earlier scrape of the season was on disk
	Diff *schedule.DiffResult `json:"diff,omitempty"`
}

// WriteScrapeOutput writes the result in the specified format
func WriteScrapeOutput(w io.Writer, result *ScrapeResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *ScrapeResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *ScrapeResult) error {
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "NASCAR Schedule Scraper")
	fmt.Fprintf(w, "Timestamp: %s\n", result.ScrapedAt)
	fmt.Fprintln(w, rule)

	for _, s := range result.Series {
		fmt.Fprintf(w, "\n%s\n", s.Name)
		fmt.Fprintf(w, "  API: %s\n", s.APIURL)

		if s.Error != "" {
			fmt.Fprintf(w, "  ERROR: %s\n", s.Error)
			continue
		}

		fmt.Fprintf(w, "  Found %d races\n", s.TotalRaces)
		for i, r := range s.races {
			if i == previewRaces {
				break
			}
			fmt.Fprintf(w, "    - %s: %s @ %s\n", r.DatePlain, r.RaceName, r.TrackName)
		}
		if len(s.races) > previewRaces {
			fmt.Fprintf(w, "    ... and %d more races\n", len(s.races)-previewRaces)
		}
	}

	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "Saved detailed schedule to: %s\n", result.ScheduleFile)
	fmt.Fprintf(w, "Saved tracks data to: %s\n", result.TracksFile)
	fmt.Fprintf(w, "Saved CSV schedule to: %s\n", result.CSVFile)
	if result.CalendarFile != "" {
		fmt.Fprintf(w, "Saved calendar (%d events) to: %s\n", result.CalendarEvents, result.CalendarFile)
	}

	if result.Diff != nil {
		writeDiff(w, result.Diff)
	}

	fmt.Fprintf(w, "\nTotal races across all series: %d\n", result.TotalRaces)
	fmt.Fprintf(w, "Total unique tracks: %d\n", result.TotalTracks)
	fmt.Fprintln(w, rule)

	return nil
}

// writeDiff lists what changed since the previous scrape
func writeDiff(w io.Writer, diff *schedule.DiffResult) {
	if diff.Empty() {
		fmt.Fprintln(w, "\nNo changes since last scrape.")
		return
	}

	fmt.Fprintf(w, "\nSince last scrape: %d new, %d removed, %d changed\n",
		len(diff.NewRaces), len(diff.Removed), len(diff.Changes))
	for _, r := range diff.NewRaces {
		fmt.Fprintf(w, "  NEW: %s: %s (%s)\n", r.DatePlain, r.RaceName, r.Series)
	}
	for _, r := range diff.Removed {
		fmt.Fprintf(w, "  REMOVED: %s: %s (%s)\n", r.DatePlain, r.RaceName, r.Series)
	}
	for _, c := range diff.Changes {
		fmt.Fprintf(w, "  CHANGED: %s (%s) %s: %q -> %q\n", c.RaceName, c.Series, c.Field, c.OldValue, c.NewValue)
	}
}

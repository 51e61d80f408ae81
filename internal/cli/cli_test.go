package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/nascar-schedule/internal/notifier"
	"github.com/pfrederiksen/nascar-schedule/internal/race"
	"github.com/pfrederiksen/nascar-schedule/internal/schedule"
	"github.com/pfrederiksen/nascar-schedule/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	feeds map[string][]race.Raw
	errs  map[string]error
}

func (f *fakeFetcher) FetchSeries(ctx context.Context, sr series.Series) ([]race.Raw, error) {
	if err := f.errs[sr.Key]; err != nil {
		return nil, err
	}
	return f.feeds[sr.Key], nil
}

func raw(id int64, name, track, state, date string) race.Raw {
	return race.Raw{
		RaceID:    race.Int(id),
		RaceName:  race.Text(name),
		TrackID:   race.Int(id % 7),
		TrackName: race.Text(track),
		State:     race.Text(state),
		Date:      race.Text(date),
		DatePlain: race.Text(date[:10]),
		TV:        "FOX",
	}
}

func sampleFetcher() *fakeFetcher {
	return &fakeFetcher{
		feeds: map[string][]race.Raw{
			"nascar_cup_series": {
				raw(5547, "Ambetter Health 400", "EchoPark Speedway", "GA", "2026-02-22T15:00:00-0500"),
				raw(5546, "DAYTONA 500", "Daytona International Speedway", "FL", "2026-02-15T14:30:00-0500"),
				raw(5549, "Pennzoil 400", "Las Vegas Motor Speedway", "NV", "2026-03-01T15:30:00-0800"),
				raw(5550, "Straight Talk Wireless 500", "Phoenix Raceway", "AZ", "2026-03-08T15:30:00-0700"),
			},
			"xfinity_series": {
				raw(6001, "United Rentals 300", "Daytona International Speedway", "FL", "2026-02-14T17:00:00-0500"),
			},
		},
		errs: map[string]error{
			"craftsman_truck_series": errors.New("unexpected status code 404"),
		},
	}
}

// runCLI executes the root command with args against a temporary data directory
func runCLI(t *testing.T, fetcher schedule.Fetcher, dataDir string, args ...string) (string, error) {
	t.Helper()

	prevFetcher, prevNow := newFetcher, now
	t.Cleanup(func() {
		newFetcher, now = prevFetcher, prevNow
	})
	newFetcher = func() schedule.Fetcher { return fetcher }
	now = func() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) }

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--data-dir", dataDir, "--year", "2026"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestScrape_Text(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, sampleFetcher(), dir, "scrape")
	require.NoError(t, err)

	assert.Contains(t, out, "NASCAR Schedule Scraper")
	assert.Contains(t, out, "Timestamp: 2026-02-01T12:00:00Z")
	assert.Contains(t, out, "  Found 4 races\n")
	assert.Contains(t, out, "    - 2026-02-15: DAYTONA 500 @ Daytona International Speedway\n")
	assert.Contains(t, out, "    ... and 1 more races\n")
	assert.NotContains(t, out, "Straight Talk Wireless 500")
	assert.Contains(t, out, "  Found 1 races\n")
	assert.Contains(t, out, "  ERROR: Failed to fetch data: unexpected status code 404")
	assert.Contains(t, out, "Total races across all series: 5")
	assert.Contains(t, out, "Total unique tracks: 4")
	assert.NotContains(t, out, "Saved calendar")

	for _, name := range []string{"nascar_schedules_2026.json", "nascar_tracks_2026.json", "nascar_schedules_2026.csv"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.NoFileExists(t, filepath.Join(dir, "nascar_2026_calendar.ics"))
}

func TestScrape_JSONWithCalendar(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, sampleFetcher(), dir, "scrape", "--calendar", "--format", "json")
	require.NoError(t, err)

	var result ScrapeResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.Equal(t, 2026, result.Year)
	assert.Equal(t, 5, result.TotalRaces)
	assert.Equal(t, 5, result.CalendarEvents)
	require.Len(t, result.Series, 3)
	assert.Equal(t, "nascar_cup_series", result.Series[0].Key)
	assert.Equal(t, "craftsman_truck_series", result.Series[2].Key)
	assert.NotEmpty(t, result.Series[2].Error)
	assert.FileExists(t, result.CalendarFile)

	ics, err := os.ReadFile(result.CalendarFile)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(string(ics), "BEGIN:VEVENT"))
}

func TestScrape_AllSeriesFailed(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{errs: map[string]error{
		"nascar_cup_series":      errors.New("boom"),
		"xfinity_series":         errors.New("boom"),
		"craftsman_truck_series": errors.New("boom"),
	}}

	_, err := runCLI(t, f, dir, "scrape")
	require.Error(t, err)

	// The documents are still written so the failures are on record
	assert.FileExists(t, filepath.Join(dir, "nascar_schedules_2026.json"))
}

func TestScrape_InvalidFormat(t *testing.T) {
	_, err := runCLI(t, sampleFetcher(), t.TempDir(), "scrape", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestCalendar_MissingSchedule(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, sampleFetcher(), dir, "calendar")
	require.NoError(t, err)

	assert.Contains(t, out, "Error: "+filepath.Join(dir, "nascar_schedules_2026.json")+" not found.")
	assert.NotContains(t, out, "Generating")
	assert.NoFileExists(t, filepath.Join(dir, "nascar_2026_calendar.ics"))
}

func TestCalendarAndVerify(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, sampleFetcher(), dir, "scrape")
	require.NoError(t, err)

	out, err := runCLI(t, sampleFetcher(), dir, "calendar")
	require.NoError(t, err)
	assert.Contains(t, out, "Generating ICS calendar file...")
	assert.Contains(t, out, "Total events: 5")
	assert.Contains(t, out, "6. Choose your '2026 NASCAR' calendar")

	out, err = runCLI(t, sampleFetcher(), dir, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "5 events, 5 unique UIDs")
}

func TestLogLevelFlag(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, sampleFetcher(), dir, "--log-level", "loud", "scrape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")

	_, err = runCLI(t, sampleFetcher(), dir, "--log-level", "ERROR", "scrape")
	require.NoError(t, err)
}

func TestLogLevelFlag_FiltersOutput(t *testing.T) {
	prevFetcher, prevNow := newFetcher, now
	t.Cleanup(func() { newFetcher, now = prevFetcher, prevNow })
	newFetcher = func() schedule.Fetcher { return sampleFetcher() }

	run := func(level string) string {
		var out, errOut bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		cmd.SetArgs([]string{"--data-dir", t.TempDir(), "--log-level", level, "scrape"})
		require.NoError(t, cmd.Execute())
		return errOut.String()
	}

	assert.Contains(t, run("info"), `"level":"INFO"`)

	quiet := run("error")
	assert.NotContains(t, quiet, `"level":"INFO"`)
	assert.Contains(t, quiet, `"level":"ERROR"`, "the failed truck series is still logged")
}

func TestVerify_MissingFile(t *testing.T) {
	_, err := runCLI(t, sampleFetcher(), t.TempDir(), "verify", "does-not-exist.ics")
	require.Error(t, err)
}

func TestAnnounce_DryRun(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, sampleFetcher(), dir, "scrape")
	require.NoError(t, err)

	out, err := runCLI(t, sampleFetcher(), dir, "announce", "--dry-run", "--max", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "--- Tweet 1/2 ---")
	assert.Contains(t, out, "United Rentals 300")
	assert.Contains(t, out, "DAYTONA 500")
	assert.NotContains(t, out, "Ambetter Health 400")
}

func TestAnnounce_TwitterError(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, sampleFetcher(), dir, "scrape")
	require.NoError(t, err)

	prev := newTwitterNotifier
	t.Cleanup(func() { newTwitterNotifier = prev })
	newTwitterNotifier = func() (notifier.Notifier, error) {
		return nil, errors.New("missing required Twitter credentials in environment variables")
	}

	_, err = runCLI(t, sampleFetcher(), dir, "announce")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initializing Twitter")
}

func TestAnnounce_MissingSchedule(t *testing.T) {
	out, err := runCLI(t, sampleFetcher(), t.TempDir(), "announce", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Run `nascar-schedule scrape` first.")
}

func TestScrape_ReportsChangesSinceLastRun(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, sampleFetcher(), dir, "scrape")
	require.NoError(t, err)
	assert.NotContains(t, out, "Since last scrape")

	out, err = runCLI(t, sampleFetcher(), dir, "scrape")
	require.NoError(t, err)
	assert.Contains(t, out, "No changes since last scrape.")

	f := sampleFetcher()
	cup := f.feeds["nascar_cup_series"]
	cup[1].Date = "2026-02-15T15:00:00-0500"
	f.feeds["nascar_cup_series"] = append(cup, raw(5551, "Goodyear 400", "Darlington Raceway", "SC", "2026-03-22T15:00:00-0400"))

	out, err = runCLI(t, f, dir, "scrape")
	require.NoError(t, err)
	assert.Contains(t, out, "Since last scrape: 1 new, 0 removed, 1 changed")
	assert.Contains(t, out, "  NEW: 2026-03-22: Goodyear 400 (NASCAR Cup Series)")
	assert.Contains(t, out, `  CHANGED: DAYTONA 500 (NASCAR Cup Series) date: "2026-02-15T14:30:00-0500" -> "2026-02-15T15:00:00-0500"`)
}

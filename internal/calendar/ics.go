// Package calendar renders race schedules as an iCalendar (.ics) feed.
//
// Every race with a parseable start time becomes one VEVENT in UTC. Races have no
// published end time, so every event is given a fixed four hour duration. Event UIDs
// are derived from the race id and series name, so regenerating the feed updates
// existing calendar entries instead of duplicating them.
package calendar

import (
	"crypto/md5"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/nascar-schedule/internal/race"
)

const (
	ProductID       = "-//NASCAR Scraper//nascar-scraper//EN"
	DefaultTimezone = "America/New_York"

	// EventDuration is a policy estimate; feeds carry no end time
	EventDuration = 4 * time.Hour

	uidDomain   = "nascar-scraper"
	defaultName = "NASCAR Race"
	maxLineLen  = 75
)

// Options controls the calendar-level properties
type Options struct {
	Name     string    // X-WR-CALNAME; omitted when empty
	Timezone string    // X-WR-TIMEZONE; DefaultTimezone when empty
	Now      time.Time // DTSTAMP; time.Now when zero
}

// DefaultOptions returns the options for a season's calendar
func DefaultOptions(year int) Options {
	return Options{
		Name:     fmt.Sprintf("%d NASCAR Schedule", year),
		Timezone: DefaultTimezone,
	}
}

// Event is a calendar entry derived from a race
type Event struct {
	UID         string
	Start       time.Time
	End         time.Time
	Summary     string
	Location    string
	Description string // already escaped, lines joined with \n
	URL         string
}

// UID returns the stable event identifier for a race in a series
func UID(raceID, seriesName string) string {
	sum := md5.Sum([]byte(raceID + "-" + seriesName))
	return fmt.Sprintf("%x", sum)[:16] + "@" + uidDomain
}

// EventFor derives the calendar entry of a race. It returns false when the race
// start time cannot be parsed.
func EventFor(r race.Race) (Event, bool) {
	start, ok := r.Start()
	if !ok {
		return Event{}, false
	}

	name := r.RaceName
	if name == "" {
		name = defaultName
	}
	summary := name
	if r.Series != "" {
		summary = fmt.Sprintf("%s (%s)", name, r.Series)
	}

	// "<track>, <state>", or the track alone when the state is unknown
	location := r.TrackName
	if r.TrackName != "" && r.State != "" {
		location = fmt.Sprintf("%s, %s", r.TrackName, r.State)
	}

	return Event{
		UID:         UID(r.IDText(), r.Series),
		Start:       start,
		End:         start.Add(EventDuration),
		Summary:     summary,
		Location:    location,
		Description: description(r),
		URL:         r.RaceURL,
	}, true
}

// description joins the labeled detail lines of a race with an escaped newline
func description(r race.Race) string {
	parts := []string{
		"Series: " + r.Series,
		"Track: " + r.TrackName,
	}
	if !r.ScheduledLaps.IsZero() {
		parts = append(parts, "Laps: "+r.ScheduledLaps.String())
	}
	if r.StartTime != "" {
		parts = append(parts, fmt.Sprintf("Start Time: %s (local)", r.StartTime))
	}
	if r.TVNetwork != "" {
		parts = append(parts, "TV: "+r.TVNetwork)
	}
	if r.Radio != "" {
		parts = append(parts, "Radio: "+r.Radio)
	}
	if r.Streaming != "" {
		parts = append(parts, "Streaming: "+r.Streaming)
	}
	if r.RaceURL != "" {
		parts = append(parts, "", "More info: "+r.RaceURL)
	}

	for i, p := range parts {
		parts[i] = escapeICS(p)
	}
	return strings.Join(parts, `\n`)
}

// Generate renders races as one calendar document and returns it together with the
// number of events written. Races are emitted in input order; a race whose start
// cannot be parsed is skipped, as is any repeat of a (race id, series) pair.
func Generate(races []race.Race, opts Options) (string, int) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	stamp := formatICSTime(now)

	tz := opts.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}

	var ics strings.Builder

	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "PRODID:"+ProductID)
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")
	if opts.Name != "" {
		writeLine(&ics, "X-WR-CALNAME:"+escapeICS(opts.Name))
	}
	writeLine(&ics, "X-WR-TIMEZONE:"+tz)

	seen := make(map[string]bool)
	count := 0

	for _, r := range races {
		key := r.Key()
		if seen[key] {
			continue
		}

		evt, ok := EventFor(r)
		if !ok {
			continue
		}

		seen[key] = true
		writeEvent(&ics, evt, stamp)
		count++
	}

	writeLine(&ics, "END:VCALENDAR")

	return ics.String(), count
}

func writeEvent(ics *strings.Builder, evt Event, stamp string) {
	writeLine(ics, "BEGIN:VEVENT")
	writeLine(ics, "UID:"+evt.UID)
	writeLine(ics, "DTSTAMP:"+stamp)
	writeLine(ics, "DTSTART:"+formatICSTime(evt.Start))
	writeLine(ics, "DTEND:"+formatICSTime(evt.End))
	writeLine(ics, "SUMMARY:"+escapeICS(evt.Summary))
	writeLine(ics, "LOCATION:"+escapeICS(evt.Location))
	writeLine(ics, "DESCRIPTION:"+evt.Description)
	if evt.URL != "" {
		writeLine(ics, "URL:"+evt.URL)
	}
	writeLine(ics, "END:VEVENT")
}

// writeLine writes a content line, folded at 75 octets, with a CRLF ending
func writeLine(ics *strings.Builder, line string) {
	ics.WriteString(foldLine(line))
	ics.WriteString("\r\n")
}

// foldLine splits long content lines per RFC 5545 section 3.1. Continuation lines
// start with a single space, and valid multi-byte characters are never split.
func foldLine(line string) string {
	if len(line) <= maxLineLen {
		return line
	}

	var b strings.Builder
	limit := maxLineLen
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			// no character start within the limit, invalid UTF-8
			cut = limit
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		limit = maxLineLen - 1 // room for the leading space
	}
	b.WriteString(line)
	return b.String()
}

func isRuneStart(c byte) bool {
	return c&0xC0 != 0x80
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes TEXT values per RFC 5545. Backslashes go first so the
// escapes added afterwards are not doubled.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

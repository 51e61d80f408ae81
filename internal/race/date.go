package race

import (
	"regexp"
	"strconv"
	"time"
)

const localLayout = "2006-01-02T15:04:05"

// "2026-02-15T14:30:00-0500"; the minutes part of the offset is optional
var startPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2})(?:([+-])(\d{2})(\d{2})?)?$`)

// ParseStart parses a feed start time into a UTC instant.
// The offset is subtracted from the local wall time (UTC = local - offset); a missing
// offset means the wall time is already UTC. The boolean is false for empty or
// malformed input.
func ParseStart(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	m := startPattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	t, err := time.ParseInLocation(localLayout, m[1], time.UTC)
	if err != nil {
		return time.Time{}, false
	}

	if m[2] == "" {
		return t, true
	}

	hours, _ := strconv.Atoi(m[3])
	minutes := 0
	if m[4] != "" {
		minutes, _ = strconv.Atoi(m[4])
	}

	offset := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if m[2] == "-" {
		offset = -offset
	}

	return t.Add(-offset), true
}

// Start returns the race start as a UTC instant, see ParseStart
func (r Race) Start() (time.Time, bool) {
	return ParseStart(r.Date)
}

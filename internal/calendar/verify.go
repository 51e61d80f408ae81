package calendar

import (
	"fmt"
	"io"

	ics "github.com/arran4/golang-ical"
)

// Summary describes a parsed calendar feed
type Summary struct {
	Events int
	UIDs   map[string]bool
}

// Verify parses a calendar feed and checks that every event has a UID and a
// start that does not come after its end
func Verify(r io.Reader) (*Summary, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	summary := &Summary{
		UIDs: make(map[string]bool),
	}

	for i, evt := range cal.Events() {
		uid := evt.Id()
		if uid == "" {
			return nil, fmt.Errorf("event %d: missing UID", i+1)
		}
		if summary.UIDs[uid] {
			return nil, fmt.Errorf("event %d: duplicate UID %s", i+1, uid)
		}

		start, err := evt.GetStartAt()
		if err != nil {
			return nil, fmt.Errorf("event %s: reading DTSTART: %w", uid, err)
		}
		end, err := evt.GetEndAt()
		if err != nil {
			return nil, fmt.Errorf("event %s: reading DTEND: %w", uid, err)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("event %s: ends before it starts", uid)
		}

		summary.UIDs[uid] = true
		summary.Events++
	}

	return summary, nil
}

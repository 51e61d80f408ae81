package notifier

import (
	"sort"
	"time"

	"github.com/pfrederiksen/nascar-schedule/internal/race"
)

// Notifier defines the interface for posting race announcements
type Notifier interface {
	// Notify posts one announcement per race
	Notify(races []race.Race) error
}

// Upcoming returns up to n races starting after now, soonest first.
// Races without a parseable start time are skipped. n <= 0 means no limit.
func Upcoming(races []race.Race, now time.Time, n int) []race.Race {
	type entry struct {
		race  race.Race
		start time.Time
	}

	var entries []entry
	for _, r := range races {
		start, ok := r.Start()
		if !ok || !start.After(now) {
			continue
		}
		entries = append(entries, entry{race: r, start: start})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].start.Before(entries[j].start)
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}

	out := make([]race.Race, len(entries))
	for i, e := range entries {
		out[i] = e.race
	}
	return out
}

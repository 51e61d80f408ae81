package schedule

import (
	"sort"

	"github.com/pfrederiksen/nascar-schedule/internal/race"
)

// Change kinds reported by Diff
const (
	ChangeDate  = "date"
	ChangeStart = "start_time"
	ChangeName  = "race_name"
	ChangeTrack = "track_name"
	ChangeTV    = "tv_network"
)

// Change is one field of a race that differs from the previous scrape
type Change struct {
	Key      string `json:"key"`
	Series   string `json:"series"`
	RaceName string `json:"race_name"`
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// DiffResult contains the results of comparing two schedule documents
type DiffResult struct {
	NewRaces []race.Race `json:"new_races"`
	Removed  []race.Race `json:"removed_races"`
	Changes  []Change    `json:"changes"`
}

// Empty reports whether nothing changed
func (d *DiffResult) Empty() bool {
	return len(d.NewRaces) == 0 && len(d.Removed) == 0 && len(d.Changes) == 0
}

// Diff compares the chronological race list of current against previous. Races
// are matched by Race.Key. A nil previous document makes every race new.
func Diff(previous, current *Document) *DiffResult {
	result := &DiffResult{
		NewRaces: make([]race.Race, 0),
		Removed:  make([]race.Race, 0),
		Changes:  make([]Change, 0),
	}

	before := make(map[string]race.Race)
	if previous != nil {
		for _, r := range previous.AllRacesChronological {
			before[r.Key()] = r
		}
	}

	seen := make(map[string]bool)
	for _, r := range current.AllRacesChronological {
		key := r.Key()
		seen[key] = true

		old, exists := before[key]
		if !exists {
			result.NewRaces = append(result.NewRaces, r)
			continue
		}
		result.Changes = append(result.Changes, detectChanges(old, r)...)
	}

	if previous != nil {
		for _, r := range previous.AllRacesChronological {
			if !seen[r.Key()] && !failedSeries(current, r.SeriesKey) {
				result.Removed = append(result.Removed, r)
			}
		}
	}

	sort.SliceStable(result.Changes, func(i, j int) bool {
		return result.Changes[i].Key < result.Changes[j].Key
	})

	return result
}

// failedSeries reports whether a series could not be fetched this run. Its races
// are not reported as removed.
func failedSeries(doc *Document, key string) bool {
	s, ok := doc.SchedulesBySeries[key]
	return ok && s.Error != ""
}

// detectChanges compares two versions of the same race
func detectChanges(previous, current race.Race) []Change {
	var changes []Change

	fields := []struct {
		name          string
		before, after string
	}{
		{ChangeDate, previous.Date, current.Date},
		{ChangeStart, previous.StartTime, current.StartTime},
		{ChangeName, previous.RaceName, current.RaceName},
		{ChangeTrack, previous.TrackName, current.TrackName},
		{ChangeTV, previous.TVNetwork, current.TVNetwork},
	}

	for _, f := range fields {
		if f.before == f.after {
			continue
		}
		changes = append(changes, Change{
			Key:      current.Key(),
			Series:   current.Series,
			RaceName: current.RaceName,
			Field:    f.name,
			OldValue: f.before,
			NewValue: f.after,
		})
	}

	return changes
}

package storage

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pfrederiksen/nascar-schedule/internal/race"
)

// CSVHeader is the fixed column list of the CSV export
var CSVHeader = []string{
	"Series", "Date", "Race Name", "Track", "State",
	"Start Time", "Laps", "TV", "Streaming", "Previous Winner",
}

// WriteCSV writes one row per race. Fields containing a comma, quote or newline are
// quoted with inner quotes doubled.
func WriteCSV(w io.Writer, races []race.Race) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, r := range races {
		row := []string{
			r.Series,
			r.DatePlain,
			r.RaceName,
			r.TrackName,
			r.State,
			r.StartTime,
			r.ScheduledLaps.String(),
			r.TVNetwork,
			r.Streaming,
			r.PreviousWinner,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for race %s: %w", r.RaceID.String(), err)
		}
	}

	cw.Flush()
	return cw.Error()
}

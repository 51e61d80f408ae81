// Package schedule assembles the interchange documents written by a scrape run.
//
// A Document holds one schedule per series plus the flat chronological list of every
// race annotated with its series; the calendar is generated from that flat list.
// A TrackDocument holds the deduplicated tracks seen across all series.
package schedule

import (
	"context"
	"time"

	"github.com/pfrederiksen/nascar-schedule/internal/logger"
	"github.com/pfrederiksen/nascar-schedule/internal/race"
	"github.com/pfrederiksen/nascar-schedule/internal/series"
)

// SeriesSchedule is the schedule of one series. Failed series carry Error instead
// of races.
type SeriesSchedule struct {
	SeriesName string      `json:"series_name"`
	SeriesID   int         `json:"series_id"`
	TotalRaces int         `json:"total_races,omitempty"`
	Races      []race.Race `json:"races,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Document is the canonical schedule document
type Document struct {
	ScrapedAt             string                     `json:"scraped_at"`
	Year                  int                        `json:"year"`
	SchedulesBySeries     map[string]*SeriesSchedule `json:"schedules_by_series"`
	AllRacesChronological []race.Race                `json:"all_races_chronological"`
}

// TotalRaces sums the races of every successfully fetched series
func (d *Document) TotalRaces() int {
	total := 0
	for _, s := range d.SchedulesBySeries {
		total += s.TotalRaces
	}
	return total
}

// TrackDocument is the deduplicated track list
type TrackDocument struct {
	ScrapedAt   string       `json:"scraped_at"`
	TotalTracks int          `json:"total_tracks"`
	Tracks      []race.Track `json:"tracks"`
}

// Builder accumulates series results in table order
type Builder struct {
	year      int
	scrapedAt time.Time
	order     []string
	schedules map[string]*SeriesSchedule
	lists     [][]race.Race
	tracks    *race.TrackSet
}

// NewBuilder creates a builder for one run
func NewBuilder(year int, scrapedAt time.Time) *Builder {
	return &Builder{
		year:      year,
		scrapedAt: scrapedAt,
		schedules: make(map[string]*SeriesSchedule),
		tracks:    race.NewTrackSet(),
	}
}

// Add records the feed entries of a series and returns its chronological races
func (b *Builder) Add(sr series.Series, raws []race.Raw) []race.Race {
	races := race.NormalizeAll(raws)
	b.tracks.AddAll(raws)

	b.order = append(b.order, sr.Key)
	b.schedules[sr.Key] = &SeriesSchedule{
		SeriesName: sr.Name,
		SeriesID:   sr.ID,
		TotalRaces: len(races),
		Races:      races,
	}
	b.lists = append(b.lists, race.Annotate(races, sr.Name, sr.Key))

	return races
}

// Fail records a series that could not be fetched
func (b *Builder) Fail(sr series.Series, err error) {
	b.order = append(b.order, sr.Key)
	b.schedules[sr.Key] = &SeriesSchedule{
		SeriesName: sr.Name,
		SeriesID:   sr.ID,
		Error:      "Failed to fetch data: " + err.Error(),
	}
}

// Order returns the series keys in the order they were recorded
func (b *Builder) Order() []string {
	return append([]string(nil), b.order...)
}

// Document returns the schedule document
func (b *Builder) Document() *Document {
	return &Document{
		ScrapedAt:             b.scrapedAt.Format(time.RFC3339),
		Year:                  b.year,
		SchedulesBySeries:     b.schedules,
		AllRacesChronological: race.Flatten(b.lists...),
	}
}

// Tracks returns the track document
func (b *Builder) Tracks() *TrackDocument {
	tracks := b.tracks.Tracks()
	return &TrackDocument{
		ScrapedAt:   b.scrapedAt.Format(time.RFC3339),
		TotalTracks: len(tracks),
		Tracks:      tracks,
	}
}

// Fetcher returns the raw feed entries of a series
type Fetcher interface {
	FetchSeries(ctx context.Context, sr series.Series) ([]race.Raw, error)
}

// Collect fetches every series of the table one after another. A failed series is
// recorded in the document and does not stop the run; only a canceled context does.
func Collect(ctx context.Context, f Fetcher, table *series.Table, now time.Time) (*Builder, error) {
	b := NewBuilder(table.Year(), now)

	for _, sr := range table.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logger.Info("fetching series", logger.Fields{
			"series": sr.Key,
			"api":    sr.APIURL,
		})

		raws, err := f.FetchSeries(ctx, sr)
		if err != nil {
			logger.Error("could not fetch schedule", logger.Fields{"series": sr.Key}, err)
			logger.IncrCounter("series.failed")
			b.Fail(sr, err)
			continue
		}

		races := b.Add(sr, raws)
		logger.Info("fetched series", logger.Fields{
			"series": sr.Key,
			"races":  len(races),
		})
	}

	return b, nil
}

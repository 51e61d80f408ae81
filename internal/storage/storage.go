package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/nascar-schedule/internal/race"
	"github.com/pfrederiksen/nascar-schedule/internal/schedule"
)

// ErrNotFound is returned when a file expected from an earlier run is missing
var ErrNotFound = errors.New("file not found")

// Storage handles the output files of one season
type Storage struct {
	dataDir string
	year    int
}

// New creates a new Storage instance
func New(dataDir string, year int) (*Storage, error) {
	if dataDir == "" {
		dataDir = "."
	}

	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
		year:    year,
	}, nil
}

// SchedulePath returns the path of the schedule document
func (s *Storage) SchedulePath() string {
	return filepath.Join(s.dataDir, fmt.Sprintf("nascar_schedules_%d.json", s.year))
}

// TracksPath returns the path of the track document
func (s *Storage) TracksPath() string {
	return filepath.Join(s.dataDir, fmt.Sprintf("nascar_tracks_%d.json", s.year))
}

// CSVPath returns the path of the CSV export
func (s *Storage) CSVPath() string {
	return filepath.Join(s.dataDir, fmt.Sprintf("nascar_schedules_%d.csv", s.year))
}

// CalendarPath returns the path of the calendar feed
func (s *Storage) CalendarPath() string {
	return filepath.Join(s.dataDir, fmt.Sprintf("nascar_%d_calendar.ics", s.year))
}

// SaveSchedule writes the schedule document
func (s *Storage) SaveSchedule(doc *schedule.Document) error {
	return writeJSON(s.SchedulePath(), doc)
}

// LoadSchedule reads the schedule document written by an earlier scrape.
// It returns ErrNotFound when the file does not exist.
func (s *Storage) LoadSchedule() (*schedule.Document, error) {
	path := s.SchedulePath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("reading schedule: %w", err)
	}

	var doc schedule.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing schedule: %w", err)
	}

	if doc.SchedulesBySeries == nil {
		doc.SchedulesBySeries = make(map[string]*schedule.SeriesSchedule)
	}

	return &doc, nil
}

// SaveTracks writes the track document
func (s *Storage) SaveTracks(doc *schedule.TrackDocument) error {
	return writeJSON(s.TracksPath(), doc)
}

// SaveCSV writes the flat race list as CSV
func (s *Storage) SaveCSV(races []race.Race) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, races); err != nil {
		return err
	}
	if err := os.WriteFile(s.CSVPath(), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}

// SaveCalendar writes the calendar feed
func (s *Storage) SaveCalendar(ics string) error {
	if err := os.WriteFile(s.CalendarPath(), []byte(ics), 0644); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

// writeJSON writes v as indented UTF-8 JSON. HTML characters are kept as-is.
func writeJSON(path string, v interface{}) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Package series holds the table of racing series the tool collects.
//
// The table is built once, either from the built-in defaults for a season or from a
// YAML file, and is read-only afterwards: accessors hand out copies.
package series

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultYear = 2026

	feedURLFormat = "https://cf.nascar.com/cacher/%d/%d/schedule-combined-feed.json"
	pageURLFormat = "https://www.nascar.com/%s/%d/schedule/"
)

// Series describes one racing series and where its schedule is published
type Series struct {
	Key     string `yaml:"key" json:"key"`
	Name    string `yaml:"name" json:"name"`
	ID      int    `yaml:"series_id" json:"series_id"`
	APIURL  string `yaml:"api_url" json:"api_url"`
	PageURL string `yaml:"page_url" json:"page_url"`

	// Slug is the series path segment on nascar.com, used to build PageURL
	Slug string `yaml:"slug" json:"slug,omitempty"`
}

var builtin = []Series{
	{Key: "nascar_cup_series", Name: "NASCAR Cup Series", ID: 1, Slug: "nascar-cup-series"},
	{Key: "xfinity_series", Name: "NASCAR Xfinity Series", ID: 2, Slug: "nascar-xfinity-series"},
	{Key: "craftsman_truck_series", Name: "NASCAR Craftsman Truck Series", ID: 3, Slug: "nascar-craftsman-truck-series"},
}

// Table is an ordered, immutable set of series
type Table struct {
	year    int
	entries []Series
}

// New builds a table from entries. The entries are copied.
func New(year int, entries []Series) (*Table, error) {
	t := &Table{
		year:    year,
		entries: append([]Series(nil), entries...),
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Default returns the three built-in series for a season
func Default(year int) *Table {
	entries := make([]Series, len(builtin))
	copy(entries, builtin)
	setDefaults(entries, year)

	return &Table{year: year, entries: entries}
}

// Year returns the season the table describes
func (t *Table) Year() int {
	return t.year
}

// All returns a copy of the series in table order
func (t *Table) All() []Series {
	return append([]Series(nil), t.entries...)
}

// Len returns the number of series
func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup finds a series by key
func (t *Table) Lookup(key string) (Series, bool) {
	for _, s := range t.entries {
		if s.Key == key {
			return s, true
		}
	}
	return Series{}, false
}

func (t *Table) validate() error {
	if len(t.entries) == 0 {
		return fmt.Errorf("no series configured")
	}

	seen := make(map[string]bool)
	for i, s := range t.entries {
		if s.Key == "" {
			return fmt.Errorf("series %d: key is required", i)
		}
		if seen[s.Key] {
			return fmt.Errorf("series %q: duplicate key", s.Key)
		}
		seen[s.Key] = true

		if s.Name == "" {
			return fmt.Errorf("series %q: name is required", s.Key)
		}
		if s.APIURL == "" {
			return fmt.Errorf("series %q: api_url is required", s.Key)
		}
	}
	return nil
}

// file is the on-disk shape of a series table
type file struct {
	Year   int      `yaml:"year"`
	Series []Series `yaml:"series"`
}

// Load reads a series table from a YAML file. An empty path returns the defaults
// for year. A year set in the file takes precedence over the year argument.
func Load(path string, year int) (*Table, error) {
	if year == 0 {
		year = DefaultYear
	}
	if path == "" {
		return Default(year), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading series config: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing series config: %w", err)
	}

	if f.Year != 0 {
		year = f.Year
	}
	setDefaults(f.Series, year)

	t, err := New(year, f.Series)
	if err != nil {
		return nil, fmt.Errorf("invalid series config %s: %w", path, err)
	}
	return t, nil
}

// setDefaults fills URLs left out of a config file. The feed URL comes from the series
// id. The page URL needs a slug, taken from the entry or from the built-in series with
// the same key; without one the page URL stays empty and no page lookup is done.
func setDefaults(entries []Series, year int) {
	for i := range entries {
		s := &entries[i]
		s.Key = strings.TrimSpace(s.Key)
		s.Name = strings.TrimSpace(s.Name)
		s.Slug = strings.TrimSpace(s.Slug)
		if s.Slug == "" {
			s.Slug = builtinSlug(s.Key)
		}
		if s.APIURL == "" && s.ID > 0 {
			s.APIURL = fmt.Sprintf(feedURLFormat, year, s.ID)
		}
		if s.PageURL == "" && s.Slug != "" {
			s.PageURL = fmt.Sprintf(pageURLFormat, s.Slug, year)
		}
	}
}

func builtinSlug(key string) string {
	for _, b := range builtin {
		if b.Key == key {
			return b.Slug
		}
	}
	return ""
}

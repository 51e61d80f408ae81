package race

import (
	"sort"
	"strings"
)

// Track is the canonical track record
type Track struct {
	TrackID                 Value  `json:"track_id"`
	TrackName               string `json:"track_name"`
	AltTrackName            string `json:"alt_track_name"`
	State                   string `json:"state"`
	TrackPageURL            string `json:"track_page_url"`
	TrackImageURL           string `json:"track_image_url"`
	TrackBackgroundImageURL string `json:"track_background_image_url"`
}

// ExtractTrack builds the track record carried by a feed entry
func ExtractTrack(raw Raw) Track {
	return Track{
		TrackID:                 raw.TrackID,
		TrackName:               clean(raw.TrackName),
		AltTrackName:            clean(raw.AltTrackName),
		State:                   clean(raw.State),
		TrackPageURL:            clean(raw.TrackPageURL),
		TrackImageURL:           clean(raw.TrackImageURL),
		TrackBackgroundImageURL: clean(raw.TrackBackgroundImageURL),
	}
}

// TrackSet collects tracks keyed by track id. The first entry seen for an id wins
// and is never updated afterwards.
type TrackSet struct {
	tracks map[string]Track
}

// NewTrackSet creates an empty track set
func NewTrackSet() *TrackSet {
	return &TrackSet{
		tracks: make(map[string]Track),
	}
}

// Add records the track of a feed entry unless its id is already known.
// Entries without a usable track id are ignored. Returns true if the track was added.
func (s *TrackSet) Add(raw Raw) bool {
	if raw.TrackID.IsZero() {
		return false
	}
	key := strings.TrimSpace(raw.TrackID.String())
	if _, exists := s.tracks[key]; exists {
		return false
	}
	s.tracks[key] = ExtractTrack(raw)
	return true
}

// AddAll adds every entry in order
func (s *TrackSet) AddAll(raws []Raw) {
	for _, raw := range raws {
		s.Add(raw)
	}
}

// Len returns the number of distinct tracks
func (s *TrackSet) Len() int {
	return len(s.tracks)
}

// Tracks returns the tracks sorted by name
func (s *TrackSet) Tracks() []Track {
	out := make([]Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TrackName != out[j].TrackName {
			return out[i].TrackName < out[j].TrackName
		}
		// map order is random; fall back to id for a stable listing
		return out[i].TrackID.String() < out[j].TrackID.String()
	})
	return out
}

package race

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Text is a provider text field. JSON null decodes to "", strings decode as-is and
// any other scalar keeps its literal text (200 -> "200").
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(data)
	return nil
}

// Value is a provider numeric field. The JSON literal is kept verbatim so that
// identifiers and lap counts round-trip exactly as the feed sent them, null included.
type Value struct {
	raw json.RawMessage
}

// Int returns a Value holding n
func Int(n int64) Value {
	return Value{raw: json.RawMessage(strconv.FormatInt(n, 10))}
}

// UnmarshalJSON implements json.Unmarshaler
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		v.raw = nil
		return nil
	}
	v.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v.raw) == 0 {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// IsNull reports whether the feed sent null or omitted the field
func (v Value) IsNull() bool {
	return len(v.raw) == 0
}

// String returns the text form of the value, "" for null
func (v Value) String() string {
	if len(v.raw) == 0 {
		return ""
	}
	if v.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(v.raw, &s); err == nil {
			return s
		}
	}
	return string(v.raw)
}

// Int64 returns the value as an integer when it holds one
func (v Value) Int64() (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(v.String()), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsZero reports whether the value is null, empty or numerically zero
func (v Value) IsZero() bool {
	s := strings.TrimSpace(v.String())
	if s == "" {
		return true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f == 0
	}
	return false
}

// Raw is a race entry as published by the schedule feed
type Raw struct {
	RaceName       Text  `json:"Race_Name"`
	RaceID         Value `json:"Race_Id"`
	TrackName      Text  `json:"Track_Name"`
	TrackID        Value `json:"Track_Id"`
	State          Text  `json:"Race_State"`
	Date           Text  `json:"Race_Date"`
	DatePlain      Text  `json:"Race_Date_Plain"`
	Start          Text  `json:"Race_Start"`
	ScheduledLaps  Value `json:"Scheduled_Laps"`
	ActualLaps     Value `json:"Actual_Laps"`
	QualifyingDate Text  `json:"Qualifying_Date"`
	PlayoffRound   Text  `json:"Playoff_Round"`
	TV             Text  `json:"Race_TV"`
	Radio          Text  `json:"Race_Radio"`
	LiveStream     Text  `json:"Race_Live_Stream"`
	InCar          Text  `json:"Race_In_Car"`
	Tickets        Text  `json:"Race_Tickets"`
	URL            Text  `json:"Race_URL"`
	PreviousWinner Text  `json:"Previous_Winner_Name"`

	AltTrackName            Text `json:"Alt_Track_Name"`
	TrackPageURL            Text `json:"Track_Page_URL"`
	TrackImageURL           Text `json:"Track_Image_URL"`
	TrackBackgroundImageURL Text `json:"Track_Background_Image_URL"`
}

// Race is the canonical race record
type Race struct {
	RaceName       string `json:"race_name"`
	RaceID         Value  `json:"race_id"`
	TrackName      string `json:"track_name"`
	TrackID        Value  `json:"track_id"`
	State          string `json:"state"`
	Date           string `json:"date"`       // "2026-02-15T14:30:00-0500"
	DatePlain      string `json:"date_plain"` // sorts lexicographically
	StartTime      string `json:"start_time"`
	ScheduledLaps  Value  `json:"scheduled_laps"`
	ActualLaps     Value  `json:"actual_laps"`
	QualifyingDate string `json:"qualifying_date"`
	PlayoffRound   string `json:"playoff_round"`
	TVNetwork      string `json:"tv_network"`
	Radio          string `json:"radio"`
	Streaming      string `json:"streaming"`
	InCarCamera    string `json:"in_car_camera"`
	TicketsURL     string `json:"tickets_url"`
	RaceURL        string `json:"race_url"`
	PreviousWinner string `json:"previous_winner"`

	// Set once races from several series are merged
	Series    string `json:"series,omitempty"`
	SeriesKey string `json:"series_key,omitempty"`
}

// Key identifies a race within a series. The same race id under two series
// names yields two keys.
func (r Race) Key() string {
	return r.IDText() + "-" + r.Series
}

// IDText is the race id as used in keys and calendar UIDs. A null id reads "None"
// so UIDs match those issued by earlier versions of the scraper.
func (r Race) IDText() string {
	if r.RaceID.IsNull() {
		return "None"
	}
	return r.RaceID.String()
}

// Normalize maps a feed entry onto the canonical race record. It never fails.
func Normalize(raw Raw) Race {
	return Race{
		RaceName:       clean(raw.RaceName),
		RaceID:         raw.RaceID,
		TrackName:      clean(raw.TrackName),
		TrackID:        raw.TrackID,
		State:          clean(raw.State),
		Date:           clean(raw.Date),
		DatePlain:      clean(raw.DatePlain),
		StartTime:      clean(raw.Start),
		ScheduledLaps:  raw.ScheduledLaps,
		ActualLaps:     raw.ActualLaps,
		QualifyingDate: clean(raw.QualifyingDate),
		PlayoffRound:   clean(raw.PlayoffRound),
		TVNetwork:      clean(raw.TV),
		Radio:          clean(raw.Radio),
		Streaming:      clean(raw.LiveStream),
		InCarCamera:    clean(raw.InCar),
		TicketsURL:     clean(raw.Tickets),
		RaceURL:        clean(raw.URL),
		PreviousWinner: clean(raw.PreviousWinner),
	}
}

// NormalizeAll normalizes a series' feed entries and returns them in date order
func NormalizeAll(raws []Raw) []Race {
	races := make([]Race, 0, len(raws))
	for _, raw := range raws {
		races = append(races, Normalize(raw))
	}
	SortByDatePlain(races)
	return races
}

func clean(t Text) string {
	return strings.TrimSpace(string(t))
}

package race

import (
	"encoding/json"
	"strings"
	"testing"
)

const sampleFeedEntry = `{
	"Race_Name": "  DAYTONA 500 ",
	"Race_Id": 5123,
	"Track_Name": "Daytona International Speedway",
	"Track_Id": 105,
	"Race_State": "FL",
	"Race_Date": "2026-02-15T14:30:00-0500",
	"Race_Date_Plain": "2026-02-15",
	"Race_Start": "2:30 PM",
	"Scheduled_Laps": 200,
	"Actual_Laps": null,
	"Race_TV": "FOX",
	"Race_Radio": "MRN",
	"Race_Live_Stream": null,
	"Race_URL": "https://www.nascar.com/daytona-500 ",
	"Previous_Winner_Name": "William Byron",
	"Alt_Track_Name": "Daytona",
	"Track_Page_URL": "https://www.nascar.com/tracks/daytona"
}`

func TestNormalize(t *testing.T) {
	var raw Raw
	if err := json.Unmarshal([]byte(sampleFeedEntry), &raw); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	r := Normalize(raw)

	if r.RaceName != "DAYTONA 500" {
		t.Errorf("RaceName = %q, want trimmed %q", r.RaceName, "DAYTONA 500")
	}
	if r.RaceURL != "https://www.nascar.com/daytona-500" {
		t.Errorf("RaceURL = %q, want trimmed", r.RaceURL)
	}
	if id, ok := r.RaceID.Int64(); !ok || id != 5123 {
		t.Errorf("RaceID = %v (%v), want 5123", id, ok)
	}
	if laps := r.ScheduledLaps.String(); laps != "200" {
		t.Errorf("ScheduledLaps = %q, want 200", laps)
	}
	if !r.ActualLaps.IsNull() {
		t.Errorf("ActualLaps = %q, want null passed through", r.ActualLaps.String())
	}
	if r.Streaming != "" {
		t.Errorf("Streaming = %q, want empty for null", r.Streaming)
	}
	if r.Series != "" || r.SeriesKey != "" {
		t.Error("Normalize() should not set series annotation")
	}
}

func TestNormalize_MissingFieldsAreEmpty(t *testing.T) {
	var raw Raw
	if err := json.Unmarshal([]byte(`{"Race_Id": 1}`), &raw); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	r := Normalize(raw)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	textFields := []string{
		"race_name", "track_name", "state", "date", "date_plain", "start_time",
		"qualifying_date", "playoff_round", "tv_network", "radio", "streaming",
		"in_car_camera", "tickets_url", "race_url", "previous_winner",
	}
	for _, name := range textFields {
		v, ok := fields[name]
		if !ok {
			t.Errorf("field %s missing from canonical record", name)
			continue
		}
		if v != "" {
			t.Errorf("field %s = %v, want empty string", name, v)
		}
	}

	// numeric fields pass through, including null
	if fields["race_id"] != float64(1) {
		t.Errorf("race_id = %v, want 1", fields["race_id"])
	}
	if fields["scheduled_laps"] != nil {
		t.Errorf("scheduled_laps = %v, want null", fields["scheduled_laps"])
	}
}

func TestText_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"FOX"`, "FOX"},
		{`null`, ""},
		{`""`, ""},
		{`200`, "200"},
		{`true`, "true"},
		{`"  padded  "`, "  padded  "},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got Text
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.input, err)
			}
			if string(got) != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValue_RoundTrip(t *testing.T) {
	tests := []string{`5123`, `null`, `"267"`, `12.5`}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			var v Value
			if err := json.Unmarshal([]byte(input), &v); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", input, err)
			}
			out, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			if string(out) != input {
				t.Errorf("round trip of %s = %s", input, out)
			}
		})
	}
}

func TestValue_IsZero(t *testing.T) {
	tests := []struct {
		value Value
		want  bool
	}{
		{Value{}, true},
		{Int(0), true},
		{Int(400), false},
		{Value{raw: json.RawMessage(`"0"`)}, true},
		{Value{raw: json.RawMessage(`""`)}, true},
		{Value{raw: json.RawMessage(`"TBD"`)}, false},
	}

	for _, tt := range tests {
		if got := tt.value.IsZero(); got != tt.want {
			t.Errorf("Value(%s).IsZero() = %v, want %v", tt.value.String(), got, tt.want)
		}
	}
}

func TestRace_Key(t *testing.T) {
	a := Race{RaceID: Int(5123), Series: "NASCAR Cup Series"}
	b := Race{RaceID: Int(5123), Series: "NASCAR Xfinity Series"}

	if a.Key() == b.Key() {
		t.Error("same race id under different series should have different keys")
	}
	if !strings.HasPrefix(a.Key(), "5123-") {
		t.Errorf("Key() = %q, want race id prefix", a.Key())
	}

	null := Race{Series: "NASCAR Cup Series"}
	if got := null.Key(); got != "None-NASCAR Cup Series" {
		t.Errorf("Key() with null id = %q, want %q", got, "None-NASCAR Cup Series")
	}
	if got := a.IDText(); got != "5123" {
		t.Errorf("IDText() = %q, want 5123", got)
	}
}

func TestNormalizeAll_SortsByDatePlain(t *testing.T) {
	raws := []Raw{
		{RaceName: "Third", DatePlain: "2026-03-01"},
		{RaceName: "First", DatePlain: "2026-02-15"},
		{RaceName: "Second A", DatePlain: "2026-02-22"},
		{RaceName: "Second B", DatePlain: "2026-02-22"},
	}

	races := NormalizeAll(raws)

	want := []string{"First", "Second A", "Second B", "Third"}
	for i, name := range want {
		if races[i].RaceName != name {
			t.Errorf("races[%d] = %q, want %q", i, races[i].RaceName, name)
		}
	}
}

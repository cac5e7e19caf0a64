package balloon

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("bad fixture %q: %v", s, err)
	}
	return v
}

func TestParsePosition(t *testing.T) {
	cases := []struct {
		name  string
		entry string
		ok    bool
	}{
		{"valid", `[10.5, -20.25, 12]`, true},
		{"bounds inclusive", `[90, 180, 0]`, true},
		{"negative bounds", `[-90, -180, 49.99]`, true},
		{"extra elements", `[1, 2, 3, 4]`, true},
		{"altitude upper bound exclusive", `[1, 2, 50]`, false},
		{"negative altitude", `[1, 2, -0.1]`, false},
		{"latitude too high", `[90.01, 0, 1]`, false},
		{"longitude too low", `[0, -180.5, 1]`, false},
		{"too short", `[1, 2]`, false},
		{"string member", `["1", 2, 3]`, false},
		{"null member", `[1, null, 3]`, false},
		{"not a tuple", `{"lat": 1}`, false},
		{"bare number", `5`, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, ok := ParsePosition(decode(t, c.entry))
			if ok != c.ok {
				t.Fatalf("ParsePosition(%s) ok = %v, want %v", c.entry, ok, c.ok)
			}
		})
	}
}

func TestParseSnapshotDropsInvalidEntries(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	body := []byte(`[[1,2,3],[1,2],["x",1,1],[95,0,1],[-10,170,20.5]]`)

	snap, err := ParseSnapshot(3, now, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Len() != 2 {
		t.Fatalf("expected 2 valid positions, got %d", snap.Len())
	}
	for _, p := range snap.Balloons() {
		if !p.Valid() {
			t.Fatalf("invalid position survived ingestion: %+v", p)
		}
	}
	if snap.HoursAgo() != 3 {
		t.Fatalf("expected hoursAgo 3, got %d", snap.HoursAgo())
	}
	if want := now.Add(-3 * time.Hour); !snap.Timestamp().Equal(want) {
		t.Fatalf("expected timestamp %v, got %v", want, snap.Timestamp())
	}
}

func TestParseSnapshotRejectsNonArray(t *testing.T) {
	for _, body := range []string{`{"error":"nope"}`, `"text"`, `null`, `not json`} {
		if _, err := ParseSnapshot(0, time.Now(), []byte(body)); !errors.Is(err, ErrNotArray) {
			t.Fatalf("ParseSnapshot(%s) err = %v, want ErrNotArray", body, err)
		}
	}
}

func TestDecodeEntriesKeepsRawItems(t *testing.T) {
	entries, err := DecodeEntries([]byte(`[[1,2,3], {"a":1}, [1,2]]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 || string(entries[1]) != `{"a":1}` {
		t.Fatalf("unexpected entries %q", entries)
	}
	if snap := SnapshotFromEntries(0, time.Now(), entries); snap.Len() != 1 {
		t.Fatalf("expected 1 valid position, got %d", snap.Len())
	}

	empty, err := DecodeEntries([]byte(`[]`))
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty array: entries %v err %v", empty, err)
	}
	if _, err := DecodeEntries([]byte(`null`)); !errors.Is(err, ErrNotArray) {
		t.Fatalf("null: err = %v, want ErrNotArray", err)
	}
}

func TestSnapshotIsImmutable(t *testing.T) {
	snap := NewSnapshot(0, time.Now(), []Position{{Latitude: 1, Longitude: 2, Altitude: 3}})

	got := snap.Balloons()
	got[0].Altitude = 99

	if snap.At(0).Altitude != 3 {
		t.Fatalf("snapshot mutated through Balloons() copy")
	}
}

func TestSnapshotMarshalJSON(t *testing.T) {
	snap := NewSnapshot(2, time.Now(), nil)
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out struct {
		HoursAgo int               `json:"hoursAgo"`
		Balloons []json.RawMessage `json:"balloons"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.HoursAgo != 2 || out.Balloons == nil || len(out.Balloons) != 0 {
		t.Fatalf("unexpected json %s", data)
	}
}

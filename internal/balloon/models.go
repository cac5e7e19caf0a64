package balloon

import (
	"encoding/json"
	"errors"
	"time"
)

// Altitude bounds in km. MaxAltitude is exclusive.
const (
	MinAltitude = 0
	MaxAltitude = 50
)

// ErrNotArray is returned when an hour's payload is not a JSON array.
var ErrNotArray = errors.New("balloon payload is not an array")

// Position is a single balloon reading.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"` // km
}

// Valid reports whether the position is within the accepted ranges.
func (p Position) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180 &&
		p.Altitude >= MinAltitude && p.Altitude < MaxAltitude
}

// ParsePosition converts a decoded [lat, lon, alt] tuple into a Position.
// Tuples with fewer than three elements, non-numeric members or
// out-of-range values are rejected. Extra trailing elements are ignored.
func ParsePosition(entry any) (Position, bool) {
	tuple, ok := entry.([]any)
	if !ok || len(tuple) < 3 {
		return Position{}, false
	}

	var vals [3]float64
	for i := range vals {
		f, ok := tuple[i].(float64)
		if !ok {
			return Position{}, false
		}
		vals[i] = f
	}

	p := Position{Latitude: vals[0], Longitude: vals[1], Altitude: vals[2]}
	if !p.Valid() {
		return Position{}, false
	}
	return p, true
}

// Snapshot is one hour's validated balloon positions.
// Construct with NewSnapshot; the zero value is an empty snapshot.
type Snapshot struct {
	hoursAgo  int
	timestamp time.Time
	balloons  []Position
}

// NewSnapshot builds a snapshot from positions. Invalid positions are dropped.
func NewSnapshot(hoursAgo int, now time.Time, positions []Position) Snapshot {
	valid := make([]Position, 0, len(positions))
	for _, p := range positions {
		if p.Valid() {
			valid = append(valid, p)
		}
	}
	return Snapshot{
		hoursAgo:  hoursAgo,
		timestamp: now.Add(-time.Duration(hoursAgo) * time.Hour).UTC(),
		balloons:  valid,
	}
}

// ParseSnapshot decodes an upstream body into a snapshot.
// It returns ErrNotArray when the body is not a JSON array.
func ParseSnapshot(hoursAgo int, now time.Time, body []byte) (Snapshot, error) {
	entries, err := DecodeEntries(body)
	if err != nil {
		return Snapshot{}, err
	}
	return SnapshotFromEntries(hoursAgo, now, entries), nil
}

// DecodeEntries splits a body into its top-level array entries without
// interpreting them. A body that is not a JSON array (null included) yields ErrNotArray.
func DecodeEntries(body []byte) ([]json.RawMessage, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil || entries == nil {
		return nil, ErrNotArray
	}
	return entries, nil
}

// SnapshotFromEntries keeps the entries that parse as valid positions.
func SnapshotFromEntries(hoursAgo int, now time.Time, entries []json.RawMessage) Snapshot {
	positions := make([]Position, 0, len(entries))
	for _, raw := range entries {
		var e any
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		if p, ok := ParsePosition(e); ok {
			positions = append(positions, p)
		}
	}
	return NewSnapshot(hoursAgo, now, positions)
}

func (s Snapshot) HoursAgo() int        { return s.hoursAgo }
func (s Snapshot) Timestamp() time.Time { return s.timestamp }
func (s Snapshot) Len() int             { return len(s.balloons) }

// At returns the i-th position.
func (s Snapshot) At(i int) Position { return s.balloons[i] }

// Balloons returns a copy of the positions.
func (s Snapshot) Balloons() []Position {
	out := make([]Position, len(s.balloons))
	copy(out, s.balloons)
	return out
}

type snapshotJSON struct {
	HoursAgo  int        `json:"hoursAgo"`
	Timestamp time.Time  `json:"timestamp"`
	Balloons  []Position `json:"balloons"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	balloons := s.balloons
	if balloons == nil {
		balloons = []Position{}
	}
	return json.Marshal(snapshotJSON{
		HoursAgo:  s.hoursAgo,
		Timestamp: s.timestamp,
		Balloons:  balloons,
	})
}

// Summary is the listing view of a snapshot.
type Summary struct {
	HoursAgo  int       `json:"hoursAgo"`
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
}

func (s Snapshot) Summary() Summary {
	return Summary{HoursAgo: s.hoursAgo, Timestamp: s.timestamp, Count: len(s.balloons)}
}

package stats

import (
	"time"

	"github.com/i474232898/balloon-tracker/internal/balloon"
)

// Summary is the derived view shown next to the map.
type Summary struct {
	Balloons      int        `json:"balloons"`
	MeanAltitude  float64    `json:"meanAltitudeKm"`
	DataAgeHours  int        `json:"dataAgeHours"`
	WeatherPoints int        `json:"weatherPoints"`
	HoursLoaded   int        `json:"hoursLoaded"`
	LoadedAt      *time.Time `json:"loadedAt,omitempty"`
}

// Compute summarizes the current snapshot. A nil snapshot yields zeros.
func Compute(snap *balloon.Snapshot, weatherPoints int) Summary {
	s := Summary{WeatherPoints: weatherPoints}
	if snap == nil {
		return s
	}

	s.Balloons = snap.Len()
	s.DataAgeHours = snap.HoursAgo()
	s.MeanAltitude = MeanAltitude(snap.Balloons())
	return s
}

// MeanAltitude averages altitudes; it is 0 for no positions.
func MeanAltitude(positions []balloon.Position) float64 {
	if len(positions) == 0 {
		return 0
	}
	var sum float64
	for _, p := range positions {
		sum += p.Altitude
	}
	return sum / float64(len(positions))
}

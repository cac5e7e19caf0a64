package weather

import (
	"fmt"

	"github.com/i474232898/balloon-tracker/internal/common"
)

// DescriptionUnknown is used for weather codes outside the table.
const DescriptionUnknown = "Unknown"

// WMO weather interpretation codes reported by Open-Meteo.
var descriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	95: "Thunderstorm",
}

// Describe maps a weather code to its description.
func Describe(code int) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return DescriptionUnknown
}

// Sample is the current weather at a coordinate.
type Sample struct {
	Temperature   float64 `json:"temperature"`   // °C
	Humidity      float64 `json:"humidity"`      // %
	Precipitation float64 `json:"precipitation"` // mm
	WeatherCode   float64 `json:"weatherCode"`
	WindSpeed     float64 `json:"windSpeed"`     // km/h
	WindDirection float64 `json:"windDirection"` // degrees
	Pressure      float64 `json:"pressure"`      // hPa
	Description   string  `json:"description"`
}

// Key identifies a coordinate rounded to one decimal place.
type Key struct {
	Lat float64
	Lon float64
}

// KeyFor rounds a coordinate into a cache key.
func KeyFor(lat, lon float64) Key {
	return Key{Lat: common.RoundTo(lat, 1), Lon: common.RoundTo(lon, 1)}
}

func (k Key) String() string {
	return fmt.Sprintf("%.1f,%.1f", k.Lat, k.Lon)
}

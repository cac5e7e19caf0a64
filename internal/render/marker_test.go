package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/i474232898/balloon-tracker/internal/balloon"
	"github.com/i474232898/balloon-tracker/internal/weather"
)

func TestColorFor(t *testing.T) {
	cases := map[float64]Color{
		5:     ColorBlue,
		9.99:  ColorBlue,
		10:    ColorGreen,
		12:    ColorGreen,
		15:    ColorOrange,
		18:    ColorOrange,
		20:    ColorRed,
		25:    ColorRed,
		49.99: ColorRed,
	}
	for alt, want := range cases {
		if got := ColorFor(alt); got != want {
			t.Fatalf("ColorFor(%v) = %s, want %s", alt, got, want)
		}
	}
}

func TestLegendMatchesColorFor(t *testing.T) {
	for _, b := range Legend {
		if b.Below == 0 {
			continue
		}
		if got := ColorFor(b.Below - 0.001); got != b.Color {
			t.Fatalf("band %s: ColorFor just below %v = %s", b.Name, b.Below, got)
		}
	}
}

func mustMarker(t *testing.T, i int, p balloon.Position, w *weather.Sample) Marker {
	t.Helper()
	m, err := NewMarker(i, p, w)
	if err != nil {
		t.Fatalf("NewMarker(%d): %v", i, err)
	}
	return m
}

func TestPopupWithoutWeather(t *testing.T) {
	m := mustMarker(t, 0, balloon.Position{Latitude: 12.345678, Longitude: -98.7, Altitude: 17.456}, nil)

	if m.Color != ColorOrange {
		t.Fatalf("expected orange, got %s", m.Color)
	}
	for _, want := range []string{"Balloon #1", "12.3457°, -98.7000°", "17.46 km"} {
		if !strings.Contains(m.Popup, want) {
			t.Fatalf("popup missing %q: %s", want, m.Popup)
		}
	}
	if strings.Contains(m.Popup, "Weather Conditions") {
		t.Fatalf("popup should not have a weather section: %s", m.Popup)
	}
}

func TestPopupWithWeather(t *testing.T) {
	w := &weather.Sample{
		Temperature:   -3.5,
		Humidity:      81,
		WindSpeed:     22.1,
		WindDirection: 140,
		Pressure:      1008.4,
		Description:   "Slight snow",
	}
	m := mustMarker(t, 4, balloon.Position{Latitude: 1, Longitude: 2, Altitude: 3}, w)

	for _, want := range []string{
		"Balloon #5",
		"Weather Conditions",
		"Slight snow",
		"-3.5°C",
		"81%",
		"22.1 km/h at 140°",
		"1008.4 hPa",
	} {
		if !strings.Contains(m.Popup, want) {
			t.Fatalf("popup missing %q: %s", want, m.Popup)
		}
	}
}

func TestLayerFeatureCollection(t *testing.T) {
	l := NewLayer()
	l.add(mustMarker(t, 0, balloon.Position{Latitude: 10, Longitude: 20, Altitude: 5}, nil))
	l.add(mustMarker(t, 1, balloon.Position{Latitude: -10, Longitude: -20, Altitude: 25}, &weather.Sample{Description: "Overcast"}))

	data, err := l.FeatureCollection().MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(data, &fc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("unexpected collection %s", data)
	}
	first := fc.Features[0]
	if first.Geometry.Coordinates[0] != 20 || first.Geometry.Coordinates[1] != 10 {
		t.Fatalf("expected [lon, lat] ordering, got %v", first.Geometry.Coordinates)
	}
	if first.Properties["color"] != string(ColorBlue) {
		t.Fatalf("unexpected color %v", first.Properties["color"])
	}
	if _, ok := first.Properties["weather"]; ok {
		t.Fatalf("marker without weather should not carry a weather property")
	}
	if _, ok := fc.Features[1].Properties["weather"]; !ok {
		t.Fatalf("expected weather property on second marker")
	}
}

func TestLayerDestroyRefusesMarkers(t *testing.T) {
	l := NewLayer()
	l.Destroy()
	if l.add(mustMarker(t, 0, balloon.Position{}, nil)) {
		t.Fatalf("destroyed layer accepted a marker")
	}
	if !l.Destroyed() || l.Len() != 0 {
		t.Fatalf("unexpected layer state after Destroy")
	}
}

package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/i474232898/balloon-tracker/internal/balloon"
	"github.com/i474232898/balloon-tracker/internal/weather"
)

// Color is a marker fill color.
type Color string

const (
	ColorBlue   Color = "#3b82f6"
	ColorGreen  Color = "#22c55e"
	ColorOrange Color = "#f59e0b"
	ColorRed    Color = "#ef4444"
)

// Band is one altitude band of the legend.
type Band struct {
	Name  string  `json:"name"`
	Color Color   `json:"color"`
	Label string  `json:"label"`
	Below float64 `json:"below,omitempty"` // upper bound in km, 0 for the open band
}

// Legend lists the altitude bands in ascending order.
var Legend = []Band{
	{Name: "blue", Color: ColorBlue, Label: "Low Altitude (< 10km)", Below: 10},
	{Name: "green", Color: ColorGreen, Label: "Medium Altitude (10-15km)", Below: 15},
	{Name: "orange", Color: ColorOrange, Label: "High Altitude (15-20km)", Below: 20},
	{Name: "red", Color: ColorRed, Label: "Very High Altitude (> 20km)"},
}

// ColorFor returns the band color for an altitude in km.
func ColorFor(altitude float64) Color {
	switch {
	case altitude < 10:
		return ColorBlue
	case altitude < 15:
		return ColorGreen
	case altitude < 20:
		return ColorOrange
	default:
		return ColorRed
	}
}

// Marker is one placed balloon on the map layer.
type Marker struct {
	Index    int              `json:"index"`
	Position balloon.Position `json:"position"`
	Color    Color            `json:"color"`
	Popup    string           `json:"popup"`
	Weather  *weather.Sample  `json:"weather,omitempty"`
}

// NewMarker builds the marker for the i-th position. w may be nil.
func NewMarker(i int, p balloon.Position, w *weather.Sample) (Marker, error) {
	popup, err := popupHTML(i, p, w)
	if err != nil {
		return Marker{}, err
	}
	return Marker{
		Index:    i,
		Position: p,
		Color:    ColorFor(p.Altitude),
		Popup:    popup,
		Weather:  w,
	}, nil
}

var popupTmpl = template.Must(template.New("popup").Funcs(template.FuncMap{
	"num": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}).Parse(`<div class="balloon-popup">` +
	`<h3>Balloon #{{.Number}}</h3>` +
	`<p><strong>Position:</strong> {{printf "%.4f" .P.Latitude}}°, {{printf "%.4f" .P.Longitude}}°</p>` +
	`<p><strong>Altitude:</strong> {{printf "%.2f" .P.Altitude}} km</p>` +
	`{{with .W}}<hr><h4>Weather Conditions</h4>` +
	`<p><strong>Condition:</strong> {{.Description}}</p>` +
	`<p><strong>Temperature:</strong> {{num .Temperature}}°C</p>` +
	`<p><strong>Humidity:</strong> {{num .Humidity}}%</p>` +
	`<p><strong>Wind:</strong> {{num .WindSpeed}} km/h at {{num .WindDirection}}°</p>` +
	`<p><strong>Pressure:</strong> {{num .Pressure}} hPa</p>{{end}}` +
	`</div>`))

func popupHTML(i int, p balloon.Position, w *weather.Sample) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Number int
		P      balloon.Position
		W      *weather.Sample
	}{Number: i + 1, P: p, W: w}

	if err := popupTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render popup for balloon %d: %w", i+1, err)
	}
	return buf.String(), nil
}

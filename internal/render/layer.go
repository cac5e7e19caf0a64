package render

import (
	"sync"

	geojson "github.com/paulmach/go.geojson"
)

// Layer holds the markers currently on the map.
// It lives from NewLayer until Destroy; afterwards it refuses new markers.
type Layer struct {
	mu        sync.RWMutex
	markers   []Marker
	destroyed bool
}

func NewLayer() *Layer {
	return &Layer{}
}

// add places a marker; it reports false once the layer is destroyed.
func (l *Layer) add(m Marker) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.destroyed {
		return false
	}
	l.markers = append(l.markers, m)
	return true
}

// Clear removes every marker.
func (l *Layer) Clear() {
	l.mu.Lock()
	l.markers = nil
	l.mu.Unlock()
}

// Destroy clears the layer and ends its lifecycle.
func (l *Layer) Destroy() {
	l.mu.Lock()
	l.markers = nil
	l.destroyed = true
	l.mu.Unlock()
}

func (l *Layer) Destroyed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.destroyed
}

func (l *Layer) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.markers)
}

// Markers returns a copy of the placed markers in placement order.
func (l *Layer) Markers() []Marker {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Marker, len(l.markers))
	copy(out, l.markers)
	return out
}

// FeatureCollection exports the layer as GeoJSON points ([lon, lat]).
func (l *Layer) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range l.Markers() {
		f := geojson.NewPointFeature([]float64{m.Position.Longitude, m.Position.Latitude})
		f.SetProperty("index", m.Index)
		f.SetProperty("altitude", m.Position.Altitude)
		f.SetProperty("color", string(m.Color))
		f.SetProperty("popup", m.Popup)
		if m.Weather != nil {
			f.SetProperty("weather", m.Weather)
		}
		fc.AddFeature(f)
	}
	return fc
}

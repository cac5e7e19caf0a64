package weather

import "context"

// Provider abstracts a current-conditions source (e.g. Open-Meteo).
type Provider interface {
	Name() string
	Current(ctx context.Context, lat, lon float64) (Sample, error)
}

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/balloon-tracker/internal/common"
	"github.com/i474232898/balloon-tracker/internal/weather"
)

// DefaultOpenMeteoURL is the Open-Meteo forecast endpoint.
const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

const openMeteoCurrent = "temperature_2m,relative_humidity_2m,precipitation,weather_code,wind_speed_10m,wind_direction_10m,pressure_msl"

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a provider. An empty baseURL selects DefaultOpenMeteoURL.
func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		client:  client,
		circuit: common.NewBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Current fetches current conditions for a coordinate with a single attempt.
func (p *OpenMeteoProvider) Current(ctx context.Context, lat, lon float64) (weather.Sample, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("current", openMeteoCurrent)
	values.Set("timezone", "auto")

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return weather.Sample{}, err
	}

	resp, err := common.DoOnce(ctx, p.client, p.circuit, req)
	if err != nil {
		return weather.Sample{}, fmt.Errorf("openmeteo request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Current *struct {
			Temperature   float64 `json:"temperature_2m"`
			Humidity      float64 `json:"relative_humidity_2m"`
			Precipitation float64 `json:"precipitation"`
			WeatherCode   float64 `json:"weather_code"`
			WindSpeed     float64 `json:"wind_speed_10m"`
			WindDirection float64 `json:"wind_direction_10m"`
			Pressure      float64 `json:"pressure_msl"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Sample{}, fmt.Errorf("openmeteo decode: %w", err)
	}
	if payload.Current == nil {
		return weather.Sample{}, fmt.Errorf("openmeteo response has no current conditions")
	}

	c := payload.Current
	return weather.Sample{
		Temperature:   c.Temperature,
		Humidity:      c.Humidity,
		Precipitation: c.Precipitation,
		WeatherCode:   c.WeatherCode,
		WindSpeed:     c.WindSpeed,
		WindDirection: c.WindDirection,
		Pressure:      c.Pressure,
		Description:   weather.Describe(int(c.WeatherCode)),
	}, nil
}

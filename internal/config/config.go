package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/balloon-tracker/internal/balloon"
	"github.com/i474232898/balloon-tracker/internal/render"
	"github.com/i474232898/balloon-tracker/internal/weather/providers"
)

type AppConfig struct {
	BalloonBaseURL string `validate:"required,url"`
	WeatherBaseURL string `validate:"required,url"`

	// HTTPTimeout bounds every outbound request.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// RefreshInterval controls how often the full history is reloaded.
	RefreshInterval time.Duration `validate:"gte=1m"`

	HistoryHours      int `validate:"min=1,max=24"`
	WeatherSampleSize int `validate:"min=0"`

	LogLevel string `validate:"oneof=debug info warn error"`
	Port     string `validate:"required,numeric"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.BalloonBaseURL = getenvDefault("BALLOON_BASE_URL", balloon.DefaultBaseURL)
	cfg.WeatherBaseURL = getenvDefault("WEATHER_BASE_URL", providers.DefaultOpenMeteoURL)

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	// The feed publishes a new file every hour.
	interval, err := time.ParseDuration(getenvDefault("REFRESH_INTERVAL", "60m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	cfg.HistoryHours = getenvInt("HISTORY_HOURS", balloon.DefaultHours)
	cfg.WeatherSampleSize = getenvInt("WEATHER_SAMPLE_SIZE", render.DefaultSampleSize)
	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-display/internal/weather"
)

// ErrMissingAPIKey is returned by Load when OPENWEATHER_API_KEY is unset.
var ErrMissingAPIKey = errors.New("OPENWEATHER_API_KEY is required")

// CalendarProvider selects the provider's reported zone as the calendar.
const CalendarProvider = "provider"

type AppConfig struct {
	OpenWeatherAPIKey string
	Units             string
	Country           string

	// GeocoderAPIKey enables reverse geocoding of device positions.
	GeocoderAPIKey string

	// FetchInterval controls how often we refresh each place.
	FetchInterval time.Duration
	HTTPTimeout   time.Duration

	// Places to keep fresh in addition to the tracked one.
	Places []weather.Place

	// In-memory store retention.
	StoreMaxHistory int           // max number of reports per place (0 = unlimited)
	StoreMaxAge     time.Duration // max age of reports (0 = unlimited)

	// ForecastDays is how many daily entries the display shows.
	ForecastDays int

	// Calendar defines day boundaries for the forecast. Nil means use the
	// provider's zone for the place.
	Calendar *time.Location

	ProviderRPS   float64
	ProviderBurst int

	Port     string
	LogLevel string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	cfg.Units = getenvDefault("OPENWEATHER_UNITS", "imperial")
	cfg.Country = getenvDefault("WEATHER_COUNTRY", "US")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	var err error
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.ForecastDays = getenvInt("FORECAST_DAYS", weather.DefaultForecastDays)
	if cfg.ForecastDays < 1 {
		return nil, fmt.Errorf("invalid FORECAST_DAYS: %d", cfg.ForecastDays)
	}

	tz := getenvDefault("CALENDAR_TIMEZONE", CalendarProvider)
	if tz != CalendarProvider {
		cfg.Calendar, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid CALENDAR_TIMEZONE: %w", err)
		}
	}

	cfg.ProviderRPS, err = strconv.ParseFloat(getenvDefault("PROVIDER_RPS", "1"), 64)
	if err != nil || cfg.ProviderRPS <= 0 {
		return nil, fmt.Errorf("invalid PROVIDER_RPS: %q", os.Getenv("PROVIDER_RPS"))
	}
	cfg.ProviderBurst = getenvInt("PROVIDER_BURST", 2)

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	places, err := loadPlaces()
	if err != nil {
		return nil, err
	}
	cfg.Places = places

	return cfg, nil
}

func loadPlaces() ([]weather.Place, error) {
	city := os.Getenv("WEATHER_LOCATION_CITY")
	region := os.Getenv("WEATHER_LOCATION_REGION")
	if city == "" {
		return nil, nil
	}
	cities := strings.Split(city, ",")
	regions := strings.Split(region, ",")
	if len(cities) != len(regions) {
		return nil, fmt.Errorf("number of cities and regions must be the same")
	}
	var places []weather.Place
	for i := range cities {
		places = append(places, weather.Place{
			City:   strings.TrimSpace(cities[i]),
			Region: strings.TrimSpace(regions[i]),
		})
	}

	return places, nil
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

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

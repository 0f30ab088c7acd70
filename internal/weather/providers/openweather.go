package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-display/internal/weather"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	units   string
	country string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider builds a provider for the 2.5 weather and forecast
// endpoints. units is passed through ("imperial", "metric" or "standard");
// country, when set, is appended to every place query.
func NewOpenWeatherProvider(client *http.Client, apiKey, units, country string, logger *zap.Logger) *OpenWeatherProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		units:   units,
		country: country,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("openweather", logger),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCondition struct {
	Icon string `json:"icon"`
}

type owmMain struct {
	Temp float64 `json:"temp"`
}

func firstIcon(items []owmCondition) string {
	if len(items) == 0 {
		return ""
	}
	return items[0].Icon
}

// FetchCurrent fetches the current temperature and condition for place.
func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, place weather.Place) (weather.Conditions, error) {
	resp, err := p.get(ctx, "weather", place)
	if err != nil {
		return weather.Conditions{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Dt       int64          `json:"dt"`
		Name     string         `json:"name"`
		Timezone *int           `json:"timezone"` // seconds east of UTC
		Main     owmMain        `json:"main"`
		Weather  []owmCondition `json:"weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Conditions{}, decodeError(p.name, err)
	}

	ts := time.Unix(payload.Dt, 0).UTC()
	if payload.Dt == 0 {
		ts = time.Now().UTC()
	}

	cur := weather.Conditions{
		Temperature:   payload.Main.Temp,
		ConditionCode: firstIcon(payload.Weather),
		Timestamp:     ts,
	}
	if payload.Timezone != nil {
		cur.Zone = time.FixedZone(payload.Name, *payload.Timezone)
	}
	return cur, nil
}

// FetchForecast fetches the 3-hour forecast samples for place.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, place weather.Place) (weather.Series, error) {
	resp, err := p.get(ctx, "forecast", place)
	if err != nil {
		return weather.Series{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt      int64          `json:"dt"`
			Main    owmMain        `json:"main"`
			Weather []owmCondition `json:"weather"`
		} `json:"list"`
		City struct {
			Name     string `json:"name"`
			Timezone *int   `json:"timezone"` // seconds east of UTC
		} `json:"city"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Series{}, decodeError(p.name, err)
	}

	series := weather.Series{
		Samples: make([]weather.Sample, 0, len(payload.List)),
	}
	for _, item := range payload.List {
		series.Samples = append(series.Samples, weather.Sample{
			Timestamp:     time.Unix(item.Dt, 0).UTC(),
			Temperature:   item.Main.Temp,
			ConditionCode: firstIcon(item.Weather),
		})
	}
	if payload.City.Timezone != nil {
		series.Zone = time.FixedZone(payload.City.Name, *payload.City.Timezone)
	}

	return series, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, endpoint string, place weather.Place) (*http.Response, error) {
	if p.apiKey == "" {
		return nil, networkError(p.name, errMissingAPIKey)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		if p.units != "" {
			values.Set("units", p.units)
		}
		values.Set("q", p.query(place))

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	return doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
}

// query renders place as "city,region,country", skipping empty parts.
func (p *OpenWeatherProvider) query(place weather.Place) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{place.City, place.Region, p.country} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ",")
}

package location

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-display/internal/weather"
)

var (
	// ErrNoLocality is returned when reverse geocoding finds no city.
	ErrNoLocality = errors.New("no locality for coordinates")
	// ErrNotConfigured is returned by a resolver without an API key.
	ErrNotConfigured = errors.New("geocoder api key is not configured")
)

// Coordinates is a device position in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Resolver turns a device position into a place weather can be fetched for.
type Resolver interface {
	Resolve(ctx context.Context, c Coordinates) (weather.Place, error)
}

// reverseFunc matches geocoder.GeocodingReverse.
type reverseFunc func(geocoder.Location) ([]geocoder.Address, error)

// geocoderKeyMu guards geocoder.ApiKey, which is shared by the whole
// process. It is held only while the key is written, never across a lookup.
var geocoderKeyMu sync.Mutex

func setGeocoderKey(apiKey string) {
	geocoderKeyMu.Lock()
	defer geocoderKeyMu.Unlock()
	if geocoder.ApiKey != apiKey {
		geocoder.ApiKey = apiKey
	}
}

// GeocoderResolver reverse-geocodes through the Google Geocoding API.
type GeocoderResolver struct {
	apiKey  string
	reverse reverseFunc
}

// NewGeocoderResolver creates a resolver using apiKey.
func NewGeocoderResolver(apiKey string) *GeocoderResolver {
	return &GeocoderResolver{
		apiKey:  apiKey,
		reverse: geocoder.GeocodingReverse,
	}
}

// Resolve returns the city and state code of the first address with a city.
// The geocoder has no context support, so ctx only bounds how long the
// caller waits.
func (r *GeocoderResolver) Resolve(ctx context.Context, c Coordinates) (weather.Place, error) {
	if r.apiKey == "" {
		return weather.Place{}, ErrNotConfigured
	}

	setGeocoderKey(r.apiKey)

	type answer struct {
		addrs []geocoder.Address
		err   error
	}
	ch := make(chan answer, 1)
	go func() {
		addrs, err := r.reverse(geocoder.Location{Latitude: c.Latitude, Longitude: c.Longitude})
		ch <- answer{addrs: addrs, err: err}
	}()

	var a answer
	select {
	case <-ctx.Done():
		return weather.Place{}, ctx.Err()
	case a = <-ch:
	}

	if a.err != nil {
		return weather.Place{}, fmt.Errorf("reverse geocoding failed: %w", a.err)
	}

	for _, addr := range a.addrs {
		if addr.City != "" {
			return weather.Place{City: addr.City, Region: regionCode(addr.State)}, nil
		}
	}
	return weather.Place{}, ErrNoLocality
}

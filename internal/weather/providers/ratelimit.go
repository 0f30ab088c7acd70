package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/i474232898/weather-display/internal/weather"
)

// RateLimited wraps a weather.Provider so that every fetch waits for a token.
// Current and forecast fetches share one limiter since they hit the same API key.
type RateLimited struct {
	provider weather.Provider
	limiter  *rate.Limiter
}

// NewRateLimited allows rps requests per second with the given burst.
func NewRateLimited(provider weather.Provider, rps float64, burst int) *RateLimited {
	return &RateLimited{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimited) Name() string {
	return r.provider.Name()
}

func (r *RateLimited) FetchCurrent(ctx context.Context, place weather.Place) (weather.Conditions, error) {
	if err := r.wait(ctx); err != nil {
		return weather.Conditions{}, err
	}
	return r.provider.FetchCurrent(ctx, place)
}

func (r *RateLimited) FetchForecast(ctx context.Context, place weather.Place) (weather.Series, error) {
	if err := r.wait(ctx); err != nil {
		return weather.Series{}, err
	}
	return r.provider.FetchForecast(ctx, place)
}

// wait reports a request that never left because no token arrived in time
// as a network failure.
func (r *RateLimited) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return networkError(r.provider.Name(), fmt.Errorf("rate limit wait canceled: %w", err))
	}
	return nil
}

var _ weather.Provider = (*RateLimited)(nil)
var _ weather.Provider = (*OpenWeatherProvider)(nil)

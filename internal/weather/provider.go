package weather

import (
	"context"
	"time"
)

// Provider abstracts the weather data source (OpenWeatherMap).
type Provider interface {
	Name() string
	FetchCurrent(ctx context.Context, place Place) (Conditions, error)
	FetchForecast(ctx context.Context, place Place) (Series, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveReport(place Place, report Report)
	GetLatest(place Place) (Report, error)
	GetRange(place Place, from, to time.Time) ([]Report, error)
}

// result is the single resolution of an asynchronous fetch.
type result[T any] struct {
	value T
	err   error
}

// goFetch runs fn in its own goroutine and returns a channel that receives
// exactly one result.
func goFetch[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan result[T] {
	ch := make(chan result[T], 1)
	go func() {
		v, err := fn(ctx)
		ch <- result[T]{value: v, err: err}
	}()
	return ch
}

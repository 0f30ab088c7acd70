package weather

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Service fetches weather for a place, reduces the forecast and keeps the
// resulting reports in a Store.
type Service struct {
	store    Store
	provider Provider
	logger   *zap.Logger

	// calendar defines day boundaries for the reducer. When nil the
	// provider's zone for the place is used, then UTC.
	calendar *time.Location
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCalendar fixes the calendar used to bucket forecast samples into days.
func WithCalendar(loc *time.Location) Option {
	return func(s *Service) {
		s.calendar = loc
	}
}

// WithClock replaces time.Now as the reference instant.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new Service.
func NewService(store Store, provider Provider, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:    store,
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh fetches current conditions and the forecast for place concurrently
// and stores the combined report. A failed current fetch keeps the previous
// report's conditions; a failed or empty forecast is replaced by
// DefaultForecast.
func (s *Service) Refresh(ctx context.Context, place Place) (Report, error) {
	if s.provider == nil {
		return Report{}, ErrNoProviders
	}

	s.logger.Debug("refreshing weather",
		zap.String("place", place.Key()),
		zap.String("provider", s.provider.Name()))

	currentCh := goFetch(ctx, func(ctx context.Context) (Conditions, error) {
		return s.provider.FetchCurrent(ctx, place)
	})
	forecastCh := goFetch(ctx, func(ctx context.Context) (Series, error) {
		return s.provider.FetchForecast(ctx, place)
	})

	now := s.now()
	report := Report{
		Place:     place,
		FetchedAt: now.UTC(),
	}

	prev, prevErr := s.store.GetLatest(place)
	hasPrev := prevErr == nil

	current := <-currentCh
	if current.err != nil {
		s.logger.Warn("current conditions fetch failed",
			zap.String("place", place.Key()),
			zap.Error(current.err))
		if hasPrev {
			report.Current = prev.Current
		}
	} else {
		c := current.value
		report.Current = &c
	}

	forecast := <-forecastCh
	var currentZone, lastZone *time.Location
	if report.Current != nil {
		currentZone = report.Current.Zone
	}
	if hasPrev && len(prev.Forecast) > 0 {
		lastZone = prev.Forecast[0].Date.Location()
	}
	cal := s.calendarFor(forecast.value.Zone, currentZone, lastZone)
	if forecast.err != nil {
		s.logger.Warn("forecast fetch failed",
			zap.String("place", place.Key()),
			zap.Error(forecast.err))
	} else {
		report.Forecast = ReduceToDaily(forecast.value.Samples, cal)
	}

	if len(report.Forecast) == 0 {
		s.logger.Info("using default forecast",
			zap.String("place", place.Key()),
			zap.Int("samples", len(forecast.value.Samples)))
		report.Forecast = DefaultForecast(now.In(cal))
		report.FallbackForecast = true
	}

	s.store.SaveReport(place, report)
	return report, nil
}

// calendarFor returns the configured calendar, else the first known zone
// for the place, else UTC.
func (s *Service) calendarFor(zones ...*time.Location) *time.Location {
	if s.calendar != nil {
		return s.calendar
	}
	for _, z := range zones {
		if z != nil {
			return z
		}
	}
	return time.UTC
}

// Forecast returns at most days entries of the latest stored forecast.
func (s *Service) Forecast(place Place, days int) ([]DailyForecast, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be greater than zero")
	}

	report, err := s.store.GetLatest(place)
	if err != nil {
		return nil, err
	}

	if days > len(report.Forecast) {
		days = len(report.Forecast)
	}
	return report.Forecast[:days], nil
}

// Latest delegates to the underlying store.
func (s *Service) Latest(place Place) (Report, error) {
	return s.store.GetLatest(place)
}

// History delegates to the underlying store.
func (s *Service) History(place Place, from, to time.Time) ([]Report, error) {
	return s.store.GetRange(place, from, to)
}

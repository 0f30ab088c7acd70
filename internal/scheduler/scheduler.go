package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-display/internal/weather"
)

// DefaultInterval is used when no positive interval is configured.
const DefaultInterval = 15 * time.Minute

// Refresher refreshes the stored weather for a place.
type Refresher interface {
	Refresh(ctx context.Context, place weather.Place) (weather.Report, error)
}

// PlaceSource supplies the tracked place, which may change between runs.
type PlaceSource interface {
	Current() weather.Place
}

// Scheduler periodically refreshes weather for configured places and the
// tracked place.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	tracked   PlaceSource
	places    []weather.Place
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler. tracked may be nil.
func New(places []weather.Place, tracked PlaceSource, interval time.Duration, service Refresher, logger *zap.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		tracked:   tracked,
		places:    places,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	interval := s.Interval()

	_, err := s.scheduler.Every(interval).Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", zap.Duration("interval", interval))
	return nil
}

// Interval is the period between refresh runs. Non-positive values fall
// back to DefaultInterval.
func (s *Scheduler) Interval() time.Duration {
	if s.interval <= 0 {
		return DefaultInterval
	}
	return s.interval
}

// RunOnce refreshes every place concurrently and waits for all of them.
func (s *Scheduler) RunOnce() {
	places := s.targets()
	if len(places) == 0 {
		s.logger.Debug("scheduler: no places to refresh")
		return
	}

	s.logger.Info("scheduler: running weather refresh job", zap.Int("places", len(places)))

	var wg sync.WaitGroup
	for _, place := range places {
		place := place
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if _, err := s.service.Refresh(ctx, place); err != nil {
				s.logger.Error("scheduler: refresh failed",
					zap.String("place", place.Key()),
					zap.Error(err))
			}
		}()
	}
	wg.Wait()
	s.logger.Info("scheduler: completed weather refresh job")
}

// targets returns the configured places plus the tracked one, without duplicates.
func (s *Scheduler) targets() []weather.Place {
	seen := make(map[string]bool, len(s.places)+1)
	out := make([]weather.Place, 0, len(s.places)+1)

	add := func(p weather.Place) {
		if p.City == "" || seen[p.Key()] {
			return
		}
		seen[p.Key()] = true
		out = append(out, p)
	}

	if s.tracked != nil {
		add(s.tracked.Current())
	}
	for _, p := range s.places {
		add(p)
	}
	return out
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

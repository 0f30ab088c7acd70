package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-display/internal/weather"
)

var (
	// ErrNotFound is returned when no report is available for a given place.
	ErrNotFound = errors.New("no weather report for place")
)

// ReportHistory holds the reports for a place ordered by FetchedAt.
type ReportHistory struct {
	Reports []weather.Report
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: place key, value: history
	data map[string]*ReportHistory

	// retention configuration
	maxHistory int           // max number of reports per place
	maxAge     time.Duration // optional max age for reports

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*ReportHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveReport appends a new report for a place and enforces retention.
func (s *MemoryStore) SaveReport(place weather.Place, report weather.Report) {
	key := place.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &ReportHistory{}
		s.data[key] = history
	}

	history.Reports = append(history.Reports, report)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Reports) > s.maxHistory {
		over := len(history.Reports) - s.maxHistory
		history.Reports = history.Reports[over:]
	}

	// Enforce retention by age; the newest report is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Reports)-1; i++ {
			if !history.Reports[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		history.Reports = history.Reports[i:]
	}
}

// GetLatest returns the most recent report for a place.
func (s *MemoryStore) GetLatest(place weather.Place) (weather.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[place.Key()]
	if !ok || len(history.Reports) == 0 {
		return weather.Report{}, ErrNotFound
	}
	return history.Reports[len(history.Reports)-1], nil
}

// GetRange returns all reports for a place fetched between from and to (inclusive).
func (s *MemoryStore) GetRange(place weather.Place, from, to time.Time) ([]weather.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[place.Key()]
	if !ok || len(history.Reports) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Report
	for _, r := range history.Reports {
		if !r.FetchedAt.Before(from) && !r.FetchedAt.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}

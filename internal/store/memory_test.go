package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-display/internal/weather"
)

var cupertino = weather.Place{City: "Cupertino", Region: "CA"}

func reportAt(ts time.Time) weather.Report {
	return weather.Report{Place: cupertino, FetchedAt: ts}
}

func TestGetLatestNotFound(t *testing.T) {
	s := NewMemoryStore(10, time.Hour)
	if _, err := s.GetLatest(cupertino); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveReportRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	base := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		s.SaveReport(cupertino, reportAt(base.Add(time.Duration(i)*time.Hour)))
	}

	all, err := s.GetRange(cupertino, base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 || !all[0].FetchedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected the 2 newest reports, got %+v", all)
	}

	latest, _ := s.GetLatest(cupertino)
	if !latest.FetchedAt.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("unexpected latest %v", latest.FetchedAt)
	}
}

func TestSaveReportRetentionByAge(t *testing.T) {
	now := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }

	s.SaveReport(cupertino, reportAt(now.Add(-3*time.Hour)))
	s.SaveReport(cupertino, reportAt(now.Add(-2*time.Hour)))
	s.SaveReport(cupertino, reportAt(now.Add(-10*time.Minute)))

	all, err := s.GetRange(cupertino, now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 report within max age, got %d", len(all))
	}
}

func TestSaveReportKeepsNewestEvenIfStale(t *testing.T) {
	now := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }

	s.SaveReport(cupertino, reportAt(now.Add(-5*time.Hour)))
	if _, err := s.GetLatest(cupertino); err != nil {
		t.Fatalf("expected newest report to be kept, got %v", err)
	}
}

func TestGetRangeBounds(t *testing.T) {
	s := NewMemoryStore(0, 0)
	base := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	s.SaveReport(cupertino, reportAt(base))
	s.SaveReport(cupertino, reportAt(base.Add(time.Hour)))

	got, err := s.GetRange(cupertino, base, base)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected inclusive bounds to return 1 report, got %d (%v)", len(got), err)
	}

	if _, err := s.GetRange(cupertino, base.Add(2*time.Hour), base.Add(3*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty range, got %v", err)
	}
}

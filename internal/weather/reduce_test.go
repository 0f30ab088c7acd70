package weather

import (
	"math/rand"
	"strconv"
	"testing"
	"time"
)

func utc(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestReduceToDailyEmpty(t *testing.T) {
	got := ReduceToDaily(nil, time.UTC)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestReduceToDailyPicksSampleNearestNoon(t *testing.T) {
	samples := []Sample{
		{Timestamp: time.Unix(0, 0).UTC(), Temperature: 50, ConditionCode: "01d"},
		{Timestamp: time.Unix(15*3600, 0).UTC(), Temperature: 60, ConditionCode: "10n"},
	}

	got := ReduceToDaily(samples, time.UTC)
	if len(got) != 1 {
		t.Fatalf("expected 1 day, got %d", len(got))
	}
	day := got[0]
	if day.Temperature != 60 || day.ConditionCode != "10n" {
		t.Fatalf("expected 60/10n, got %d/%s", day.Temperature, day.ConditionCode)
	}
	if !day.Date.Equal(time.Unix(0, 0)) {
		t.Fatalf("expected date 1970-01-01, got %v", day.Date)
	}
	if day.Weekday != "Thu" {
		t.Fatalf("expected weekday Thu, got %q", day.Weekday)
	}
}

func TestReduceToDailyOrdersDaysAndTruncates(t *testing.T) {
	samples := []Sample{
		{Timestamp: utc(2024, time.May, 2, 12), Temperature: -3.7, ConditionCode: "13d"},
		{Timestamp: utc(2024, time.May, 1, 12), Temperature: 71.9, ConditionCode: "01d"},
	}

	got := ReduceToDaily(samples, time.UTC)
	if len(got) != 2 {
		t.Fatalf("expected 2 days, got %d", len(got))
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Fatalf("days not ascending: %v, %v", got[0].Date, got[1].Date)
	}
	if got[0].Temperature != 71 || got[1].Temperature != -3 {
		t.Fatalf("expected truncated temperatures 71 and -3, got %d and %d", got[0].Temperature, got[1].Temperature)
	}
	if got[0].Weekday != "Wed" || got[1].Weekday != "Thu" {
		t.Fatalf("unexpected weekdays %q %q", got[0].Weekday, got[1].Weekday)
	}
}

func TestReduceToDailyTieGoesToEarlierSample(t *testing.T) {
	early := Sample{Timestamp: utc(2024, time.June, 1, 9), Temperature: 1, ConditionCode: "early"}
	late := Sample{Timestamp: utc(2024, time.June, 1, 15), Temperature: 2, ConditionCode: "late"}

	for _, samples := range [][]Sample{{early, late}, {late, early}} {
		got := ReduceToDaily(samples, time.UTC)
		if len(got) != 1 || got[0].ConditionCode != "early" {
			t.Fatalf("expected earlier sample to win the tie, got %+v", got)
		}
	}
}

func TestReduceToDailyUsesCalendarDayBoundaries(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	samples := []Sample{
		// 22:00 local on March 9.
		{Timestamp: utc(2024, time.March, 10, 3), Temperature: 40, ConditionCode: "01n"},
		// 10:00 local on March 10.
		{Timestamp: utc(2024, time.March, 10, 15), Temperature: 55, ConditionCode: "02d"},
	}

	inUTC := ReduceToDaily(samples, time.UTC)
	if len(inUTC) != 1 {
		t.Fatalf("expected 1 UTC day, got %d", len(inUTC))
	}

	inEST := ReduceToDaily(samples, est)
	if len(inEST) != 2 {
		t.Fatalf("expected 2 EST days, got %d", len(inEST))
	}
	if inEST[0].Date.Day() != 9 || inEST[1].Date.Day() != 10 {
		t.Fatalf("unexpected EST dates %v %v", inEST[0].Date, inEST[1].Date)
	}
	if inEST[0].Date.Location() != est || inEST[0].Date.Hour() != 0 {
		t.Fatalf("expected local midnight, got %v", inEST[0].Date)
	}
}

func TestReduceToDailyNilCalendarIsUTC(t *testing.T) {
	samples := []Sample{{Timestamp: utc(2024, time.January, 1, 23), Temperature: 1}}
	got := ReduceToDaily(samples, nil)
	if len(got) != 1 || got[0].Date.Location() != time.UTC {
		t.Fatalf("expected a single UTC day, got %+v", got)
	}
}

func TestReduceToDailyIDsAreStable(t *testing.T) {
	samples := []Sample{
		{Timestamp: utc(2024, time.July, 1, 12)},
		{Timestamp: utc(2024, time.July, 2, 12)},
	}
	a := ReduceToDaily(samples, time.UTC)
	b := ReduceToDaily(samples, time.UTC)
	if a[0].ID != b[0].ID || a[1].ID != b[1].ID {
		t.Fatalf("expected identical IDs across runs")
	}
	if a[0].ID == a[1].ID {
		t.Fatalf("expected distinct IDs per day")
	}
}

func TestReduceToDailyProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := utc(2024, time.February, 27, 0)

	for run := 0; run < 50; run++ {
		n := rng.Intn(40) + 1
		samples := make([]Sample, 0, n)
		for i := 0; i < n; i++ {
			offset := time.Duration(rng.Intn(7*24*60)) * time.Minute
			samples = append(samples, Sample{
				Timestamp:     base.Add(offset),
				Temperature:   float64(i),
				ConditionCode: strconv.Itoa(i),
			})
		}

		groups := make(map[string][]Sample)
		for _, s := range samples {
			k := s.Timestamp.Format("2006-01-02")
			groups[k] = append(groups[k], s)
		}

		got := ReduceToDaily(samples, time.UTC)
		if len(got) != len(groups) {
			t.Fatalf("run %d: expected %d days, got %d", run, len(groups), len(got))
		}

		for i, day := range got {
			if i > 0 && !got[i-1].Date.Before(day.Date) {
				t.Fatalf("run %d: days not strictly ascending at %d", run, i)
			}

			group := groups[day.Date.Format("2006-01-02")]
			idx, _ := strconv.Atoi(day.ConditionCode)
			selected := samples[idx]
			noon := day.Date.Add(12 * time.Hour)
			best := absDuration(selected.Timestamp.Sub(noon))
			for _, s := range group {
				if absDuration(s.Timestamp.Sub(noon)) < best {
					t.Fatalf("run %d: %v is closer to noon than selected %v", run, s.Timestamp, selected.Timestamp)
				}
			}
		}
	}
}

func TestDefaultForecast(t *testing.T) {
	now := time.Date(2024, time.December, 30, 15, 4, 0, 0, time.UTC)

	got := DefaultForecast(now)
	if len(got) != DefaultForecastDays {
		t.Fatalf("expected %d entries, got %d", DefaultForecastDays, len(got))
	}

	wantDates := []string{"2024-12-31", "2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04"}
	wantDays := []string{"Tue", "Wed", "Thu", "Fri", "Sat"}
	for i, d := range got {
		if d.Date.Format("2006-01-02") != wantDates[i] {
			t.Errorf("entry %d: expected %s, got %s", i, wantDates[i], d.Date.Format("2006-01-02"))
		}
		if d.Weekday != wantDays[i] {
			t.Errorf("entry %d: expected %s, got %s", i, wantDays[i], d.Weekday)
		}
		if d.Temperature != PlaceholderTemperature || d.ConditionCode != PlaceholderConditionCode {
			t.Errorf("entry %d: expected placeholder values, got %d/%s", i, d.Temperature, d.ConditionCode)
		}
		if d.Icon() != FallbackIcon {
			t.Errorf("entry %d: expected icon %s, got %s", i, FallbackIcon, d.Icon())
		}
	}
}

func TestDefaultForecastFollowsLocalCalendar(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 2024-03-01 01:00 in Tokyo is still February 29 in UTC.
	now := time.Date(2024, time.March, 1, 1, 0, 0, 0, tokyo)

	got := DefaultForecast(now)
	if got[0].Date.Format("2006-01-02") != "2024-03-02" {
		t.Fatalf("expected first day 2024-03-02, got %s", got[0].Date.Format("2006-01-02"))
	}
}

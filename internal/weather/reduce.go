package weather

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultForecastDays is the number of entries DefaultForecast produces.
	DefaultForecastDays = 5

	// PlaceholderTemperature is used by every DefaultForecast entry.
	PlaceholderTemperature = 70

	// PlaceholderConditionCode is used by every DefaultForecast entry.
	PlaceholderConditionCode = "02d"
)

// forecastNamespace seeds the deterministic DailyForecast IDs.
var forecastNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("weather-display/daily-forecast"))

// ReduceToDaily collapses sub-daily samples into one forecast per calendar
// day of cal, choosing the sample closest to local noon. When two samples
// are equally close, the earlier one wins. The result is sorted by day and
// is not truncated. A nil cal means UTC.
func ReduceToDaily(samples []Sample, cal *time.Location) []DailyForecast {
	if cal == nil {
		cal = time.UTC
	}

	type dayKey string

	var (
		chosen = make(map[dayKey]Sample)
		days   = make(map[dayKey]time.Time)
	)

	for _, s := range samples {
		ts := s.Timestamp.In(cal)
		k := dayKey(ts.Format("2006-01-02"))

		day, ok := days[k]
		if !ok {
			day = startOfDay(ts)
			days[k] = day
			chosen[k] = s
			continue
		}

		noon := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, cal)
		if closerToNoon(s, chosen[k], noon) {
			chosen[k] = s
		}
	}

	forecast := make([]DailyForecast, 0, len(days))
	for k, day := range days {
		s := chosen[k]
		forecast = append(forecast, newDailyForecast(day, int(s.Temperature), s.ConditionCode))
	}

	sort.Slice(forecast, func(i, j int) bool {
		return forecast[i].Date.Before(forecast[j].Date)
	})

	return forecast
}

// DefaultForecast returns placeholder entries for the five calendar days
// after now, in now's location.
func DefaultForecast(now time.Time) []DailyForecast {
	today := startOfDay(now)

	forecast := make([]DailyForecast, 0, DefaultForecastDays)
	for offset := 1; offset <= DefaultForecastDays; offset++ {
		day := today.AddDate(0, 0, offset)
		forecast = append(forecast, newDailyForecast(day, PlaceholderTemperature, PlaceholderConditionCode))
	}
	return forecast
}

// closerToNoon reports whether candidate should replace current.
func closerToNoon(candidate, current Sample, noon time.Time) bool {
	dc := absDuration(candidate.Timestamp.Sub(noon))
	dr := absDuration(current.Timestamp.Sub(noon))
	if dc != dr {
		return dc < dr
	}
	return candidate.Timestamp.Before(current.Timestamp)
}

func newDailyForecast(day time.Time, temperature int, code string) DailyForecast {
	return DailyForecast{
		ID:            uuid.NewSHA1(forecastNamespace, []byte(day.Format(time.RFC3339))),
		Date:          day,
		Weekday:       shortWeekday(day),
		Temperature:   temperature,
		ConditionCode: code,
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// shortWeekday returns the three letter English weekday name, e.g. "Mon".
func shortWeekday(t time.Time) string {
	return t.Weekday().String()[:3]
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

package httpapi

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-display/internal/weather"
)

// dayView is one forecast tile.
type dayView struct {
	ID            string `json:"id"`
	Day           string `json:"day"`
	Date          string `json:"date"`
	Temperature   int    `json:"temperature"`
	Icon          string `json:"icon"`
	ConditionCode string `json:"conditionCode"`
}

type currentView struct {
	Temperature int    `json:"temperature"`
	Icon        string `json:"icon"`
}

// reportView is everything the display renders for a place.
type reportView struct {
	Place     weather.Place `json:"place"`
	Label     string        `json:"label"`
	Current   *currentView  `json:"current"`
	Forecast  []dayView     `json:"forecast"`
	Fallback  bool          `json:"fallback"`
	FetchedAt time.Time     `json:"fetchedAt"`
}

func newDayViews(days []weather.DailyForecast, limit int) []dayView {
	if limit > 0 && len(days) > limit {
		days = days[:limit]
	}

	// Casers keep state and must not be shared across requests.
	upper := cases.Upper(language.English)

	views := make([]dayView, 0, len(days))
	for _, d := range days {
		views = append(views, dayView{
			ID:            d.ID.String(),
			Day:           upper.String(d.Weekday),
			Date:          d.Date.Format("2006-01-02"),
			Temperature:   d.Temperature,
			Icon:          d.Icon(),
			ConditionCode: d.ConditionCode,
		})
	}
	return views
}

func newReportView(r weather.Report, limit int) reportView {
	v := reportView{
		Place:     r.Place,
		Label:     r.Place.Label(),
		Forecast:  newDayViews(r.Forecast, limit),
		Fallback:  r.FallbackForecast,
		FetchedAt: r.FetchedAt,
	}
	if r.Current != nil {
		v.Current = &currentView{
			Temperature: int(r.Current.Temperature),
			Icon:        weather.IconFor(r.Current.ConditionCode),
		}
	}
	return v
}

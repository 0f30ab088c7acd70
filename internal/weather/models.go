package weather

import (
	"time"

	"github.com/google/uuid"
)

// Place identifies where the weather is fetched for, e.g. "Cupertino", "CA".
type Place struct {
	City   string `json:"city"`
	Region string `json:"region"`
}

// Key returns a canonical string key for indexing this place in stores.
func (p Place) Key() string {
	return p.City + ":" + p.Region
}

// Label is the human readable form shown above the current conditions.
func (p Place) Label() string {
	if p.Region == "" {
		return p.City
	}
	return p.City + ", " + p.Region
}

// Sample is one sub-daily forecast entry as returned by the provider.
type Sample struct {
	Timestamp     time.Time `json:"timestamp"` // always UTC
	Temperature   float64   `json:"temperature"`
	ConditionCode string    `json:"conditionCode"`
}

// Series is a decoded forecast payload. Zone is the provider's reported
// offset for the place and may be nil.
type Series struct {
	Samples []Sample
	Zone    *time.Location
}

// Conditions are the current conditions for a place.
type Conditions struct {
	Temperature   float64   `json:"temperature"`
	ConditionCode string    `json:"conditionCode"`
	Timestamp     time.Time `json:"timestamp"`
	// Zone is the place's UTC offset when the provider reports one.
	Zone *time.Location `json:"-"`
}

// DailyForecast is one day's summary, built from the sample nearest to noon.
type DailyForecast struct {
	ID            uuid.UUID `json:"id"`
	Date          time.Time `json:"date"`
	Weekday       string    `json:"weekday"`
	Temperature   int       `json:"temperature"`
	ConditionCode string    `json:"conditionCode"`
}

// Icon returns the display icon for the forecast's condition.
func (d DailyForecast) Icon() string {
	return IconFor(d.ConditionCode)
}

// Report is the result of one refresh cycle for a place.
type Report struct {
	Place            Place           `json:"place"`
	Current          *Conditions     `json:"current,omitempty"`
	Forecast         []DailyForecast `json:"forecast"`
	FallbackForecast bool            `json:"fallbackForecast"`
	FetchedAt        time.Time       `json:"fetchedAt"`
}

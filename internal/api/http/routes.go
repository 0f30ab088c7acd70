package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-display/internal/location"
	"github.com/i474232898/weather-display/internal/store"
	"github.com/i474232898/weather-display/internal/weather"
)

var validate = validator.New()

// refreshTimeout bounds on-demand refreshes made while serving a request.
const refreshTimeout = 30 * time.Second

// Deps are the collaborators the HTTP handlers use.
type Deps struct {
	Service *weather.Service
	Tracker *location.Tracker
	// Resolver may be nil, which disables POST /location.
	Resolver     location.Resolver
	ForecastDays int
	Logger       *zap.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.ForecastDays <= 0 {
		deps.ForecastDays = weather.DefaultForecastDays
	}
	h := &handlers{Deps: deps}

	v1 := app.Group("/api/v1")
	v1.Get("/weather", h.getWeather)
	v1.Get("/weather/forecast", h.getForecast)
	v1.Get("/weather/history", h.getHistory)
	v1.Post("/location", h.postLocation)
}

type handlers struct {
	Deps
}

func (h *handlers) getWeather(c *fiber.Ctx) error {
	place, err := h.placeFromQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	report, err := h.latestOrRefresh(c.UserContext(), place)
	if err != nil {
		h.Logger.Error("failed to get weather", zap.String("place", place.Key()), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}

	return c.JSON(newReportView(report, h.ForecastDays))
}

func (h *handlers) getForecast(c *fiber.Ctx) error {
	place, err := h.placeFromQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	days, err := strconv.Atoi(c.Query("days"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "days must be an integer")
	}
	if err := validate.Var(days, fmt.Sprintf("min=1,max=%d", h.ForecastDays)); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("days must be between 1 and %d", h.ForecastDays))
	}

	if _, err := h.latestOrRefresh(c.UserContext(), place); err != nil {
		h.Logger.Error("failed to get forecast", zap.String("place", place.Key()), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch forecast data")
	}

	forecast, err := h.Service.Forecast(place, days)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch forecast data")
	}

	return c.JSON(fiber.Map{
		"place":    place,
		"forecast": newDayViews(forecast, days),
	})
}

func (h *handlers) getHistory(c *fiber.Ctx) error {
	var req historyQuery
	if err := req.bind(c, h.Tracker); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	reports, err := h.Service.History(req.Place, req.From, req.To)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
	}

	views := make([]reportView, 0, len(reports))
	for _, r := range reports {
		views = append(views, newReportView(r, h.ForecastDays))
	}

	return c.JSON(fiber.Map{
		"place":   req.Place,
		"from":    req.From,
		"to":      req.To,
		"reports": views,
	})
}

// locationBody is the device position posted by the client.
type locationBody struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

func (h *handlers) postLocation(c *fiber.Ctx) error {
	if h.Resolver == nil || h.Tracker == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "location resolution is not configured")
	}

	var body locationBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), refreshTimeout)
	defer cancel()

	place, err := h.Resolver.Resolve(ctx, location.Coordinates{
		Latitude:  *body.Latitude,
		Longitude: *body.Longitude,
	})
	if err != nil {
		if errors.Is(err, location.ErrNoLocality) {
			return fiber.NewError(fiber.StatusNotFound, "no city found for coordinates")
		}
		if errors.Is(err, location.ErrNotConfigured) {
			return fiber.NewError(fiber.StatusServiceUnavailable, "location resolution is not configured")
		}
		h.Logger.Warn("reverse geocoding failed", zap.Error(err))
		return fiber.NewError(fiber.StatusBadGateway, "failed to resolve location")
	}

	changed := h.Tracker.Set(place)
	h.Logger.Info("location resolved",
		zap.String("place", place.Key()),
		zap.Bool("changed", changed))

	return c.JSON(fiber.Map{
		"place":   place,
		"label":   place.Label(),
		"changed": changed,
	})
}

// latestOrRefresh returns the stored report for place, refreshing it first
// when nothing has been stored yet.
func (h *handlers) latestOrRefresh(ctx context.Context, place weather.Place) (weather.Report, error) {
	report, err := h.Service.Latest(place)
	if err == nil {
		return report, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return weather.Report{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()
	return h.Service.Refresh(ctx, place)
}

// placeQuery holds query parameters for identifying a place.
type placeQuery struct {
	City   string `validate:"required"`
	Region string `validate:"omitempty"`
}

func (q placeQuery) toPlace() weather.Place {
	return weather.Place{
		City:   q.City,
		Region: q.Region,
	}
}

// placeFromQuery reads city/region, falling back to the tracked place when
// neither is given.
func (h *handlers) placeFromQuery(c *fiber.Ctx) (weather.Place, error) {
	return parsePlaceQuery(c, h.Tracker)
}

func parsePlaceQuery(c *fiber.Ctx, tracker *location.Tracker) (weather.Place, error) {
	q := placeQuery{
		City:   c.Query("city"),
		Region: c.Query("region"),
	}

	if q.City == "" && q.Region == "" && tracker != nil {
		return tracker.Current(), nil
	}

	if err := validate.Struct(q); err != nil {
		return weather.Place{}, err
	}

	return q.toPlace(), nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Place weather.Place
	From  time.Time `validate:"required"`
	To    time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx, tracker *location.Tracker) error {
	place, err := parsePlaceQuery(c, tracker)
	if err != nil {
		return err
	}
	h.Place = place

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}

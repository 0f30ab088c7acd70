package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-display/internal/api/http"
	"github.com/i474232898/weather-display/internal/config"
	"github.com/i474232898/weather-display/internal/location"
	"github.com/i474232898/weather-display/internal/scheduler"
	"github.com/i474232898/weather-display/internal/store"
	"github.com/i474232898/weather-display/internal/weather"
	"github.com/i474232898/weather-display/internal/weather/providers"
)

func main() {
	bootLog := newBootLogger(zap.NewProduction)

	// Load configuration; a missing API key stops us here rather than on the first request.
	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("failed to load config", zap.Error(err))
	}

	log := newLogger(cfg.LogLevel)
	defer log.Sync()
	zap.ReplaceGlobals(log)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Provider with resilience (backoff + circuit breaker) behind a rate limiter.
	owm := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, cfg.Units, cfg.Country, log)
	provider := providers.NewRateLimited(owm, cfg.ProviderRPS, cfg.ProviderBurst)

	var opts []weather.Option
	if cfg.Calendar != nil {
		opts = append(opts, weather.WithCalendar(cfg.Calendar))
	}
	service := weather.NewService(memStore, provider, log, opts...)

	tracker := location.NewTracker(location.DefaultPlace, 4)
	var resolver location.Resolver
	if cfg.GeocoderAPIKey != "" {
		resolver = location.NewGeocoderResolver(cfg.GeocoderAPIKey)
	} else {
		log.Info("GEOCODER_API_KEY not set; location updates are disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Refetch whenever the tracked place changes.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case place := <-tracker.Updates():
				refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
				if _, err := service.Refresh(refreshCtx, place); err != nil {
					log.Error("refresh after location change failed", zap.String("place", place.Key()), zap.Error(err))
				}
				cancel()
			}
		}
	}()

	// Scheduler that periodically refreshes stored reports.
	sched := scheduler.New(cfg.Places, tracker, cfg.FetchInterval, service, log)
	if err := sched.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-display",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          errorHandler(log),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD",
	}))
	app.Use(logger.New(logger.Config{
		Format:     "${time} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-display",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service:      service,
		Tracker:      tracker,
		Resolver:     resolver,
		ForecastDays: cfg.ForecastDays,
		Logger:       log,
	})

	go func() {
		log.Info("starting server", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
}

// newBootLogger builds the logger used before config is loaded. It falls
// back to an example logger so a Fatal on a bad config is still printed.
func newBootLogger(build func(...zap.Option) (*zap.Logger, error)) *zap.Logger {
	l, err := build()
	if err != nil || l == nil {
		return zap.NewExample()
	}
	return l
}

func newLogger(level string) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if level == "debug" {
		l, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		if lvl, perr := zap.ParseAtomicLevel(level); perr == nil {
			cfg.Level = lvl
		}
		l, err = cfg.Build()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("http error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": err.Error(),
		})
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	httpapi "github.com/i474232898/balloon-tracker/internal/api/http"
	"github.com/i474232898/balloon-tracker/internal/balloon"
	"github.com/i474232898/balloon-tracker/internal/config"
	"github.com/i474232898/balloon-tracker/internal/render"
	"github.com/i474232898/balloon-tracker/internal/scheduler"
	"github.com/i474232898/balloon-tracker/internal/store"
	"github.com/i474232898/balloon-tracker/internal/tracker"
	"github.com/i474232898/balloon-tracker/internal/weather/providers"
)

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	baseLogger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer baseLogger.Sync()
	sugar := baseLogger.Sugar()

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	loader := balloon.NewLoader(balloon.NewClient(httpClient, cfg.BalloonBaseURL), cfg.HistoryHours, sugar.Named("loader"))

	// The proxy keeps its own breaker so a failing refresh cycle cannot close it to browsers.
	proxyUpstream := balloon.NewClient(httpClient, cfg.BalloonBaseURL)

	renderer := render.NewRenderer(
		providers.NewOpenMeteoProvider(httpClient, cfg.WeatherBaseURL),
		render.WithSampleSize(cfg.WeatherSampleSize),
		render.WithLogger(sugar.Named("render")),
	)

	service := tracker.NewService(loader, store.NewMemoryStore(), renderer, sugar.Named("tracker"))
	defer service.Close()

	// Scheduler that periodically reloads the history.
	sched := scheduler.New(scheduler.RefreshFunc(func(ctx context.Context) error {
		_, err := service.Refresh(ctx)
		return err
	}), cfg.RefreshInterval, 5*time.Minute, sugar.Named("scheduler"))
	if err := sched.Start(); err != nil {
		sugar.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "balloon-tracker",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "balloon-tracker",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, proxyUpstream, sugar.Named("http"))

	go func() {
		sugar.Infow("listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			sugar.Infow("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		sugar.Errorw("error during shutdown", "error", err)
	}
}

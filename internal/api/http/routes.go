package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/balloon-tracker/internal/balloon"
	"github.com/i474232898/balloon-tracker/internal/common"
	"github.com/i474232898/balloon-tracker/internal/render"
	"github.com/i474232898/balloon-tracker/internal/store"
	"github.com/i474232898/balloon-tracker/internal/tracker"
)

// ProxyCacheControl lets shared caches serve an hour file for an hour and stale for a day.
const ProxyCacheControl = "public, s-maxage=3600, stale-while-revalidate=86400"

const refreshTimeout = 2 * time.Minute

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *tracker.Service, upstream balloon.Fetcher, logger *zap.SugaredLogger) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	app.Get("/api/balloons", func(c *fiber.Ctx) error {
		q, err := parseHoursQuery(c.Query("hours", "00"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		body, err := upstream.FetchHour(c.UserContext(), q.Hours)
		if err != nil {
			var ue *balloon.UpstreamError
			if errors.As(err, &ue) {
				return c.Status(ue.StatusCode).JSON(fiber.Map{"error": ue.Error()})
			}
			logger.Errorw("proxy fetch failed", "hours", q.Label(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": balloon.ErrTransport.Error()})
		}

		c.Set(fiber.HeaderCacheControl, ProxyCacheControl)
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	})

	v1 := app.Group("/api/v1")

	v1.Get("/snapshots", func(c *fiber.Ctx) error {
		return c.JSON(service.Snapshots())
	})

	v1.Get("/snapshots/:hours", func(c *fiber.Ctx) error {
		q, err := parseHoursQuery(c.Params("hours"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snap, err := service.Snapshot(q.Hours)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no balloon data for requested hour")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read balloon data")
		}
		return c.JSON(snap)
	})

	v1.Get("/markers", func(c *fiber.Ctx) error {
		data, err := service.Markers().MarshalJSON()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to encode markers")
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	})

	v1.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(service.Summary())
	})

	v1.Get("/legend", func(c *fiber.Ctx) error {
		return c.JSON(render.Legend)
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()
			if _, err := service.Refresh(ctx); err != nil {
				logger.Errorw("manual refresh failed", "error", err)
			}
		}()
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "refreshing"})
	})
}

// hoursQuery identifies one hour of the feed.
type hoursQuery struct {
	Hours int `validate:"min=0,max=23"`
}

func (q hoursQuery) Label() string {
	return common.HourLabel(q.Hours)
}

func parseHoursQuery(s string) (hoursQuery, error) {
	var q hoursQuery

	n, err := strconv.Atoi(s)
	if err != nil {
		return q, errors.New("hours must be an integer between 00 and 23")
	}
	q.Hours = n

	if err := validate.Struct(q); err != nil {
		return q, errors.New("hours must be an integer between 00 and 23")
	}
	return q, nil
}

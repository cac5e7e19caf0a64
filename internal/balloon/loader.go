package balloon

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/balloon-tracker/internal/common"
)

// DefaultHours is the number of trailing hours the feed exposes.
const DefaultHours = 24

// Loader fetches the trailing hours concurrently and assembles snapshots.
type Loader struct {
	fetcher Fetcher
	hours   int
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewLoader creates a Loader for hours 0..hours-1. Values outside 1..24 fall back to DefaultHours.
func NewLoader(fetcher Fetcher, hours int, logger *zap.SugaredLogger) *Loader {
	if hours <= 0 || hours > DefaultHours {
		hours = DefaultHours
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Loader{
		fetcher: fetcher,
		hours:   hours,
		logger:  logger,
		now:     time.Now,
	}
}

// Load requests every hour at once and waits for all of them.
// Hours that fail or are not arrays are skipped. The result is ordered by
// hoursAgo ascending, so index 0 is the most recent snapshot. An empty
// result is a valid outcome, not an error.
func (l *Loader) Load(ctx context.Context) []Snapshot {
	now := l.now()

	var wg sync.WaitGroup
	slots := make([]*Snapshot, l.hours)

	for hour := 0; hour < l.hours; hour++ {
		wg.Add(1)
		go func(hour int) {
			defer wg.Done()

			label := common.HourLabel(hour)
			body, err := l.fetcher.FetchHour(ctx, hour)
			if err != nil {
				l.logger.Warnw("hour fetch failed", "hour", label, "error", err)
				return
			}

			snap, err := ParseSnapshot(hour, now, body)
			if err != nil {
				l.logger.Warnw("invalid data format", "hour", label, "error", err)
				return
			}

			// Each goroutine owns its own slot.
			slots[hour] = &snap
		}(hour)
	}

	wg.Wait()

	out := make([]Snapshot, 0, l.hours)
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}

	if len(out) == 0 {
		l.logger.Errorw("no valid balloon data loaded", "hours", l.hours)
		return out
	}
	l.logger.Infow("loaded balloon history",
		"hours", len(out),
		"latestHoursAgo", out[0].HoursAgo(),
		"latestCount", out[0].Len())
	return out
}

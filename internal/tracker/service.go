package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	geojson "github.com/paulmach/go.geojson"
	"go.uber.org/zap"

	"github.com/i474232898/balloon-tracker/internal/balloon"
	"github.com/i474232898/balloon-tracker/internal/render"
	"github.com/i474232898/balloon-tracker/internal/stats"
	"github.com/i474232898/balloon-tracker/internal/store"
)

// RefreshResult describes one load cycle.
type RefreshResult struct {
	CycleID     string        `json:"cycleId"`
	HoursLoaded int           `json:"hoursLoaded"`
	Balloons    int           `json:"balloons"`
	Render      render.Result `json:"render"`
	Duration    time.Duration `json:"duration"`
}

// Service orchestrates the loader, the snapshot store and the renderer.
type Service struct {
	loader   *balloon.Loader
	store    *store.MemoryStore
	renderer *render.Renderer
	logger   *zap.SugaredLogger

	// refreshMu keeps one cycle's store write and render pass together.
	refreshMu sync.Mutex
}

// NewService creates a new Service.
func NewService(loader *balloon.Loader, st *store.MemoryStore, renderer *render.Renderer, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		loader:   loader,
		store:    st,
		renderer: renderer,
		logger:   logger,
	}
}

// Refresh runs one load cycle: load all hours, replace the store and render
// the most recent snapshot. With no data the markers are cleared and the
// result reports zero balloons; that is not an error. Overlapping refreshes
// run one after another so the markers always belong to the stored cycle.
func (s *Service) Refresh(ctx context.Context) (RefreshResult, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()
	id := uuid.NewString()
	log := s.logger.With("cycle", id)

	snaps := s.loader.Load(ctx)
	s.store.Replace(id, time.Now().UTC(), snaps)

	res := RefreshResult{CycleID: id, HoursLoaded: len(snaps)}

	latest, err := s.store.Latest()
	if err != nil {
		log.Warnw("no balloon data available; clearing markers")
		s.renderer.Clear()
		res.Duration = time.Since(start)
		return res, nil
	}
	res.Balloons = latest.Len()

	pass, err := s.renderer.Render(ctx, latest)
	if err != nil {
		return res, fmt.Errorf("render latest snapshot: %w", err)
	}
	res.Render = pass
	res.Duration = time.Since(start)

	log.Infow("refresh completed",
		"hours", res.HoursLoaded,
		"balloons", res.Balloons,
		"placed", pass.Placed,
		"weatherPoints", pass.WeatherPoints,
		"cancelled", pass.Cancelled,
		"duration", res.Duration)
	return res, nil
}

// Summary derives the stats for the current cycle.
func (s *Service) Summary() stats.Summary {
	var snap *balloon.Snapshot
	if latest, err := s.store.Latest(); err == nil {
		snap = &latest
	}

	sum := stats.Compute(snap, s.renderer.WeatherPoints())
	_, loadedAt, hours := s.store.Cycle()
	sum.HoursLoaded = hours
	if !loadedAt.IsZero() {
		sum.LoadedAt = &loadedAt
	}
	return sum
}

// Snapshots lists the current cycle, most recent first.
func (s *Service) Snapshots() []balloon.Summary {
	all := s.store.All()
	out := make([]balloon.Summary, 0, len(all))
	for _, snap := range all {
		out = append(out, snap.Summary())
	}
	return out
}

// Snapshot returns one hour of the current cycle; store.ErrNotFound when absent.
func (s *Service) Snapshot(hoursAgo int) (balloon.Snapshot, error) {
	return s.store.ByHour(hoursAgo)
}

// Markers returns the renderer's layer as GeoJSON.
func (s *Service) Markers() *geojson.FeatureCollection {
	return s.renderer.Layer().FeatureCollection()
}

// Close cancels any pass in flight and tears the renderer down.
func (s *Service) Close() {
	s.renderer.Close()
}

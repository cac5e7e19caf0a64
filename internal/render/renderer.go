package render

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/balloon-tracker/internal/balloon"
	"github.com/i474232898/balloon-tracker/internal/weather"
)

// DefaultSampleSize is the maximum number of positions annotated with weather per pass.
const DefaultSampleSize = 30

// ErrClosed is returned by Render after Close.
var ErrClosed = errors.New("renderer closed")

// Result describes one render pass.
type Result struct {
	PassID        string `json:"passId"`
	Placed        int    `json:"placed"`
	Sampled       int    `json:"sampled"`
	Lookups       int    `json:"lookups"`
	WeatherPoints int    `json:"weatherPoints"`
	Cancelled     bool   `json:"cancelled"`
}

// Renderer turns a snapshot into markers on its Layer.
// It owns the layer and the weather cache; only one pass is current at a time.
type Renderer struct {
	provider   weather.Provider
	cache      *weather.Cache
	layer      *Layer
	sampleSize int
	perm       func(n int) []int
	logger     *zap.SugaredLogger

	mu            sync.Mutex
	cancel        context.CancelFunc
	current       string
	weatherPoints int
	closed        bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSampleSize overrides DefaultSampleSize.
func WithSampleSize(n int) Option {
	return func(r *Renderer) {
		if n >= 0 {
			r.sampleSize = n
		}
	}
}

// WithPerm replaces the random permutation used for sampling.
func WithPerm(perm func(n int) []int) Option {
	return func(r *Renderer) {
		r.perm = perm
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer creates a renderer with a fresh layer and cache. A nil provider disables weather.
func NewRenderer(provider weather.Provider, opts ...Option) *Renderer {
	r := &Renderer{
		provider:   provider,
		cache:      weather.NewCache(),
		layer:      NewLayer(),
		sampleSize: DefaultSampleSize,
		perm:       rand.Perm,
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) Layer() *Layer { return r.layer }

// WeatherPoints is the count reported by the last pass that ran to completion.
func (r *Renderer) WeatherPoints() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.weatherPoints
}

// sample picks min(sampleSize, n) distinct indices uniformly at random.
func (r *Renderer) sample(n int) map[int]struct{} {
	k := r.sampleSize
	if n < k {
		k = n
	}
	picked := make(map[int]struct{}, k)
	if k == 0 {
		return picked
	}
	for _, i := range r.perm(n)[:k] {
		picked[i] = struct{}{}
	}
	return picked
}

// begin supersedes the current pass, clears the layer and resets the cache.
func (r *Renderer) begin(ctx context.Context) (context.Context, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, "", ErrClosed
	}
	if r.cancel != nil {
		r.cancel()
	}

	passCtx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()
	r.cancel = cancel
	r.current = id

	r.layer.Clear()
	r.cache.Reset()
	return passCtx, id, nil
}

// place adds m unless the pass was cancelled. Holding r.mu orders it against begin.
func (r *Renderer) place(ctx context.Context, m Marker) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	return r.layer.add(m)
}

func (r *Renderer) finish(id string, weatherPoints int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != id {
		return
	}
	r.weatherPoints = weatherPoints
	r.endLocked()
}

// abort ends pass id without publishing its weather count.
func (r *Renderer) abort(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == id {
		r.endLocked()
	}
}

func (r *Renderer) endLocked() {
	r.cancel()
	r.cancel = nil
	r.current = ""
}

// Render runs one pass over snap. Any pass still in flight is cancelled first.
// Weather lookups are sequential and interleaved with placement; the pass checks
// for cancellation before every lookup and every placement and simply stops when
// cancelled. A cancelled pass reports Cancelled and does not update WeatherPoints.
func (r *Renderer) Render(ctx context.Context, snap balloon.Snapshot) (Result, error) {
	passCtx, id, err := r.begin(ctx)
	if err != nil {
		return Result{}, err
	}

	n := snap.Len()
	picked := r.sample(n)
	res := Result{PassID: id, Sampled: len(picked)}
	log := r.logger.With("pass", id, "hoursAgo", snap.HoursAgo())
	log.Debugw("render pass started", "balloons", n, "sampled", len(picked))

	for i := 0; i < n; i++ {
		if passCtx.Err() != nil {
			res.Cancelled = true
			break
		}

		p := snap.At(i)
		var sample *weather.Sample

		if _, ok := picked[i]; ok && r.provider != nil {
			key := weather.KeyFor(p.Latitude, p.Longitude)
			if cached, hit := r.cache.Get(key); hit {
				sample = &cached
				res.WeatherPoints++
			} else {
				res.Lookups++
				s, err := r.provider.Current(passCtx, p.Latitude, p.Longitude)
				switch {
				case err != nil:
					if passCtx.Err() == nil {
						log.Warnw("weather lookup failed", "key", key.String(), "error", err)
					}
				case passCtx.Err() == nil:
					r.cache.Put(key, s)
					sample = &s
					res.WeatherPoints++
				}
			}
		}

		if passCtx.Err() != nil {
			res.Cancelled = true
			break
		}
		m, err := NewMarker(i, p, sample)
		if err != nil {
			r.abort(id)
			return res, fmt.Errorf("build marker %d: %w", i, err)
		}
		if !r.place(passCtx, m) {
			res.Cancelled = true
			break
		}
		res.Placed++
	}

	if res.Cancelled {
		log.Infow("render pass cancelled", "placed", res.Placed, "lookups", res.Lookups)
		return res, nil
	}

	r.finish(id, res.WeatherPoints)
	log.Infow("render pass completed",
		"placed", res.Placed,
		"lookups", res.Lookups,
		"weatherPoints", res.WeatherPoints)
	return res, nil
}

// Clear cancels the current pass and removes all markers; the renderer stays usable.
func (r *Renderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
		r.current = ""
	}
	r.layer.Clear()
	r.cache.Reset()
	r.weatherPoints = 0
}

// Close cancels any pass in flight and destroys the layer.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.layer.Destroy()
	r.cache.Reset()
}

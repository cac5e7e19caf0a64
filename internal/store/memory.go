package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/balloon-tracker/internal/balloon"
)

var (
	// ErrNotFound is returned when no snapshot is held for the request.
	ErrNotFound = errors.New("no balloon data")
)

// Cycle is the result of one load cycle.
type Cycle struct {
	ID        string
	LoadedAt  time.Time
	Snapshots []balloon.Snapshot // hoursAgo ascending
}

// MemoryStore is a concurrency-safe holder of the current load cycle.
// Each Replace discards the previous cycle entirely; nothing is merged.
type MemoryStore struct {
	mu    sync.RWMutex
	cycle Cycle

	// key: hoursAgo, value: index into cycle.Snapshots
	byHour map[int]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byHour: make(map[int]int)}
}

// Replace installs a new cycle.
func (s *MemoryStore) Replace(id string, loadedAt time.Time, snapshots []balloon.Snapshot) {
	snaps := make([]balloon.Snapshot, len(snapshots))
	copy(snaps, snapshots)

	byHour := make(map[int]int, len(snaps))
	for i, snap := range snaps {
		byHour[snap.HoursAgo()] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycle = Cycle{ID: id, LoadedAt: loadedAt, Snapshots: snaps}
	s.byHour = byHour
}

// Latest returns the first (most recent) snapshot of the current cycle.
func (s *MemoryStore) Latest() (balloon.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.cycle.Snapshots) == 0 {
		return balloon.Snapshot{}, ErrNotFound
	}
	return s.cycle.Snapshots[0], nil
}

// ByHour returns the snapshot for an hour offset.
func (s *MemoryStore) ByHour(hoursAgo int) (balloon.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byHour[hoursAgo]
	if !ok {
		return balloon.Snapshot{}, ErrNotFound
	}
	return s.cycle.Snapshots[i], nil
}

// All returns every snapshot of the current cycle, most recent first.
func (s *MemoryStore) All() []balloon.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]balloon.Snapshot, len(s.cycle.Snapshots))
	copy(out, s.cycle.Snapshots)
	return out
}

// Cycle returns the identifiers of the current cycle.
func (s *MemoryStore) Cycle() (id string, loadedAt time.Time, hours int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cycle.ID, s.cycle.LoadedAt, len(s.cycle.Snapshots)
}

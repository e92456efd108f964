package catalog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Lister fetches the full product list from the remote API.
type Lister interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// Source is the read-through product cache. It loads once per screen
// activation and never refreshes on its own; callers that need fresher
// stock call Load again.
type Source struct {
	api    Lister
	logger *zap.Logger

	mu       sync.RWMutex
	snap     Snapshot
	loaded   bool
	loadedAt time.Time
}

func NewSource(api Lister, logger *zap.Logger) *Source {
	return &Source{
		api:    api,
		logger: logger.With(zap.String("component", "catalog")),
		snap:   NewSnapshot(nil),
	}
}

// Load replaces the snapshot with the API's current product list. On
// failure the previous snapshot is kept.
func (s *Source) Load(ctx context.Context) ([]Product, error) {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		s.logger.Warn("load products failed", zap.Error(err))
		return nil, err
	}

	snap := NewSnapshot(products)

	s.mu.Lock()
	s.snap = snap
	s.loaded = true
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.logger.Debug("products loaded", zap.Int("count", snap.Len()))
	return snap.Products(), nil
}

// Snapshot returns the most recently loaded snapshot (empty before the
// first successful Load).
func (s *Source) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Product looks up id in the current snapshot.
func (s *Source) Product(id int64) (Product, bool) {
	return s.Snapshot().Product(id)
}

// Loaded reports whether a load has succeeded and when.
func (s *Source) Loaded() (bool, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded, s.loadedAt
}

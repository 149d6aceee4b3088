package lots

import (
	"context"
	"sync"
	"time"

	"lot-sync/core/lot"

	"golang.org/x/sync/singleflight"
)

// DatasetCache holds one loaded dataset.
type DatasetCache struct {
	// Lots is the dataset in stored order.
	Lots []lot.Lot

	// Built is the timestamp when this cache was built.
	Built time.Time

	// TTL is the time-to-live for this cache.
	TTL time.Duration
}

// IsExpired returns true if this cache has expired based on its TTL.
func (c *DatasetCache) IsExpired() bool {
	if c.TTL == 0 {
		return true // No caching
	}
	return time.Since(c.Built) > c.TTL
}

type loadFunc func(ctx context.Context, auction string) ([]lot.Lot, error)

// datasetStore caches datasets per auction.
type datasetStore struct {
	mu     sync.RWMutex
	caches map[string]*DatasetCache
	// gens is bumped by invalidate. Loads started under an older generation are not stored.
	gens map[string]uint64
	sf   singleflight.Group
	ttl  time.Duration
	load loadFunc
}

func newDatasetStore(ttl time.Duration, load loadFunc) *datasetStore {
	return &datasetStore{
		caches: make(map[string]*DatasetCache),
		gens:   make(map[string]uint64),
		ttl:    ttl,
		load:   load,
	}
}

// get returns the cached dataset of auction, loading it when missing or expired.
// Concurrent misses for one auction share a single load.
func (s *datasetStore) get(ctx context.Context, auction string) (*DatasetCache, error) {
	s.mu.RLock()
	cache, exists := s.caches[auction]
	s.mu.RUnlock()

	if exists && !cache.IsExpired() {
		return cache, nil
	}

	result, err, _ := s.sf.Do(auction, func() (interface{}, error) {
		s.mu.RLock()
		cache, exists := s.caches[auction]
		gen := s.gens[auction]
		s.mu.RUnlock()

		if exists && !cache.IsExpired() {
			return cache, nil
		}

		lots, err := s.load(ctx, auction)
		if err != nil {
			return nil, err
		}

		fresh := &DatasetCache{Lots: lots, Built: time.Now(), TTL: s.ttl}
		s.mu.Lock()
		if s.gens[auction] == gen {
			s.caches[auction] = fresh
		}
		s.mu.Unlock()

		return fresh, nil
	})

	if err != nil {
		return nil, err
	}

	return result.(*DatasetCache), nil
}

// invalidate drops the cached dataset of auction. A load already in flight still answers
// its callers but is not cached, and later calls start a new load.
func (s *datasetStore) invalidate(auction string) {
	s.mu.Lock()
	delete(s.caches, auction)
	s.gens[auction]++
	s.mu.Unlock()
	s.sf.Forget(auction)
}

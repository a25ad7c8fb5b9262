// Package memory provides an in-process price cache used when Redis is
// disabled and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

type entry struct {
	price     float64
	expiresAt time.Time
}

// PriceCache is a TTL map implementing domain.PriceCache. Expired entries
// are dropped lazily on read.
type PriceCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewPriceCache creates an empty in-memory cache.
func NewPriceCache() *PriceCache {
	return &PriceCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func key(venue string, symbol domain.Symbol) string {
	return venue + ":" + symbol.String()
}

// SetPrice stores price under (venue, symbol) for ttl.
func (pc *PriceCache) SetPrice(_ context.Context, venue string, symbol domain.Symbol, price float64, ttl time.Duration) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.entries[key(venue, symbol)] = entry{price: price, expiresAt: pc.now().Add(ttl)}
	return nil
}

// GetPrice returns the cached price when present and unexpired.
func (pc *PriceCache) GetPrice(_ context.Context, venue string, symbol domain.Symbol) (float64, bool, error) {
	k := key(venue, symbol)

	pc.mu.RLock()
	e, ok := pc.entries[k]
	pc.mu.RUnlock()
	if !ok {
		return 0, false, nil
	}
	if pc.now().After(e.expiresAt) {
		pc.mu.Lock()
		delete(pc.entries, k)
		pc.mu.Unlock()
		return 0, false, nil
	}
	return e.price, true, nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*PriceCache)(nil)

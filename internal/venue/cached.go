package venue

import (
	"context"
	"log/slog"
	"time"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

// CachedGateway decorates a VenueGateway with a PriceCache so repeat lookups
// of the same symbol within a cycle hit the cache instead of the venue.
// Market listings and balances pass through untouched.
type CachedGateway struct {
	inner  domain.VenueGateway
	cache  domain.PriceCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedGateway wraps inner with cache. ttl bounds how long a price may
// serve repeat lookups; it should stay well under the cycle duration so
// cross-cycle reads never see stale prices.
func NewCachedGateway(inner domain.VenueGateway, cache domain.PriceCache, ttl time.Duration, logger *slog.Logger) *CachedGateway {
	return &CachedGateway{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "cached_gateway"), slog.String("venue", inner.Name())),
	}
}

// Name returns the wrapped venue's identifier.
func (c *CachedGateway) Name() string { return c.inner.Name() }

// ListMarkets passes through to the venue.
func (c *CachedGateway) ListMarkets(ctx context.Context) ([]domain.Symbol, error) {
	return c.inner.ListMarkets(ctx)
}

// GetPrice serves from the cache when a fresh entry exists, otherwise
// queries the venue and stores the result. Cache failures degrade to direct
// lookups rather than failing the price fetch.
func (c *CachedGateway) GetPrice(ctx context.Context, symbol domain.Symbol) (float64, error) {
	if price, ok, err := c.cache.GetPrice(ctx, c.inner.Name(), symbol); err == nil && ok {
		return price, nil
	} else if err != nil {
		c.logger.Warn("price cache read failed", slog.String("symbol", symbol.String()), slog.String("error", err.Error()))
	}

	price, err := c.inner.GetPrice(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if err := c.cache.SetPrice(ctx, c.inner.Name(), symbol, price, c.ttl); err != nil {
		c.logger.Warn("price cache write failed", slog.String("symbol", symbol.String()), slog.String("error", err.Error()))
	}
	return price, nil
}

// GetBalance passes through to the venue.
func (c *CachedGateway) GetBalance(ctx context.Context) (map[string]float64, error) {
	return c.inner.GetBalance(ctx)
}

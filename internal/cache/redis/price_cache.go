package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

// PriceCache implements domain.PriceCache using Redis string keys with
// native expiry. Each price lives at "price:{venue}:{symbol}"; the TTL on
// the key bounds staleness, so a missing key simply means a fresh fetch.
type PriceCache struct {
	rdb *redis.Client
}

// NewPriceCache creates a PriceCache backed by the given Client.
func NewPriceCache(c *Client) *PriceCache {
	return &PriceCache{rdb: c.Underlying()}
}

func priceKey(venue string, symbol domain.Symbol) string {
	return "price:" + venue + ":" + symbol.String()
}

// SetPrice stores the latest price for (venue, symbol) with the given TTL.
func (pc *PriceCache) SetPrice(ctx context.Context, venue string, symbol domain.Symbol, price float64, ttl time.Duration) error {
	key := priceKey(venue, symbol)
	val := strconv.FormatFloat(price, 'f', -1, 64)
	if err := pc.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set price %s: %w", key, err)
	}
	return nil
}

// GetPrice retrieves the cached price for (venue, symbol). The second return
// reports whether a fresh entry existed.
func (pc *PriceCache) GetPrice(ctx context.Context, venue string, symbol domain.Symbol) (float64, bool, error) {
	key := priceKey(venue, symbol)
	val, err := pc.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis: get price %s: %w", key, err)
	}
	price, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, fmt.Errorf("redis: parse price %s: %w", key, err)
	}
	return price, true, nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*PriceCache)(nil)

package domain

import (
	"context"
	"time"
)

// VenueGateway is the capability surface the core needs from one trading
// venue. Implementations live in internal/venue; the core never resolves a
// venue by runtime name lookup, only through the static registry.
type VenueGateway interface {
	// Name returns the venue identifier, e.g. "binance".
	Name() string
	// ListMarkets returns every symbol tradable on the venue. Fails with
	// ErrVenueUnavailable when the venue cannot be reached.
	ListMarkets(ctx context.Context) ([]Symbol, error)
	// GetPrice returns the last-trade price for symbol. Fails with
	// ErrPriceUnavailable when the venue has no usable quote.
	GetPrice(ctx context.Context, symbol Symbol) (float64, error)
	// GetBalance returns a read-only snapshot of the real account balance,
	// keyed by currency code. Used only for external cross-checking; the
	// core never mutates real balances.
	GetBalance(ctx context.Context) (map[string]float64, error)
}

// PriceCache provides fast access to recently fetched last-trade prices.
type PriceCache interface {
	SetPrice(ctx context.Context, venue string, symbol Symbol, price float64, ttl time.Duration) error
	GetPrice(ctx context.Context, venue string, symbol Symbol) (float64, bool, error)
}

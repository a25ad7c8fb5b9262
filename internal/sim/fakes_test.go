package sim

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(ctx)
}

// fakeGateway is an in-memory VenueGateway with adjustable prices.
type fakeGateway struct {
	name string

	mu       sync.Mutex
	markets  []domain.Symbol
	prices   map[domain.Symbol]float64
	priceErr map[domain.Symbol]error
}

func (f *fakeGateway) Name() string { return f.name }

func (f *fakeGateway) ListMarkets(context.Context) ([]domain.Symbol, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markets, nil
}

func (f *fakeGateway) GetPrice(_ context.Context, symbol domain.Symbol) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.priceErr[symbol]; ok {
		return 0, err
	}
	price, ok := f.prices[symbol]
	if !ok {
		return 0, domain.ErrPriceUnavailable
	}
	return price, nil
}

func (f *fakeGateway) GetBalance(context.Context) (map[string]float64, error) {
	return nil, domain.ErrVenueUnavailable
}

func (f *fakeGateway) setPrice(symbol domain.Symbol, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.prices == nil {
		f.prices = make(map[domain.Symbol]float64)
	}
	f.prices[symbol] = price
}

// recordingSink captures every event pushed through the orchestrator.
type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) Notify(_ context.Context, event, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) count(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e == event {
			n++
		}
	}
	return n
}

package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

// Seeder splits a configured initial amount across all venue accounts: one
// third of each venue's share stays as reference-currency cash, the rest is
// converted evenly into the distinct main currencies of the common pairs at
// the seed-time price.
type Seeder struct {
	lookupTimeout timeoutFunc
	logger        *slog.Logger

	// conversionPrices records the price used per (venue, currency) at seed
	// time. Audit value only: reconciliation always re-queries the live
	// price and must never read this.
	conversionPrices map[string]map[string]float64
}

type timeoutFunc func(context.Context) (context.Context, context.CancelFunc)

// NewSeeder creates a Seeder. withTimeout wraps each price lookup with the
// caller's deadline policy.
func NewSeeder(withTimeout func(context.Context) (context.Context, context.CancelFunc), logger *slog.Logger) *Seeder {
	return &Seeder{
		lookupTimeout:    withTimeout,
		logger:           logger.With(slog.String("component", "seeder")),
		conversionPrices: make(map[string]map[string]float64),
	}
}

// Seed populates the ledger from initialAmount. Each venue receives an equal
// share; one third of the share is reserved as cash and the remaining two
// thirds are split evenly across the distinct main currencies appearing in
// commonPairs, converted at the current MAIN/REFERENCE price on that venue.
// A failed seed-time price lookup leaves that portion as cash so no value is
// lost.
func (s *Seeder) Seed(ctx context.Context, l *Ledger, initialAmount float64, gateways []domain.VenueGateway, commonPairs []domain.Symbol) error {
	if initialAmount <= 0 {
		return fmt.Errorf("seeder: initial amount %.8f must be positive", initialAmount)
	}
	if len(gateways) == 0 {
		return fmt.Errorf("seeder: no venues to seed")
	}

	currencies := mainCurrencies(commonPairs, l.Reference())
	share := initialAmount / float64(len(gateways))
	cashReserve := share / 3

	for _, gw := range gateways {
		venue := gw.Name()
		if err := l.CreditCash(venue, cashReserve); err != nil {
			return fmt.Errorf("seeder: reserve cash on %s: %w", venue, err)
		}

		remainder := share - cashReserve
		if len(currencies) == 0 {
			// Nothing to convert into; the whole share stays liquid.
			if err := l.CreditCash(venue, remainder); err != nil {
				return fmt.Errorf("seeder: credit remainder on %s: %w", venue, err)
			}
			continue
		}

		portion := remainder / float64(len(currencies))
		for _, currency := range currencies {
			price, err := s.fetchPrice(ctx, gw, domain.PairSymbol(currency, l.Reference()))
			if err != nil || price <= 0 {
				s.logger.Warn("seed conversion skipped, keeping portion as cash",
					slog.String("venue", venue),
					slog.String("currency", currency),
					slog.Any("error", err),
				)
				if err := l.CreditCash(venue, portion); err != nil {
					return fmt.Errorf("seeder: credit unconverted portion on %s: %w", venue, err)
				}
				continue
			}
			if err := l.CreditHolding(venue, currency, portion/price); err != nil {
				return fmt.Errorf("seeder: credit %s on %s: %w", currency, venue, err)
			}
			s.recordConversion(venue, currency, price)
			s.logger.Debug("seeded holding",
				slog.String("venue", venue),
				slog.String("currency", currency),
				slog.Float64("price", price),
				slog.Float64("amount", portion/price),
			)
		}
	}
	return nil
}

// ConversionPrices returns the audit map of seed-time conversion prices per
// venue and currency.
func (s *Seeder) ConversionPrices() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(s.conversionPrices))
	for venue, byCurrency := range s.conversionPrices {
		inner := make(map[string]float64, len(byCurrency))
		for cur, price := range byCurrency {
			inner[cur] = price
		}
		out[venue] = inner
	}
	return out
}

func (s *Seeder) fetchPrice(ctx context.Context, gw domain.VenueGateway, symbol domain.Symbol) (float64, error) {
	lookupCtx, cancel := s.lookupTimeout(ctx)
	defer cancel()
	return gw.GetPrice(lookupCtx, symbol)
}

func (s *Seeder) recordConversion(venue, currency string, price float64) {
	if s.conversionPrices[venue] == nil {
		s.conversionPrices[venue] = make(map[string]float64)
	}
	s.conversionPrices[venue][currency] = price
}

// mainCurrencies extracts the distinct non-reference currencies from the
// common pairs, in deterministic order.
func mainCurrencies(pairs []domain.Symbol, reference string) []string {
	seen := make(map[string]bool, len(pairs))
	var out []string
	for _, pair := range pairs {
		main := pair.MainCurrency(reference)
		if main == reference || main == "" || seen[main] {
			continue
		}
		seen[main] = true
		out = append(out, main)
	}
	sort.Strings(out)
	return out
}

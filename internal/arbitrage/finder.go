package arbitrage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

// FinderConfig configures discrepancy detection.
type FinderConfig struct {
	// MinPriceDifference is the absolute price gap a symbol must clear on a
	// venue pair before an opportunity is emitted.
	MinPriceDifference float64
	// LookupTimeout bounds each price lookup. A timeout drops only the
	// affected symbol, never the whole scan.
	LookupTimeout func(context.Context) (context.Context, context.CancelFunc)
}

// Finder scans every unordered venue pair for common symbols whose prices
// diverge by at least the configured threshold.
type Finder struct {
	matcher *Matcher
	cfg     FinderConfig
	logger  *slog.Logger
}

// FindResult carries the opportunities of one scan plus the symbols dropped
// because a price lookup failed. Dropped symbols are reported, never
// silently discarded.
type FindResult struct {
	Opportunities []domain.Opportunity
	Dropped       []string
}

// NewFinder creates a Finder using matcher to resolve common symbols.
func NewFinder(matcher *Matcher, cfg FinderConfig, logger *slog.Logger) *Finder {
	return &Finder{
		matcher: matcher,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "finder")),
	}
}

// Find scans all venue pairs. For each common symbol both prices are fetched
// concurrently and joined before comparison, so partial data is never
// compared. A price failure on either side excludes only that symbol from
// the result; the scan of remaining symbols continues.
func (f *Finder) Find(ctx context.Context, venues []domain.VenueGateway) FindResult {
	var (
		mu     sync.Mutex
		result FindResult
	)

	for i := 0; i < len(venues); i++ {
		for j := i + 1; j < len(venues); j++ {
			a, b := venues[i], venues[j]
			common := f.matcher.CommonSymbols(ctx, a, b)
			if len(common) == 0 {
				f.logger.Debug("no common symbols",
					slog.String("venue_a", a.Name()),
					slog.String("venue_b", b.Name()),
				)
				continue
			}

			g, scanCtx := errgroup.WithContext(ctx)
			for _, symbol := range common {
				symbol := symbol
				g.Go(func() error {
					opp, err := f.evaluate(scanCtx, a, b, symbol)
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err != nil:
						result.Dropped = append(result.Dropped, err.Error())
					case opp != nil:
						result.Opportunities = append(result.Opportunities, *opp)
					}
					// Lookup failures are swallowed here so one symbol never
					// aborts the scan of the rest.
					return nil
				})
			}
			_ = g.Wait()
		}
	}

	f.logger.Info("scan complete",
		slog.Int("venues", len(venues)),
		slog.Int("opportunities", len(result.Opportunities)),
		slog.Int("dropped", len(result.Dropped)),
	)
	return result
}

// evaluate fetches the symbol's price on both venues concurrently, joins both
// lookups, and emits an oriented opportunity when the gap clears the
// threshold. Returns (nil, nil) for a below-threshold pair.
func (f *Finder) evaluate(ctx context.Context, a, b domain.VenueGateway, symbol domain.Symbol) (*domain.Opportunity, error) {
	var quoteA, quoteB domain.Quote

	g, lookupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quoteA, err = f.fetchQuote(lookupCtx, a, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		quoteB, err = f.fetchQuote(lookupCtx, b, symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	gap := quoteA.Price - quoteB.Price
	if gap < 0 {
		gap = -gap
	}
	if gap < f.cfg.MinPriceDifference {
		return nil, nil
	}

	opp, err := domain.NewOpportunity(quoteA.Venue, quoteB.Venue, symbol, quoteA.Price, quoteB.Price)
	if err != nil {
		// Equal prices with a zero threshold land here; nothing to emit.
		return nil, nil
	}
	f.logger.Debug("discrepancy found",
		slog.String("symbol", symbol.String()),
		slog.String("buy_venue", opp.BuyVenue),
		slog.String("sell_venue", opp.SellVenue),
		slog.Float64("spread", opp.Spread()),
	)
	return &opp, nil
}

// fetchQuote captures one ephemeral price observation; quotes never outlive
// the evaluation that requested them.
func (f *Finder) fetchQuote(ctx context.Context, gw domain.VenueGateway, symbol domain.Symbol) (domain.Quote, error) {
	if f.cfg.LookupTimeout != nil {
		var cancel context.CancelFunc
		ctx, cancel = f.cfg.LookupTimeout(ctx)
		defer cancel()
	}
	price, err := gw.GetPrice(ctx, symbol)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%s on %s: %w", symbol, gw.Name(), err)
	}
	return domain.Quote{
		Venue:     gw.Name(),
		Symbol:    symbol,
		Price:     price,
		Timestamp: time.Now().UTC(),
	}, nil
}

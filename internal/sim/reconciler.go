package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/arbsim/internal/domain"
	"github.com/alanyoungcy/arbsim/internal/ledger"
)

// Reconciler converts every non-reference holding on every venue back into
// reference-currency cash at the current live price. It never reuses the
// seed-time conversion price.
type Reconciler struct {
	gateways      map[string]domain.VenueGateway
	lookupTimeout func(context.Context) (context.Context, context.CancelFunc)
	logger        *slog.Logger
}

// NewReconciler creates a Reconciler resolving prices through the given
// gateways, keyed by venue name.
func NewReconciler(
	gateways map[string]domain.VenueGateway,
	withTimeout func(context.Context) (context.Context, context.CancelFunc),
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		gateways:      gateways,
		lookupTimeout: withTimeout,
		logger:        logger.With(slog.String("component", "reconciler")),
	}
}

// RevertToReference zeroes every positive non-cash holding and credits cash
// with amount times the live CURRENCY/REFERENCE price. Venues reconcile
// concurrently; each venue's mutations stay single-writer. The operation is
// idempotent: with no intervening trade a second call finds no holdings and
// changes nothing. Returned skipped entries describe holdings kept because
// their price lookup failed; they are reported, not silently dropped.
func (r *Reconciler) RevertToReference(ctx context.Context, l *ledger.Ledger) (skipped []string, err error) {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, venue := range l.Venues() {
		venue := venue
		g.Go(func() error {
			venueSkipped, venueErr := r.revertVenue(gctx, l, venue)
			mu.Lock()
			skipped = append(skipped, venueSkipped...)
			mu.Unlock()
			return venueErr
		})
	}
	if waitErr := g.Wait(); waitErr != nil {
		return skipped, waitErr
	}
	return skipped, nil
}

func (r *Reconciler) revertVenue(ctx context.Context, l *ledger.Ledger, venue string) ([]string, error) {
	gw, ok := r.gateways[venue]
	if !ok {
		return nil, fmt.Errorf("reconciler: %q: %w", venue, domain.ErrUnknownVenue)
	}

	balances, err := l.Balances(venue)
	if err != nil {
		return nil, fmt.Errorf("reconciler: %w", err)
	}

	var skipped []string
	for currency, amount := range balances {
		if currency == l.Reference() || amount <= 0 {
			continue
		}

		price, err := r.fetchPrice(ctx, gw, domain.PairSymbol(currency, l.Reference()))
		if err != nil || price <= 0 {
			// Keep the holding; the next cycle retries at its own live price.
			r.logger.Warn("holding kept, live price unavailable",
				slog.String("venue", venue),
				slog.String("currency", currency),
				slog.Float64("amount", amount),
				slog.Any("error", err),
			)
			skipped = append(skipped, fmt.Sprintf("reconcile %s on %s: %v", currency, venue, err))
			continue
		}

		if err := l.DebitHolding(venue, currency, amount); err != nil {
			return skipped, fmt.Errorf("reconciler: zero %s on %s: %w", currency, venue, err)
		}
		if err := l.CreditCash(venue, amount*price); err != nil {
			return skipped, fmt.Errorf("reconciler: credit cash on %s: %w", venue, err)
		}
		r.logger.Debug("holding reverted",
			slog.String("venue", venue),
			slog.String("currency", currency),
			slog.Float64("amount", amount),
			slog.Float64("price", price),
		)
	}
	return skipped, nil
}

func (r *Reconciler) fetchPrice(ctx context.Context, gw domain.VenueGateway, symbol domain.Symbol) (float64, error) {
	if r.lookupTimeout != nil {
		var cancel context.CancelFunc
		ctx, cancel = r.lookupTimeout(ctx)
		defer cancel()
	}
	return gw.GetPrice(ctx, symbol)
}

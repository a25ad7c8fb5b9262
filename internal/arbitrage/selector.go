package arbitrage

import (
	"fmt"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

// SelectBest returns the opportunity with the largest spread. It fails with
// ErrNoOpportunity on empty input and with ErrNotProfitable when the maximal
// spread is not positive. The finder's own invariant should make the latter
// unreachable for finder-produced input, but the selector validates rather
// than trusting its argument.
func SelectBest(opportunities []domain.Opportunity) (domain.Opportunity, error) {
	if len(opportunities) == 0 {
		return domain.Opportunity{}, fmt.Errorf("arbitrage: select best: %w", domain.ErrNoOpportunity)
	}

	best := opportunities[0]
	for _, opp := range opportunities[1:] {
		if opp.Spread() > best.Spread() {
			best = opp
		}
	}

	if best.Spread() <= 0 {
		return domain.Opportunity{}, fmt.Errorf("arbitrage: best spread %.8f for %s: %w",
			best.Spread(), best.Symbol, domain.ErrNotProfitable)
	}
	return best, nil
}

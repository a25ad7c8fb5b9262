// Package arbitrage implements pair matching across venues, threshold-based
// discrepancy detection, and best-opportunity selection.
package arbitrage

import (
	"context"
	"sort"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

// Matcher computes the symbols tradable on both venues of a pair.
type Matcher struct {
	// Allow, when non-empty, replaces auto-discovery: the result is the
	// allow-list filtered to symbols listed on both venues, in allow-list
	// order.
	Allow []domain.Symbol
	// Cap truncates auto-discovered intersections so a venue pair with
	// thousands of shared listings stays tractable.
	Cap int
}

// CommonSymbols returns the ordered list of symbols tradable on both venues.
// Auto-discovered results are sorted lexicographically before truncation so
// repeated runs against the same market snapshot are reproducible. A venue
// whose market listing cannot be fetched yields an empty list, not an error.
func (m *Matcher) CommonSymbols(ctx context.Context, a, b domain.VenueGateway) []domain.Symbol {
	marketsA, err := a.ListMarkets(ctx)
	if err != nil {
		return nil
	}
	marketsB, err := b.ListMarkets(ctx)
	if err != nil {
		return nil
	}

	onB := make(map[domain.Symbol]bool, len(marketsB))
	for _, sym := range marketsB {
		onB[sym] = true
	}

	if len(m.Allow) > 0 {
		onA := make(map[domain.Symbol]bool, len(marketsA))
		for _, sym := range marketsA {
			onA[sym] = true
		}
		var common []domain.Symbol
		for _, sym := range m.Allow {
			if onA[sym] && onB[sym] {
				common = append(common, sym)
			}
		}
		return common
	}

	var common []domain.Symbol
	for _, sym := range marketsA {
		if onB[sym] {
			common = append(common, sym)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })
	if m.Cap > 0 && len(common) > m.Cap {
		common = common[:m.Cap]
	}
	return common
}

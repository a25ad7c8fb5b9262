package domain

import "time"

// CycleReport summarizes one orchestrated simulation cycle. Per-cycle
// failures are recorded here rather than propagated; only startup
// configuration errors ever escape to the caller.
type CycleReport struct {
	ID                 string
	Cycle              int
	StartedAt          time.Time
	Duration           time.Duration
	OpportunitiesFound int
	// Executed is nil when the cycle had nothing worth trading.
	Executed *Opportunity
	// Failures lists transient and execution failures observed during the
	// cycle (dropped price lookups, rejected legs). Never silently empty
	// when something went wrong.
	Failures []string
	// Balances is the fully reconciled per-venue balance sheet at cycle end.
	Balances map[string]map[string]float64
	// TotalAfter is the sum of all venues' reference-currency cash once the
	// ledger has been reconciled, so totals are comparable across cycles.
	TotalAfter float64
}

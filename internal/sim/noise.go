// Package sim implements the paper-trading execution path: simulated order
// legs against the ledger, reconciliation back to the reference currency,
// and the cycle orchestrator.
package sim

import (
	"context"
	"math/rand"
	"time"
)

const (
	// slippageBound is the half-width of the uniform slippage band applied
	// to each leg's price.
	slippageBound = 0.005

	minLegDelay = 50 * time.Millisecond
	maxLegDelay = 500 * time.Millisecond
)

// ExecutionNoise models slippage and execution latency for simulated legs.
// Implementations must be injected explicitly; the simulator never reaches
// for ambient global randomness.
type ExecutionNoise interface {
	// Slip returns price adjusted by a bounded random factor.
	Slip(price float64) float64
	// LegDelay blocks for a bounded artificial latency, or until ctx is
	// done.
	LegDelay(ctx context.Context)
}

// randomNoise draws slippage within ±0.5% and leg latency within
// [50ms, 500ms] from a seeded source.
type randomNoise struct {
	rng *rand.Rand
}

// NewRandomNoise creates an ExecutionNoise from the given seed. A zero seed
// falls back to the current time so production runs still vary.
func NewRandomNoise(seed int64) ExecutionNoise {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randomNoise{rng: rand.New(rand.NewSource(seed))}
}

func (n *randomNoise) Slip(price float64) float64 {
	factor := 1 + (n.rng.Float64()*2-1)*slippageBound
	return price * factor
}

func (n *randomNoise) LegDelay(ctx context.Context) {
	delay := minLegDelay + time.Duration(n.rng.Int63n(int64(maxLegDelay-minLegDelay)))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// NoNoise is the deterministic ExecutionNoise for tests: prices pass through
// unchanged and legs incur no delay.
type NoNoise struct{}

func (NoNoise) Slip(price float64) float64 { return price }

func (NoNoise) LegDelay(context.Context) {}

package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/arbsim/internal/arbitrage"
	"github.com/alanyoungcy/arbsim/internal/domain"
	"github.com/alanyoungcy/arbsim/internal/ledger"
	"github.com/alanyoungcy/arbsim/internal/sim"
)

// SimulateMode seeds a ledger and runs the full find/execute/reconcile cycle
// loop, trading against the simulated balance sheets.
func (a *App) SimulateMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting simulate mode")
	return a.runOrchestrator(ctx, deps, true)
}

// ScanMode runs the same cycle loop without executing trades: discrepancies
// are found, selected, and reported only.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")
	return a.runOrchestrator(ctx, deps, false)
}

func (a *App) runOrchestrator(ctx context.Context, deps *Dependencies, execute bool) error {
	withTimeout := a.lookupTimeout()

	matcher := &arbitrage.Matcher{
		Allow: a.cfg.SelectedSymbols(),
		Cap:   a.cfg.Pairs.TopN,
	}
	finder := arbitrage.NewFinder(matcher, arbitrage.FinderConfig{
		MinPriceDifference: a.cfg.Arbitrage.MinPriceDifference,
		LookupTimeout:      withTimeout,
	}, a.logger)

	book := ledger.New(a.cfg.Simulation.ReferenceCurrency, venueNames(deps))
	seeder := ledger.NewSeeder(withTimeout, a.logger)

	noise := sim.NewRandomNoise(a.cfg.Simulation.Seed)
	trader := sim.NewTrader(book, noise, sim.TraderConfig{
		CommissionRate:            a.cfg.Simulation.CommissionRate,
		MaxCommissionAbsolute:     a.cfg.Simulation.MaxCommissionAbsolute,
		MaxTradeBalancePercentage: a.cfg.Risk.MaxTradeBalancePercentage,
		PriceDifferenceThreshold:  a.cfg.Risk.PriceDifferenceThreshold,
		MaxPositionSize:           a.cfg.Risk.MaxPositionSize,
	}, a.logger)

	reconciler := sim.NewReconciler(gatewaysByName(deps), withTimeout, a.logger)

	orch := sim.NewOrchestrator(
		deps.Gateways, matcher, finder, trader, reconciler, seeder, book,
		deps.Notifier,
		sim.OrchestratorConfig{
			Cycles:         a.cfg.Simulation.Cycles,
			InitialBalance: a.cfg.Simulation.InitialBalance,
			ExecuteTrades:  execute,
		},
		a.logger,
	)

	// Feeds stop when the orchestrator finishes its cycles.
	runCtx, stopFeeds := context.WithCancel(ctx)
	defer stopFeeds()

	g, runCtx := errgroup.WithContext(runCtx)
	for _, feed := range deps.Feeds {
		feed := feed
		g.Go(func() error {
			return feed.Run(runCtx)
		})
	}
	g.Go(func() error {
		defer stopFeeds()
		err := orch.Run(runCtx)
		if runCtx.Err() != nil {
			return nil // clean shutdown between cycles
		}
		return err
	})
	return g.Wait()
}

func (a *App) lookupTimeout() func(context.Context) (context.Context, context.CancelFunc) {
	timeout := a.cfg.Simulation.LookupTimeout.Duration
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return func(ctx context.Context) (context.Context, context.CancelFunc) {
		return context.WithTimeout(ctx, timeout)
	}
}

func venueNames(deps *Dependencies) []string {
	names := make([]string, 0, len(deps.Gateways))
	for _, gw := range deps.Gateways {
		names = append(names, gw.Name())
	}
	return names
}

func gatewaysByName(deps *Dependencies) map[string]domain.VenueGateway {
	byName := make(map[string]domain.VenueGateway, len(deps.Gateways))
	for _, gw := range deps.Gateways {
		byName[gw.Name()] = gw
	}
	return byName
}

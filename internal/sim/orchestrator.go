package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/arbsim/internal/arbitrage"
	"github.com/alanyoungcy/arbsim/internal/domain"
	"github.com/alanyoungcy/arbsim/internal/ledger"
)

// State is the orchestrator's position inside one cycle.
type State string

const (
	StateSeeded      State = "seeded"
	StateFinding     State = "finding"
	StateExecuting   State = "executing"
	StateReconciling State = "reconciling"
	StateReported    State = "reported"
)

// EventSink receives cycle events. The orchestrator owns the sink and passes
// it by reference; components never log through process-wide mutable state.
type EventSink interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Event types emitted through the sink.
const (
	EventCycleReport      = "cycle_report"
	EventOpportunityFound = "opportunity_found"
	EventExecutionFailed  = "execution_failed"
)

// OrchestratorConfig holds the run parameters.
type OrchestratorConfig struct {
	// Cycles is the number of passes to run; zero or negative runs until the
	// context stops the simulation between cycles.
	Cycles         int
	InitialBalance float64
	// ExecuteTrades is false in scan mode: discrepancies are found, selected
	// and reported, but the ledger is never traded against.
	ExecuteTrades bool
}

// Orchestrator drives the simulation: seed once, then find, select,
// execute, reconcile and report per cycle. All per-cycle failures land in
// that cycle's report; nothing escapes mid-run.
type Orchestrator struct {
	gateways   []domain.VenueGateway
	gatewayMap map[string]domain.VenueGateway
	matcher    *arbitrage.Matcher
	finder     *arbitrage.Finder
	trader     *Trader
	reconciler *Reconciler
	seeder     *ledger.Seeder
	ledger     *ledger.Ledger
	sink       EventSink
	cfg        OrchestratorConfig
	logger     *slog.Logger

	state  State
	cycle  int
	seeded bool
}

// NewOrchestrator wires a simulation run. The ledger must be empty; Run
// seeds it exactly once.
func NewOrchestrator(
	gateways []domain.VenueGateway,
	matcher *arbitrage.Matcher,
	finder *arbitrage.Finder,
	trader *Trader,
	reconciler *Reconciler,
	seeder *ledger.Seeder,
	l *ledger.Ledger,
	sink EventSink,
	cfg OrchestratorConfig,
	logger *slog.Logger,
) *Orchestrator {
	gm := make(map[string]domain.VenueGateway, len(gateways))
	for _, gw := range gateways {
		gm[gw.Name()] = gw
	}
	return &Orchestrator{
		gateways:   gateways,
		gatewayMap: gm,
		matcher:    matcher,
		finder:     finder,
		trader:     trader,
		reconciler: reconciler,
		seeder:     seeder,
		ledger:     l,
		sink:       sink,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "orchestrator")),
	}
}

// State returns the current state, for observability.
func (o *Orchestrator) State() State { return o.state }

// Run seeds the ledger and executes cycles until the configured count is
// reached or ctx is cancelled. Cancellation is honored between cycles only:
// once FINDING has returned, the cycle always reaches RECONCILING and
// REPORTED so totals stay comparable.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.seedOnce(ctx); err != nil {
		return err
	}

	for {
		if o.cfg.Cycles > 0 && o.cycle >= o.cfg.Cycles {
			o.logger.Info("simulation complete",
				slog.Int("cycles", o.cycle),
				slog.Float64("total", o.ledger.TotalCash()),
			)
			return nil
		}
		select {
		case <-ctx.Done():
			o.logger.Info("simulation stopped between cycles", slog.Int("cycles", o.cycle))
			return ctx.Err()
		default:
		}

		o.cycle++
		report := o.runCycle(ctx)
		o.report(ctx, report)
	}
}

func (o *Orchestrator) seedOnce(ctx context.Context) error {
	if o.seeded {
		return nil
	}
	o.state = StateSeeded

	pairs := o.commonPairsUnion(ctx)
	if err := o.seeder.Seed(ctx, o.ledger, o.cfg.InitialBalance, o.gateways, pairs); err != nil {
		return fmt.Errorf("orchestrator: seed: %w", err)
	}
	o.seeded = true
	o.logger.Info("ledger seeded",
		slog.Float64("initial_balance", o.cfg.InitialBalance),
		slog.Int("venues", len(o.gateways)),
		slog.Int("common_pairs", len(pairs)),
	)
	return nil
}

// commonPairsUnion collects the common symbols of every venue pair,
// deduplicated in first-seen order.
func (o *Orchestrator) commonPairsUnion(ctx context.Context) []domain.Symbol {
	seen := make(map[domain.Symbol]bool)
	var union []domain.Symbol
	for i := 0; i < len(o.gateways); i++ {
		for j := i + 1; j < len(o.gateways); j++ {
			for _, sym := range o.matcher.CommonSymbols(ctx, o.gateways[i], o.gateways[j]) {
				if !seen[sym] {
					seen[sym] = true
					union = append(union, sym)
				}
			}
		}
	}
	return union
}

// runCycle executes one full FINDING → EXECUTING → RECONCILING → REPORTED
// pass. It never returns an error: every failure is recorded in the report.
func (o *Orchestrator) runCycle(ctx context.Context) domain.CycleReport {
	started := time.Now().UTC()
	report := domain.CycleReport{
		ID:        uuid.New().String(),
		Cycle:     o.cycle,
		StartedAt: started,
	}

	o.state = StateFinding
	found := o.finder.Find(ctx, o.gateways)
	report.OpportunitiesFound = len(found.Opportunities)
	report.Failures = append(report.Failures, found.Dropped...)

	best, err := arbitrage.SelectBest(found.Opportunities)
	switch {
	case errors.Is(err, domain.ErrNoOpportunity), errors.Is(err, domain.ErrNotProfitable):
		// Informational: skip straight to reconciliation so the cycle still
		// produces a comparable total.
		o.logger.Info("nothing to execute", slog.Int("cycle", o.cycle), slog.String("reason", err.Error()))
	case err != nil:
		report.Failures = append(report.Failures, err.Error())
	default:
		o.notify(ctx, EventOpportunityFound, "opportunity selected", best.String())
		if o.cfg.ExecuteTrades {
			o.state = StateExecuting
			if _, execErr := o.trader.Execute(ctx, best, o.ledger.Reference()); execErr != nil {
				report.Failures = append(report.Failures, execErr.Error())
				o.notify(ctx, EventExecutionFailed, "execution failed", execErr.Error())
			} else {
				report.Executed = &best
			}
		}
	}

	o.state = StateReconciling
	skipped, recErr := o.reconciler.RevertToReference(ctx, o.ledger)
	report.Failures = append(report.Failures, skipped...)
	if recErr != nil {
		report.Failures = append(report.Failures, recErr.Error())
	}

	o.state = StateReported
	report.Balances = o.ledger.Snapshot()
	report.TotalAfter = o.ledger.TotalCash()
	report.Duration = time.Since(started)
	return report
}

func (o *Orchestrator) report(ctx context.Context, report domain.CycleReport) {
	executed := "none"
	if report.Executed != nil {
		executed = report.Executed.String()
	}
	o.logger.Info("cycle reported",
		slog.String("report_id", report.ID),
		slog.Int("cycle", report.Cycle),
		slog.Int("opportunities_found", report.OpportunitiesFound),
		slog.String("executed", executed),
		slog.Int("failures", len(report.Failures)),
		slog.Float64("total_after", report.TotalAfter),
		slog.Duration("duration", report.Duration),
	)
	o.notify(ctx, EventCycleReport, fmt.Sprintf("cycle %d", report.Cycle),
		fmt.Sprintf("opportunities=%d executed=%s failures=%d total=%.2f",
			report.OpportunitiesFound, executed, len(report.Failures), report.TotalAfter))
}

func (o *Orchestrator) notify(ctx context.Context, event, title, message string) {
	if o.sink == nil {
		return
	}
	if err := o.sink.Notify(ctx, event, title, message); err != nil {
		o.logger.Warn("event sink failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

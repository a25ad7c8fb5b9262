package sim

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/arbsim/internal/domain"
	"github.com/alanyoungcy/arbsim/internal/ledger"
)

// TraderConfig holds commission and position-sizing parameters.
type TraderConfig struct {
	CommissionRate        float64
	MaxCommissionAbsolute float64
	// MaxTradeBalancePercentage caps the notional at a fraction of the buy
	// venue's cash.
	MaxTradeBalancePercentage float64
	// PriceDifferenceThreshold scales the spread into a notional cap.
	PriceDifferenceThreshold float64
	// MaxPositionSize is the absolute notional ceiling.
	MaxPositionSize float64
}

// Execution describes what a simulated trade actually did to the ledger.
type Execution struct {
	Opportunity domain.Opportunity
	Notional    float64
	Quantity    float64
	BuyPrice    float64 // slipped
	SellPrice   float64 // slipped
	BuyFee      float64
	SellFee     float64
	Proceeds    float64
}

// Trader applies a selected opportunity to the ledger as a simulated buy leg
// on one venue and sell leg on another.
type Trader struct {
	ledger *ledger.Ledger
	noise  ExecutionNoise
	cfg    TraderConfig
	logger *slog.Logger
}

// NewTrader creates a Trader mutating the given ledger.
func NewTrader(l *ledger.Ledger, noise ExecutionNoise, cfg TraderConfig, logger *slog.Logger) *Trader {
	return &Trader{
		ledger: l,
		noise:  noise,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "trader")),
	}
}

// Execute runs the buy and sell legs for opp against the ledger. The most
// conservative of the three sizing caps governs the notional. A leg that
// would overdraw its account aborts without partial mutation; the sell leg
// never runs after an aborted buy. Legs run concurrently only when they
// target different venues.
func (t *Trader) Execute(ctx context.Context, opp domain.Opportunity, reference string) (Execution, error) {
	cash, err := t.ledger.Cash(opp.BuyVenue)
	if err != nil {
		return Execution{}, fmt.Errorf("trader: %w", err)
	}

	notional := t.notional(cash, opp.Spread())
	if notional <= 0 {
		return Execution{}, fmt.Errorf("trader: %s: sized to zero notional: %w", opp.Symbol, domain.ErrInsufficientFunds)
	}

	currency := opp.Symbol.MainCurrency(reference)

	// Prices slip before the legs run, so quantity is fixed up front and the
	// sell leg moves exactly what the buy leg acquired.
	buyPrice := t.noise.Slip(opp.BuyPrice)
	sellPrice := t.noise.Slip(opp.SellPrice)
	buyFee := t.commission(notional)
	quantity := (notional - buyFee) / buyPrice
	gross := quantity * sellPrice
	sellFee := t.commission(gross)
	proceeds := gross - sellFee

	exec := Execution{
		Opportunity: opp,
		Notional:    notional,
		Quantity:    quantity,
		BuyPrice:    buyPrice,
		SellPrice:   sellPrice,
		BuyFee:      buyFee,
		SellFee:     sellFee,
		Proceeds:    proceeds,
	}

	if opp.BuyVenue == opp.SellVenue {
		// Self-venue arbitrage is disabled by policy upstream; if it ever
		// reaches here the legs must serialize on the single account.
		if err := t.buyLeg(ctx, opp, currency, notional, buyFee, quantity); err != nil {
			return Execution{}, err
		}
		if err := t.sellLeg(ctx, opp, currency, quantity, proceeds); err != nil {
			return Execution{}, err
		}
		return exec, nil
	}

	// Different venues: the legs may overlap, but the sell leg is gated on
	// the buy leg having applied so an aborted buy never leaves a dangling
	// sell.
	buyDone := make(chan error, 1)
	g, legCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := t.buyLeg(legCtx, opp, currency, notional, buyFee, quantity)
		buyDone <- err
		return err
	})
	g.Go(func() error {
		if err := <-buyDone; err != nil {
			return nil // buy aborted; its own error is reported by the group
		}
		return t.sellLeg(legCtx, opp, currency, quantity, proceeds)
	})
	if err := g.Wait(); err != nil {
		return Execution{}, err
	}
	return exec, nil
}

// notional picks the smallest of the three configured caps.
func (t *Trader) notional(cash, spread float64) float64 {
	n := cash * t.cfg.MaxTradeBalancePercentage
	if spreadCap := spread * t.cfg.PriceDifferenceThreshold; spreadCap < n {
		n = spreadCap
	}
	if t.cfg.MaxPositionSize < n {
		n = t.cfg.MaxPositionSize
	}
	return n
}

func (t *Trader) commission(amount float64) float64 {
	fee := amount * t.cfg.CommissionRate
	if fee > t.cfg.MaxCommissionAbsolute {
		fee = t.cfg.MaxCommissionAbsolute
	}
	return fee
}

// buyLeg debits the notional from the buy venue's cash and credits the
// acquired quantity. The debit is the only operation that can fail, so a
// rejected leg leaves the account exactly as it was.
func (t *Trader) buyLeg(ctx context.Context, opp domain.Opportunity, currency string, notional, fee, quantity float64) error {
	t.noise.LegDelay(ctx)
	if err := t.ledger.DebitCash(opp.BuyVenue, notional); err != nil {
		t.logger.Warn("buy leg aborted",
			slog.String("venue", opp.BuyVenue),
			slog.String("symbol", opp.Symbol.String()),
			slog.Float64("notional", notional),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("trader: buy leg: %w", err)
	}
	if err := t.ledger.CreditHolding(opp.BuyVenue, currency, quantity); err != nil {
		return fmt.Errorf("trader: buy leg credit: %w", err)
	}
	t.logger.Info("buy leg filled",
		slog.String("venue", opp.BuyVenue),
		slog.String("symbol", opp.Symbol.String()),
		slog.Float64("notional", notional),
		slog.Float64("quantity", quantity),
		slog.Float64("fee", fee),
	)
	return nil
}

// sellLeg debits the quantity from the sell venue's holding and credits the
// net proceeds as cash. Same no-partial-mutation rule as the buy leg.
func (t *Trader) sellLeg(ctx context.Context, opp domain.Opportunity, currency string, quantity, proceeds float64) error {
	t.noise.LegDelay(ctx)
	if err := t.ledger.DebitHolding(opp.SellVenue, currency, quantity); err != nil {
		t.logger.Warn("sell leg aborted",
			slog.String("venue", opp.SellVenue),
			slog.String("symbol", opp.Symbol.String()),
			slog.Float64("quantity", quantity),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("trader: sell leg: %w", err)
	}
	if err := t.ledger.CreditCash(opp.SellVenue, proceeds); err != nil {
		return fmt.Errorf("trader: sell leg credit: %w", err)
	}
	t.logger.Info("sell leg filled",
		slog.String("venue", opp.SellVenue),
		slog.String("symbol", opp.Symbol.String()),
		slog.Float64("quantity", quantity),
		slog.Float64("proceeds", proceeds),
	)
	return nil
}

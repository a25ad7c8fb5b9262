package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/arbsim/internal/domain"
	"github.com/alanyoungcy/arbsim/internal/ledger"
)

func testOpportunity(t *testing.T) domain.Opportunity {
	t.Helper()
	opp, err := domain.NewOpportunity("venue-1", "venue-2", "ETH/USDT", 2000, 2020)
	require.NoError(t, err)
	return opp
}

func TestTraderNotionalSizing(t *testing.T) {
	cfg := TraderConfig{
		CommissionRate:            0.0025,
		MaxCommissionAbsolute:     5,
		MaxTradeBalancePercentage: 0.5,
		PriceDifferenceThreshold:  10,
		MaxPositionSize:           150,
	}
	trader := NewTrader(nil, NoNoise{}, cfg, testLogger())

	// Caps per case: cash*0.5, spread*10, absolute 150.
	tests := []struct {
		name   string
		cash   float64
		spread float64
		want   float64
	}{
		{"absolute ceiling governs", 10000, 20, 150},
		{"spread cap governs", 10000, 10, 100},
		{"balance percentage governs", 100, 20, 50},
		{"zero spread sizes to zero", 10000, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, trader.notional(tt.cash, tt.spread), 1e-9)
		})
	}
}

func TestTraderCommission(t *testing.T) {
	trader := NewTrader(nil, NoNoise{}, TraderConfig{
		CommissionRate:        0.0025,
		MaxCommissionAbsolute: 5,
	}, testLogger())

	assert.InDelta(t, 0.25, trader.commission(100), 1e-9)
	assert.InDelta(t, 5.0, trader.commission(10000), 1e-9, "fee clamps at the absolute cap")
}

func TestTraderExecute(t *testing.T) {
	ctx := context.Background()
	cfg := TraderConfig{
		CommissionRate:            0.0025,
		MaxCommissionAbsolute:     5,
		MaxTradeBalancePercentage: 0.5,
		PriceDifferenceThreshold:  10,
		MaxPositionSize:           150,
	}

	t.Run("moves value through both legs", func(t *testing.T) {
		l := ledger.New("USDT", []string{"venue-1", "venue-2"})
		require.NoError(t, l.CreditCash("venue-1", 1000))
		require.NoError(t, l.CreditHolding("venue-2", "ETH", 1))

		trader := NewTrader(l, NoNoise{}, cfg, testLogger())
		exec, err := trader.Execute(ctx, testOpportunity(t), "USDT")
		require.NoError(t, err)

		// Caps: 1000*0.5=500, 20*10=200, absolute 150 -> notional 150.
		assert.InDelta(t, 150.0, exec.Notional, 1e-9)
		assert.InDelta(t, 0.375, exec.BuyFee, 1e-9)
		wantQty := (150.0 - 0.375) / 2000
		assert.InDelta(t, wantQty, exec.Quantity, 1e-12)

		gross := wantQty * 2020
		wantProceeds := gross - gross*cfg.CommissionRate
		assert.InDelta(t, wantProceeds, exec.Proceeds, 1e-9)

		cash1, err := l.Cash("venue-1")
		require.NoError(t, err)
		assert.InDelta(t, 850.0, cash1, 1e-9)

		held1, err := l.Holding("venue-1", "ETH")
		require.NoError(t, err)
		assert.InDelta(t, wantQty, held1, 1e-12)

		held2, err := l.Holding("venue-2", "ETH")
		require.NoError(t, err)
		assert.InDelta(t, 1-wantQty, held2, 1e-12)

		cash2, err := l.Cash("venue-2")
		require.NoError(t, err)
		assert.InDelta(t, wantProceeds, cash2, 1e-9)
	})

	t.Run("overdrawn buy leg aborts without partial mutation", func(t *testing.T) {
		l := ledger.New("USDT", []string{"venue-1", "venue-2"})
		require.NoError(t, l.CreditCash("venue-1", 100))
		require.NoError(t, l.CreditHolding("venue-2", "ETH", 5))

		// A permissive balance cap sizes the notional above the available cash.
		overdraw := cfg
		overdraw.MaxTradeBalancePercentage = 1.5
		trader := NewTrader(l, NoNoise{}, overdraw, testLogger())

		_, err := trader.Execute(ctx, testOpportunity(t), "USDT")
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

		cash1, err := l.Cash("venue-1")
		require.NoError(t, err)
		assert.Equal(t, 100.0, cash1, "aborted buy must leave the cash reserve intact")

		held1, err := l.Holding("venue-1", "ETH")
		require.NoError(t, err)
		assert.Zero(t, held1)

		// The sell leg never ran after the aborted buy.
		held2, err := l.Holding("venue-2", "ETH")
		require.NoError(t, err)
		assert.Equal(t, 5.0, held2)
		cash2, err := l.Cash("venue-2")
		require.NoError(t, err)
		assert.Zero(t, cash2)
	})

	t.Run("overdrawn sell leg aborts without crediting proceeds", func(t *testing.T) {
		l := ledger.New("USDT", []string{"venue-1", "venue-2"})
		require.NoError(t, l.CreditCash("venue-1", 1000))
		// venue-2 holds nothing to sell.

		trader := NewTrader(l, NoNoise{}, cfg, testLogger())
		_, err := trader.Execute(ctx, testOpportunity(t), "USDT")
		assert.ErrorIs(t, err, domain.ErrInsufficientHolding)

		cash2, err := l.Cash("venue-2")
		require.NoError(t, err)
		assert.Zero(t, cash2, "failed sell must not credit proceeds")
	})

	t.Run("zero cash sizes to zero notional", func(t *testing.T) {
		l := ledger.New("USDT", []string{"venue-1", "venue-2"})
		trader := NewTrader(l, NoNoise{}, cfg, testLogger())

		_, err := trader.Execute(ctx, testOpportunity(t), "USDT")
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	})
}

func TestRandomNoiseBounds(t *testing.T) {
	noise := NewRandomNoise(42)
	for i := 0; i < 1000; i++ {
		slipped := noise.Slip(2000)
		assert.GreaterOrEqual(t, slipped, 2000*(1-slippageBound))
		assert.LessOrEqual(t, slipped, 2000*(1+slippageBound))
	}
}

package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

func TestLedgerCash(t *testing.T) {
	t.Run("credit then debit round-trips", func(t *testing.T) {
		l := New("USDT", []string{"venue-1"})
		require.NoError(t, l.CreditCash("venue-1", 500))
		require.NoError(t, l.DebitCash("venue-1", 200))

		cash, err := l.Cash("venue-1")
		require.NoError(t, err)
		assert.Equal(t, 300.0, cash)
	})

	t.Run("overdraw fails without applying", func(t *testing.T) {
		l := New("USDT", []string{"venue-1"})
		require.NoError(t, l.CreditCash("venue-1", 100))

		err := l.DebitCash("venue-1", 150)
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

		cash, err := l.Cash("venue-1")
		require.NoError(t, err)
		assert.Equal(t, 100.0, cash, "rejected debit must leave the reserve untouched")
	})

	t.Run("negative amounts rejected", func(t *testing.T) {
		l := New("USDT", []string{"venue-1"})
		assert.Error(t, l.CreditCash("venue-1", -1))
		assert.Error(t, l.DebitCash("venue-1", -1))
	})

	t.Run("unknown venue", func(t *testing.T) {
		l := New("USDT", []string{"venue-1"})
		assert.ErrorIs(t, l.CreditCash("venue-9", 1), domain.ErrUnknownVenue)
		_, err := l.Cash("venue-9")
		assert.ErrorIs(t, err, domain.ErrUnknownVenue)
	})
}

func TestLedgerHoldings(t *testing.T) {
	t.Run("credit then debit", func(t *testing.T) {
		l := New("USDT", []string{"venue-1"})
		require.NoError(t, l.CreditHolding("venue-1", "ETH", 2))
		require.NoError(t, l.DebitHolding("venue-1", "ETH", 0.5))

		held, err := l.Holding("venue-1", "ETH")
		require.NoError(t, err)
		assert.Equal(t, 1.5, held)
	})

	t.Run("overdraw fails without applying", func(t *testing.T) {
		l := New("USDT", []string{"venue-1"})
		require.NoError(t, l.CreditHolding("venue-1", "ETH", 1))

		err := l.DebitHolding("venue-1", "ETH", 2)
		assert.ErrorIs(t, err, domain.ErrInsufficientHolding)

		held, err := l.Holding("venue-1", "ETH")
		require.NoError(t, err)
		assert.Equal(t, 1.0, held)
	})

	t.Run("holding debited to zero disappears from the sheet", func(t *testing.T) {
		l := New("USDT", []string{"venue-1"})
		require.NoError(t, l.CreditHolding("venue-1", "ETH", 1))
		require.NoError(t, l.DebitHolding("venue-1", "ETH", 1))

		balances, err := l.Balances("venue-1")
		require.NoError(t, err)
		assert.NotContains(t, balances, "ETH")
	})

	t.Run("absent holding reads as zero", func(t *testing.T) {
		l := New("USDT", []string{"venue-1"})
		held, err := l.Holding("venue-1", "BTC")
		require.NoError(t, err)
		assert.Zero(t, held)
	})
}

func TestLedgerSnapshot(t *testing.T) {
	l := New("USDT", []string{"venue-1", "venue-2"})
	require.NoError(t, l.CreditCash("venue-1", 100))
	require.NoError(t, l.CreditHolding("venue-1", "ETH", 2))
	require.NoError(t, l.CreditCash("venue-2", 50))

	snap := l.Snapshot()
	assert.Equal(t, map[string]map[string]float64{
		"venue-1": {"USDT": 100, "ETH": 2},
		"venue-2": {"USDT": 50},
	}, snap)

	// Mutating the snapshot must not touch the ledger.
	snap["venue-1"]["USDT"] = 0
	cash, err := l.Cash("venue-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, cash)

	assert.Equal(t, 150.0, l.TotalCash())
	assert.Equal(t, []string{"venue-1", "venue-2"}, l.Venues())
}

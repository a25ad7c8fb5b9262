package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/arbsim/internal/config"
	"github.com/alanyoungcy/arbsim/internal/domain"
)

func wireConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Simulation.InitialBalance = 6000
	cfg.Risk = config.RiskConfig{
		MaxTradeBalancePercentage: 0.5,
		MaxPositionSize:           150,
		PriceDifferenceThreshold:  10,
	}
	cfg.Venues = map[string]config.VenueConfig{
		"binance": {Enabled: true},
		"kraken":  {Enabled: true},
		"okx":     {Enabled: false},
	}
	return &cfg
}

func TestWire(t *testing.T) {
	ctx := context.Background()

	t.Run("builds gateways for every enabled venue", func(t *testing.T) {
		deps, cleanup, err := Wire(ctx, wireConfig())
		require.NoError(t, err)
		defer cleanup()

		require.Len(t, deps.Gateways, 2)
		assert.Equal(t, "binance", deps.Gateways[0].Name())
		assert.Equal(t, "kraken", deps.Gateways[1].Name())
		assert.Equal(t, []string{"binance", "kraken"}, deps.Registry.Names())
		assert.NotNil(t, deps.PriceCache)
		assert.NotNil(t, deps.Notifier)
		assert.Empty(t, deps.Feeds, "no feed without a ws url")
	})

	t.Run("binance ws url enables the ticker feed", func(t *testing.T) {
		cfg := wireConfig()
		cfg.Venues["binance"] = config.VenueConfig{Enabled: true, WsURL: "wss://example.test/ws"}

		deps, cleanup, err := Wire(ctx, cfg)
		require.NoError(t, err)
		defer cleanup()

		assert.Len(t, deps.Feeds, 1)
	})

	t.Run("unsupported venue fails wiring", func(t *testing.T) {
		cfg := wireConfig()
		cfg.Venues["bogus"] = config.VenueConfig{Enabled: true}

		_, _, err := Wire(ctx, cfg)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}

func TestBuildGateway(t *testing.T) {
	gw, err := buildGateway("binance", config.VenueConfig{})
	require.NoError(t, err)
	assert.Equal(t, "binance", gw.Name())

	gw, err = buildGateway("kraken", config.VenueConfig{})
	require.NoError(t, err)
	assert.Equal(t, "kraken", gw.Name())

	_, err = buildGateway("okx", config.VenueConfig{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

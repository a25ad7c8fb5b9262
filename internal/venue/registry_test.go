package venue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(&countingGateway{name: "kraken"})
	r.Register(&countingGateway{name: "binance"})

	t.Run("resolves registered gateways", func(t *testing.T) {
		gw, err := r.Get("binance")
		require.NoError(t, err)
		assert.Equal(t, "binance", gw.Name())
	})

	t.Run("unknown venue", func(t *testing.T) {
		_, err := r.Get("okx")
		assert.ErrorIs(t, err, domain.ErrUnknownVenue)
	})

	t.Run("names and gateways come back sorted", func(t *testing.T) {
		assert.Equal(t, []string{"binance", "kraken"}, r.Names())

		all := r.All()
		require.Len(t, all, 2)
		assert.Equal(t, "binance", all[0].Name())
		assert.Equal(t, "kraken", all[1].Name())
	})
}

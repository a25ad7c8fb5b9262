package venue

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

func TestBinanceListMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/exchangeInfo", r.URL.Path)
		w.Write([]byte(`{"symbols":[
			{"status":"TRADING","baseAsset":"ETH","quoteAsset":"USDT"},
			{"status":"BREAK","baseAsset":"LUNA","quoteAsset":"USDT"},
			{"status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT"}
		]}`))
	}))
	defer srv.Close()

	markets, err := NewBinance(srv.URL).ListMarkets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Symbol{"ETH/USDT", "BTC/USDT"}, markets)
}

func TestBinanceGetPrice(t *testing.T) {
	t.Run("parses the ticker price", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
			assert.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
			w.Write([]byte(`{"symbol":"ETHUSDT","price":"2000.51000000"}`))
		}))
		defer srv.Close()

		price, err := NewBinance(srv.URL).GetPrice(context.Background(), "ETH/USDT")
		require.NoError(t, err)
		assert.Equal(t, 2000.51, price)
	})

	t.Run("http error maps to ErrPriceUnavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "teapot", http.StatusTeapot)
		}))
		defer srv.Close()

		_, err := NewBinance(srv.URL).GetPrice(context.Background(), "ETH/USDT")
		assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
	})

	t.Run("non-positive price maps to ErrPriceUnavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"symbol":"ETHUSDT","price":"0.00000000"}`))
		}))
		defer srv.Close()

		_, err := NewBinance(srv.URL).GetPrice(context.Background(), "ETH/USDT")
		assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
	})
}

func TestBinanceGetBalance(t *testing.T) {
	_, err := NewBinance("").GetBalance(context.Background())
	assert.ErrorIs(t, err, domain.ErrVenueUnavailable)
}

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

func TestKrakenListMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/0/public/AssetPairs", r.URL.Path)
		w.Write([]byte(`{"error":[],"result":{
			"XBTUSDT":{"wsname":"XBT/USDT","status":"online"},
			"ETHUSDT":{"wsname":"ETH/USDT","status":"online"},
			"DELISTED":{"wsname":"OLD/USDT","status":"cancel_only"}
		}}`))
	}))
	defer srv.Close()

	markets, err := NewKraken(srv.URL).ListMarkets(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.Symbol{"BTC/USDT", "ETH/USDT"}, markets)
}

func TestKrakenGetPrice(t *testing.T) {
	t.Run("parses last trade and maps BTC to XBT", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/0/public/Ticker", r.URL.Path)
			assert.Equal(t, "XBTUSDT", r.URL.Query().Get("pair"))
			w.Write([]byte(`{"error":[],"result":{"XBTUSDT":{"c":["30000.10000","0.5"]}}}`))
		}))
		defer srv.Close()

		price, err := NewKraken(srv.URL).GetPrice(context.Background(), "BTC/USDT")
		require.NoError(t, err)
		assert.Equal(t, 30000.1, price)
	})

	t.Run("api error in the envelope fails the lookup", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":["EQuery:Unknown asset pair"],"result":{}}`))
		}))
		defer srv.Close()

		_, err := NewKraken(srv.URL).GetPrice(context.Background(), "NOPE/USDT")
		assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
	})

	t.Run("empty ticker fails the lookup", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":[],"result":{"XBTUSDT":{"c":[]}}}`))
		}))
		defer srv.Close()

		_, err := NewKraken(srv.URL).GetPrice(context.Background(), "BTC/USDT")
		assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
	})
}

func TestNormalizeKrakenPair(t *testing.T) {
	tests := []struct {
		wsname string
		want   domain.Symbol
		ok     bool
	}{
		{"XBT/USDT", "BTC/USDT", true},
		{"ETH/XBT", "ETH/BTC", true},
		{"SOL/USDT", "SOL/USDT", true},
		{"", "", false},
		{"XBTUSDT", "", false},
	}
	for _, tt := range tests {
		got, ok := normalizeKrakenPair(tt.wsname)
		assert.Equal(t, tt.ok, ok, "wsname %q", tt.wsname)
		assert.Equal(t, tt.want, got, "wsname %q", tt.wsname)
	}
}

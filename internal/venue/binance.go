package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

const defaultBinanceURL = "https://api.binance.com"

// Binance is the REST gateway for the Binance spot API.
type Binance struct {
	baseURL    string
	httpClient *http.Client
}

// NewBinance creates a Binance gateway. baseURL may be empty to use the
// public endpoint.
func NewBinance(baseURL string) *Binance {
	if baseURL == "" {
		baseURL = defaultBinanceURL
	}
	return &Binance{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the venue identifier.
func (b *Binance) Name() string { return "binance" }

// ListMarkets returns every actively trading symbol in canonical BASE/QUOTE
// form.
func (b *Binance) ListMarkets(ctx context.Context) ([]domain.Symbol, error) {
	body, err := b.get(ctx, "/api/v3/exchangeInfo", nil)
	if err != nil {
		return nil, fmt.Errorf("binance: list markets: %w: %v", domain.ErrVenueUnavailable, err)
	}

	var resp struct {
		Symbols []struct {
			Status     string `json:"status"`
			BaseAsset  string `json:"baseAsset"`
			QuoteAsset string `json:"quoteAsset"`
		} `json:"symbols"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("binance: decode exchange info: %w", err)
	}

	markets := make([]domain.Symbol, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		if s.Status != "TRADING" {
			continue
		}
		markets = append(markets, domain.Symbol(s.BaseAsset+"/"+s.QuoteAsset))
	}
	return markets, nil
}

// GetPrice returns the last trade price for symbol.
func (b *Binance) GetPrice(ctx context.Context, symbol domain.Symbol) (float64, error) {
	params := url.Values{}
	params.Set("symbol", binanceSymbol(symbol))

	body, err := b.get(ctx, "/api/v3/ticker/price", params)
	if err != nil {
		return 0, fmt.Errorf("binance: price %s: %w: %v", symbol, domain.ErrPriceUnavailable, err)
	}

	var resp struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("binance: decode ticker for %s: %w", symbol, err)
	}
	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("binance: ticker %s returned %q: %w", symbol, resp.Price, domain.ErrPriceUnavailable)
	}
	return price, nil
}

// GetBalance returns the real spot balances. Read-only: used for external
// cross-checking against the simulated ledger, never mutated.
func (b *Binance) GetBalance(ctx context.Context) (map[string]float64, error) {
	// The account endpoint requires signed credentials the simulator does
	// not carry; the paper-trading core only ever cross-checks balances when
	// an operator wires keys through a fronting proxy.
	return nil, fmt.Errorf("binance: get balance: %w", domain.ErrVenueUnavailable)
}

func (b *Binance) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := b.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return readAll(resp)
}

// binanceSymbol flattens BASE/QUOTE into Binance's concatenated form.
func binanceSymbol(symbol domain.Symbol) string {
	return symbol.Base() + symbol.Quote()
}

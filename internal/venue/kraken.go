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

const defaultKrakenURL = "https://api.kraken.com"

// Kraken is the REST gateway for the Kraken spot API. Kraken wraps every
// response in an {error, result} envelope and lists pairs under internal
// names with a ws-friendly altname, which this gateway maps back to the
// canonical BASE/QUOTE form.
type Kraken struct {
	baseURL    string
	httpClient *http.Client
}

// NewKraken creates a Kraken gateway. baseURL may be empty to use the public
// endpoint.
func NewKraken(baseURL string) *Kraken {
	if baseURL == "" {
		baseURL = defaultKrakenURL
	}
	return &Kraken{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the venue identifier.
func (k *Kraken) Name() string { return "kraken" }

type krakenEnvelope struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

// ListMarkets returns every online pair in canonical BASE/QUOTE form.
func (k *Kraken) ListMarkets(ctx context.Context) ([]domain.Symbol, error) {
	result, err := k.get(ctx, "/0/public/AssetPairs", nil)
	if err != nil {
		return nil, fmt.Errorf("kraken: list markets: %w: %v", domain.ErrVenueUnavailable, err)
	}

	var pairs map[string]struct {
		Wsname string `json:"wsname"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(result, &pairs); err != nil {
		return nil, fmt.Errorf("kraken: decode asset pairs: %w", err)
	}

	markets := make([]domain.Symbol, 0, len(pairs))
	for _, p := range pairs {
		if p.Status != "" && p.Status != "online" {
			continue
		}
		sym, ok := normalizeKrakenPair(p.Wsname)
		if !ok {
			continue
		}
		markets = append(markets, sym)
	}
	return markets, nil
}

// GetPrice returns the last trade price for symbol (field "c" of the ticker).
func (k *Kraken) GetPrice(ctx context.Context, symbol domain.Symbol) (float64, error) {
	params := url.Values{}
	params.Set("pair", krakenPair(symbol))

	result, err := k.get(ctx, "/0/public/Ticker", params)
	if err != nil {
		return 0, fmt.Errorf("kraken: price %s: %w: %v", symbol, domain.ErrPriceUnavailable, err)
	}

	var tickers map[string]struct {
		Last []string `json:"c"`
	}
	if err := json.Unmarshal(result, &tickers); err != nil {
		return 0, fmt.Errorf("kraken: decode ticker for %s: %w", symbol, err)
	}
	for _, t := range tickers {
		if len(t.Last) == 0 {
			break
		}
		price, err := strconv.ParseFloat(t.Last[0], 64)
		if err != nil || price <= 0 {
			break
		}
		return price, nil
	}
	return 0, fmt.Errorf("kraken: ticker %s had no usable last trade: %w", symbol, domain.ErrPriceUnavailable)
}

// GetBalance returns the real account balances. Read-only cross-check only;
// the public gateway carries no credentials.
func (k *Kraken) GetBalance(ctx context.Context) (map[string]float64, error) {
	return nil, fmt.Errorf("kraken: get balance: %w", domain.ErrVenueUnavailable)
}

func (k *Kraken) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	u := k.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := readAll(resp)
	if err != nil {
		return nil, err
	}

	var env krakenEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if len(env.Error) > 0 {
		return nil, fmt.Errorf("api error: %s", strings.Join(env.Error, ", "))
	}
	return env.Result, nil
}

// krakenPair renders a canonical symbol in the form the Ticker endpoint
// accepts, with Kraken's XBT spelling for BTC.
func krakenPair(symbol domain.Symbol) string {
	base, quote := symbol.Base(), symbol.Quote()
	if base == "BTC" {
		base = "XBT"
	}
	if quote == "BTC" {
		quote = "XBT"
	}
	return base + quote
}

// normalizeKrakenPair maps a wsname like "XBT/USDT" back to canonical form.
func normalizeKrakenPair(wsname string) (domain.Symbol, bool) {
	base, quote, ok := strings.Cut(wsname, "/")
	if !ok || base == "" || quote == "" {
		return "", false
	}
	if base == "XBT" {
		base = "BTC"
	}
	if quote == "XBT" {
		quote = "BTC"
	}
	return domain.Symbol(base + "/" + quote), true
}

package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

const defaultBinanceWsURL = "wss://stream.binance.com:9443/ws/!miniTicker@arr"

// TickerFeed streams live last-trade prices over a websocket into the price
// cache, so cached gateways serve fresher quotes between REST lookups. The
// feed is optional: the simulator works without it, just with more REST
// round-trips.
type TickerFeed struct {
	venue  string
	wsURL  string
	cache  domain.PriceCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewBinanceTickerFeed creates a feed for the Binance mini-ticker stream.
// wsURL may be empty to use the public endpoint.
func NewBinanceTickerFeed(wsURL string, cache domain.PriceCache, ttl time.Duration, logger *slog.Logger) *TickerFeed {
	if wsURL == "" {
		wsURL = defaultBinanceWsURL
	}
	return &TickerFeed{
		venue:  "binance",
		wsURL:  wsURL,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "ticker_feed"), slog.String("venue", "binance")),
	}
}

// Run connects to the stream and writes every ticker into the cache until
// ctx is cancelled, reconnecting with capped exponential backoff on failure.
func (f *TickerFeed) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			f.logger.Info("feed stopped")
			return nil
		default:
		}

		f.logger.Info("connecting", slog.String("url", f.wsURL), slog.Duration("backoff", backoff))
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.wsURL, nil)
		if err != nil {
			f.logger.Error("connect failed", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
				backoff *= 2
				if backoff > 16*time.Second {
					backoff = 16 * time.Second
				}
			}
			continue
		}
		backoff = time.Second

		// ReadMessage has no context; closing the connection is the only way
		// to unblock the read loop when ctx is cancelled.
		watchDone := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-watchDone:
			}
		}()

		if err := f.readLoop(ctx, conn); err != nil && ctx.Err() == nil {
			f.logger.Warn("read loop ended", slog.String("error", err.Error()))
		}
		close(watchDone)
		conn.Close()
	}
}

// miniTicker is one entry of Binance's !miniTicker@arr payload.
type miniTicker struct {
	Symbol string `json:"s"`
	Close  string `json:"c"`
}

func (f *TickerFeed) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		var tickers []miniTicker
		if err := json.Unmarshal(message, &tickers); err != nil {
			f.logger.Warn("malformed ticker payload", slog.String("error", err.Error()))
			continue
		}

		for _, t := range tickers {
			symbol, ok := splitConcatenatedSymbol(t.Symbol)
			if !ok {
				continue
			}
			price, err := strconv.ParseFloat(t.Close, 64)
			if err != nil || price <= 0 {
				continue
			}
			if err := f.cache.SetPrice(ctx, f.venue, symbol, price, f.ttl); err != nil {
				f.logger.Warn("cache write failed",
					slog.String("symbol", symbol.String()),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// knownQuotes are the quote assets the feed can split a concatenated Binance
// symbol on. Longest match first so "BTCUSDT" resolves to BTC/USDT, not
// BTC/USD-T.
var knownQuotes = []string{"USDT", "USDC", "BUSD", "BTC", "ETH", "BNB", "EUR", "USD"}

func splitConcatenatedSymbol(s string) (domain.Symbol, bool) {
	for _, quote := range knownQuotes {
		if base, found := strings.CutSuffix(s, quote); found && base != "" {
			return domain.Symbol(base + "/" + quote), true
		}
	}
	return "", false
}

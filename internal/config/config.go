// Package config defines the top-level configuration for the arbitrage
// simulator and provides validation helpers.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

// duration wraps time.Duration so TOML values like "5s" decode directly.
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func seconds(n int) duration {
	return duration{Duration: time.Duration(n) * time.Second}
}

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by ARBSIM_* environment variables.
type Config struct {
	Simulation SimulationConfig       `toml:"simulation"`
	Arbitrage  ArbitrageConfig        `toml:"arbitrage"`
	Risk       RiskConfig             `toml:"risk"`
	Pairs      PairsConfig            `toml:"pairs"`
	Venues     map[string]VenueConfig `toml:"venues"`
	Redis      RedisConfig            `toml:"redis"`
	Notify     NotifyConfig           `toml:"notify"`
	Mode       string                 `toml:"mode"`
	LogLevel   string                 `toml:"log_level"`
}

// SimulationConfig holds the paper-trading parameters.
type SimulationConfig struct {
	// InitialBalance is the total reference-currency amount seeded across
	// all venues. Required.
	InitialBalance float64 `toml:"initial_balance"`
	// Cycles is the number of find/execute/reconcile passes to run. Zero or
	// negative means run until stopped.
	Cycles                int     `toml:"cycles"`
	ReferenceCurrency     string  `toml:"reference_currency"`
	CommissionRate        float64 `toml:"commission_rate"`
	MaxCommissionAbsolute float64 `toml:"max_commission_absolute"`
	// PriceTTL bounds how long a cached price may serve repeat lookups
	// within a cycle.
	PriceTTL duration `toml:"price_ttl"`
	// LookupTimeout is the per price/market lookup deadline.
	LookupTimeout duration `toml:"lookup_timeout"`
	// Seed feeds the slippage and latency noise source. Zero picks a
	// time-based seed.
	Seed int64 `toml:"seed"`
}

// ArbitrageConfig holds discrepancy detection parameters.
type ArbitrageConfig struct {
	MinPriceDifference float64 `toml:"min_price_difference"`
}

// RiskConfig holds the position-sizing caps. All three are required; the
// smallest resulting cap governs each trade.
type RiskConfig struct {
	MaxTradeBalancePercentage float64 `toml:"max_trade_balance_percentage"`
	MaxPositionSize           float64 `toml:"max_position_size"`
	PriceDifferenceThreshold  float64 `toml:"price_difference_threshold"`
}

// PairsConfig controls which trading pairs are considered.
type PairsConfig struct {
	// SelectedAssets is an optional allow-list of symbols. When non-empty it
	// replaces auto-discovery.
	SelectedAssets []string `toml:"selected_assets"`
	// TopN caps the number of auto-discovered common symbols per venue pair.
	TopN int `toml:"top_n"`
}

// VenueConfig holds per-venue connector settings.
type VenueConfig struct {
	Enabled bool   `toml:"enabled"`
	APIURL  string `toml:"api_url"`
	WsURL   string `toml:"ws_url"`
}

// RedisConfig holds Redis connection parameters for the shared price cache.
// When disabled the simulator falls back to an in-process cache.
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// NotifyConfig holds notification channel settings.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config pre-filled with the documented default values.
// Required fields (initial balance, risk caps) are left zero so Validate can
// catch a configuration that never set them.
func Defaults() Config {
	return Config{
		Simulation: SimulationConfig{
			Cycles:                1,
			ReferenceCurrency:     "USDT",
			CommissionRate:        0.0025,
			MaxCommissionAbsolute: 5,
			PriceTTL:              seconds(2),
			LookupTimeout:         seconds(5),
		},
		Arbitrage: ArbitrageConfig{
			MinPriceDifference: 0.01,
		},
		Pairs: PairsConfig{
			TopN: 10,
		},
		Venues:   map[string]VenueConfig{},
		Mode:     "simulate",
		LogLevel: "info",
	}
}

// Validate checks the configuration for the errors that must halt the
// simulation before the first cycle. Everything it returns wraps
// domain.ErrConfiguration.
func (c *Config) Validate() error {
	var problems []string

	if c.Simulation.InitialBalance <= 0 {
		problems = append(problems, "simulation.initial_balance must be positive")
	}
	if c.Simulation.CommissionRate < 0 || c.Simulation.CommissionRate >= 1 {
		problems = append(problems, "simulation.commission_rate must be in [0, 1)")
	}
	if c.Simulation.ReferenceCurrency == "" {
		problems = append(problems, "simulation.reference_currency must be set")
	}
	if c.Risk.MaxTradeBalancePercentage <= 0 || c.Risk.MaxTradeBalancePercentage > 1 {
		problems = append(problems, "risk.max_trade_balance_percentage is required and must be in (0, 1]")
	}
	if c.Risk.MaxPositionSize <= 0 {
		problems = append(problems, "risk.max_position_size is required and must be positive")
	}
	if c.Risk.PriceDifferenceThreshold <= 0 {
		problems = append(problems, "risk.price_difference_threshold is required and must be positive")
	}
	if c.Arbitrage.MinPriceDifference < 0 {
		problems = append(problems, "arbitrage.min_price_difference must not be negative")
	}
	if c.Pairs.TopN <= 0 {
		problems = append(problems, "pairs.top_n must be positive")
	}
	if len(c.EnabledVenues()) < 2 {
		problems = append(problems, "at least two venues must be enabled")
	}
	for _, raw := range c.Pairs.SelectedAssets {
		if _, err := domain.ParseSymbol(raw); err != nil {
			problems = append(problems, fmt.Sprintf("pairs.selected_assets: %v", err))
		}
	}

	switch c.Mode {
	case "simulate", "scan":
	default:
		problems = append(problems, fmt.Sprintf("unsupported mode %q", c.Mode))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// EnabledVenues returns the names of all enabled venues, sorted for
// reproducible wiring order.
func (c *Config) EnabledVenues() []string {
	names := make([]string, 0, len(c.Venues))
	for name, vc := range c.Venues {
		if vc.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// SelectedSymbols converts the configured allow-list into typed symbols.
// Call only after Validate, which rejects malformed entries.
func (c *Config) SelectedSymbols() []domain.Symbol {
	out := make([]domain.Symbol, 0, len(c.Pairs.SelectedAssets))
	for _, raw := range c.Pairs.SelectedAssets {
		out = append(out, domain.Symbol(raw))
	}
	return out
}

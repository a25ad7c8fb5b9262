package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ARBSIM_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ARBSIM_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets and deployment-specific values
// without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Simulation ──
	setFloat64(&cfg.Simulation.InitialBalance, "ARBSIM_SIMULATION_INITIAL_BALANCE")
	setInt(&cfg.Simulation.Cycles, "ARBSIM_SIMULATION_CYCLES")
	setStr(&cfg.Simulation.ReferenceCurrency, "ARBSIM_SIMULATION_REFERENCE_CURRENCY")
	setFloat64(&cfg.Simulation.CommissionRate, "ARBSIM_SIMULATION_COMMISSION_RATE")
	setFloat64(&cfg.Simulation.MaxCommissionAbsolute, "ARBSIM_SIMULATION_MAX_COMMISSION_ABSOLUTE")
	setDuration(&cfg.Simulation.PriceTTL, "ARBSIM_SIMULATION_PRICE_TTL")
	setDuration(&cfg.Simulation.LookupTimeout, "ARBSIM_SIMULATION_LOOKUP_TIMEOUT")
	setInt64(&cfg.Simulation.Seed, "ARBSIM_SIMULATION_SEED")

	// ── Arbitrage ──
	setFloat64(&cfg.Arbitrage.MinPriceDifference, "ARBSIM_ARBITRAGE_MIN_PRICE_DIFFERENCE")

	// ── Risk ──
	setFloat64(&cfg.Risk.MaxTradeBalancePercentage, "ARBSIM_RISK_MAX_TRADE_BALANCE_PERCENTAGE")
	setFloat64(&cfg.Risk.MaxPositionSize, "ARBSIM_RISK_MAX_POSITION_SIZE")
	setFloat64(&cfg.Risk.PriceDifferenceThreshold, "ARBSIM_RISK_PRICE_DIFFERENCE_THRESHOLD")

	// ── Pairs ──
	setStringSlice(&cfg.Pairs.SelectedAssets, "ARBSIM_PAIRS_SELECTED_ASSETS")
	setInt(&cfg.Pairs.TopN, "ARBSIM_PAIRS_TOP_N")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "ARBSIM_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "ARBSIM_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ARBSIM_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ARBSIM_REDIS_DB")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "ARBSIM_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "ARBSIM_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ARBSIM_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "ARBSIM_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "ARBSIM_MODE")
	setStr(&cfg.LogLevel, "ARBSIM_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/arbsim/internal/cache/memory"
	"github.com/alanyoungcy/arbsim/internal/cache/redis"
	"github.com/alanyoungcy/arbsim/internal/config"
	"github.com/alanyoungcy/arbsim/internal/domain"
	"github.com/alanyoungcy/arbsim/internal/notify"
	"github.com/alanyoungcy/arbsim/internal/venue"
)

// Dependencies bundles everything the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Registry   *venue.Registry
	Gateways   []domain.VenueGateway // cache-decorated, registry order
	PriceCache domain.PriceCache
	Feeds      []*venue.TickerFeed
	Notifier   *notify.Notifier
}

// Wire constructs the concrete dependency implementations from the given
// configuration and returns them with a cleanup function to be called on
// shutdown.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Price cache: Redis when enabled, in-process otherwise ---
	if cfg.Redis.Enabled {
		rdb, err := redis.New(ctx, redis.ClientConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("app: connect redis: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		deps.PriceCache = redis.NewPriceCache(rdb)
		logger.Info("price cache: redis", slog.String("addr", cfg.Redis.Addr))
	} else {
		deps.PriceCache = memory.NewPriceCache()
		logger.Info("price cache: in-process")
	}

	// --- Venue gateways through the static registry ---
	deps.Registry = venue.NewRegistry()
	for _, name := range cfg.EnabledVenues() {
		vc := cfg.Venues[name]
		gw, err := buildGateway(name, vc)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("app: %w", err)
		}
		deps.Registry.Register(gw)

		if vc.WsURL != "" && name == "binance" {
			deps.Feeds = append(deps.Feeds, venue.NewBinanceTickerFeed(
				vc.WsURL, deps.PriceCache, cfg.Simulation.PriceTTL.Duration, logger,
			))
		}
	}
	for _, gw := range deps.Registry.All() {
		deps.Gateways = append(deps.Gateways, venue.NewCachedGateway(
			gw, deps.PriceCache, cfg.Simulation.PriceTTL.Duration, logger,
		))
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}

// buildGateway resolves a configured venue name to its concrete gateway.
// Supported venues are a closed set: adding one means adding a variant here,
// never a runtime name lookup.
func buildGateway(name string, vc config.VenueConfig) (domain.VenueGateway, error) {
	switch name {
	case "binance":
		return venue.NewBinance(vc.APIURL), nil
	case "kraken":
		return venue.NewKraken(vc.APIURL), nil
	default:
		return nil, fmt.Errorf("unsupported venue %q: %w", name, domain.ErrConfiguration)
	}
}

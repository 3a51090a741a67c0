package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/buenedata/lumidex-v2-sub002/internal/cache/redis"
	"github.com/buenedata/lumidex-v2-sub002/internal/config"
	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
	"github.com/buenedata/lumidex-v2-sub002/internal/engine"
	"github.com/buenedata/lumidex-v2-sub002/internal/rules"
	"github.com/buenedata/lumidex-v2-sub002/internal/server/handler"
	"github.com/buenedata/lumidex-v2-sub002/internal/service"
	"github.com/buenedata/lumidex-v2-sub002/internal/store/postgres"
)

// Dependencies bundles every dependency that the application modes need to
// operate. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	// Stores
	CardStore   domain.CardStore
	SetStore    domain.SetStore
	PriceStore  domain.PriceStore
	RateStore   domain.ExchangeRateStore
	CustomStore domain.CustomVariantStore
	RuleStore   domain.RuleStore

	// Caches (nil when Redis is disabled)
	CustomCache domain.CustomVariantCache
	RuleCache   domain.RuleCache

	// Rule tables and engine
	Rules      *rules.Provider
	Classifier *engine.Classifier
	Resolver   *engine.Resolver
	Normalizer *engine.Normalizer

	// Services
	Variants *service.VariantService
	Prices   *service.PriceService

	// Connectivity checks for the health endpoint.
	Pingers map[string]handler.Pinger
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Pingers: make(map[string]handler.Pinger),
	}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.PoolMaxConns,
		MinConns: cfg.Database.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)
	deps.Pingers["postgres"] = pgClient

	// Run migrations if enabled.
	if cfg.Database.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.CardStore = postgres.NewCardStore(pool)
	deps.SetStore = postgres.NewSetStore(pool)
	deps.PriceStore = postgres.NewPriceStore(pool)
	deps.RateStore = postgres.NewExchangeRateStore(pool)
	deps.CustomStore = postgres.NewCustomVariantStore(pool)
	deps.RuleStore = postgres.NewRuleStore(pool)

	// --- Redis (optional; lookups fall through to Postgres when disabled) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.Pingers["redis"] = redisClient

		customsTTL := time.Duration(cfg.Redis.CustomsTTLMinutes) * time.Minute
		rulesTTL := time.Duration(cfg.Redis.RulesTTLMinutes) * time.Minute
		deps.CustomCache = redis.NewCustomVariantCache(redisClient, customsTTL)
		deps.RuleCache = redis.NewRuleCache(redisClient, rulesTTL)
	}

	// --- Rule tables ---
	static := rules.Default()
	if cfg.Rules.Path != "" {
		static, err = rules.LoadFile(cfg.Rules.Path)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: load rules: %w", err)
		}
	}
	deps.Rules = rules.NewProvider(static, deps.RuleStore, deps.RuleCache, logger)

	// --- Engine ---
	intermediates := make([]domain.Currency, 0, len(cfg.Resolver.Intermediates))
	for _, code := range cfg.Resolver.Intermediates {
		intermediates = append(intermediates, domain.Currency(code))
	}
	deps.Classifier = engine.NewClassifier(logger)
	deps.Resolver = engine.NewResolver(deps.RateStore, static, engine.ResolverConfig{
		CacheTTL:      time.Duration(cfg.Resolver.CacheTTLMinutes) * time.Minute,
		Intermediates: intermediates,
	}, logger)
	deps.Normalizer = engine.NewNormalizer(deps.Resolver, logger)

	// --- Services ---
	deps.Variants = service.NewVariantService(
		deps.CardStore, deps.SetStore, deps.CustomStore, deps.CustomCache,
		deps.Rules, deps.Classifier, logger,
	)
	deps.Prices = service.NewPriceService(
		deps.PriceStore, deps.Normalizer, cfg.Pricing.BatchWorkers, logger,
	)

	return deps, cleanup, nil
}

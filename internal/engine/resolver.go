package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

// DefaultRateCacheTTL bounds how long a cached rate is served before the
// tiers run again.
const DefaultRateCacheTTL = 5 * time.Minute

// defaultIntermediates is the fixed set of currencies the cross tier routes
// through, in attempt order.
var defaultIntermediates = []domain.Currency{domain.CurrencyUSD, domain.CurrencyEUR}

// ApproxTable is the static, hand-maintained rate table consulted by the
// approximate tier. *rules.RuleSet implements it.
type ApproxTable interface {
	ApproximateRate(from, to domain.Currency) (float64, bool)
}

// ResolveOptions controls one resolution attempt.
type ResolveOptions struct {
	// AllowApproximate permits the static-table tier. Without it the
	// resolver fails when no observed rate can produce a value.
	AllowApproximate bool
	// UseCache consults and populates the in-process rate cache.
	UseCache bool
	// MaxCacheAge overrides the resolver's TTL for this call. Zero means
	// use the configured TTL.
	MaxCacheAge time.Duration
}

// Resolution is a successfully resolved rate.
type Resolution struct {
	Rate          float64
	IsApproximate bool
	Tier          domain.FallbackTier
}

// ResolverConfig holds Resolver tuning knobs.
type ResolverConfig struct {
	CacheTTL      time.Duration
	Intermediates []domain.Currency
}

// Resolver resolves a currency pair to a numeric rate through a tiered
// fallback chain: identity, direct store lookup, inverse lookup, cross via
// a fixed set of intermediates, then the static approximate table. The
// first tier to succeed wins. Successful lookups are cached in-process by
// pair; the cache is the only shared mutable state in the engine.
type Resolver struct {
	store         domain.ExchangeRateStore
	approx        ApproxTable
	cache         *rateCache
	ttl           time.Duration
	intermediates []domain.Currency
	logger        *slog.Logger
}

// NewResolver creates a Resolver over the given rate store and approximate
// table.
func NewResolver(store domain.ExchangeRateStore, approx ApproxTable, cfg ResolverConfig, logger *slog.Logger) *Resolver {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultRateCacheTTL
	}
	intermediates := cfg.Intermediates
	if len(intermediates) == 0 {
		intermediates = defaultIntermediates
	}
	return &Resolver{
		store:         store,
		approx:        approx,
		cache:         newRateCache(),
		ttl:           ttl,
		intermediates: intermediates,
		logger:        logger.With(slog.String("component", "rate_resolver")),
	}
}

// Resolve returns the best available rate for from→to. It fails only when
// no tier produces a rate and opts.AllowApproximate is false. Store I/O
// failures in the observed tiers degrade to the approximate tier rather
// than failing outright, provided approximation is allowed.
func (r *Resolver) Resolve(ctx context.Context, from, to domain.Currency, opts ResolveOptions) (Resolution, error) {
	pair := ratePair{From: from, To: to}

	if opts.UseCache {
		maxAge := opts.MaxCacheAge
		if maxAge <= 0 {
			maxAge = r.ttl
		}
		if rate, ok := r.cache.get(pair, maxAge); ok {
			// Tier metadata is not cached; a hit is the best known rate.
			return Resolution{Rate: rate}, nil
		}
	}

	// Tier 0: identity.
	if from == to {
		return Resolution{Rate: 1}, nil
	}

	var ioErr error
	keepIOErr := func(tier string, err error) {
		r.logger.WarnContext(ctx, "rate store lookup failed",
			slog.String("tier", tier),
			slog.String("from", string(from)),
			slog.String("to", string(to)),
			slog.String("error", err.Error()),
		)
		if ioErr == nil {
			ioErr = err
		}
	}

	// Tier 1: direct.
	row, err := r.store.Latest(ctx, from, to)
	switch {
	case err == nil && row.Rate > 0:
		return r.finish(pair, opts, Resolution{Rate: row.Rate}), nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		keepIOErr("direct", err)
	}

	// Tier 2: inverse.
	row, err = r.store.Latest(ctx, to, from)
	switch {
	case err == nil && row.Rate > 0:
		return r.finish(pair, opts, Resolution{
			Rate: 1 / row.Rate,
			Tier: domain.FallbackInverse,
		}), nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		keepIOErr("inverse", err)
	}

	// Tier 3: cross via the fixed intermediates.
	for _, via := range r.intermediates {
		if via == from || via == to {
			continue
		}
		leg1, err := r.store.Latest(ctx, from, via)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				keepIOErr("cross", err)
			}
			continue
		}
		leg2, err := r.store.Latest(ctx, via, to)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				keepIOErr("cross", err)
			}
			continue
		}
		if leg1.Rate > 0 && leg2.Rate > 0 {
			return r.finish(pair, opts, Resolution{
				Rate: leg1.Rate * leg2.Rate,
				Tier: domain.FallbackCross,
			}), nil
		}
	}

	// Tier 4: static approximate table, only when the caller opted in.
	if opts.AllowApproximate && r.approx != nil {
		if rate, ok := r.approx.ApproximateRate(from, to); ok {
			return r.finish(pair, opts, Resolution{
				Rate:          rate,
				IsApproximate: true,
				Tier:          domain.FallbackApproximate,
			}), nil
		}
	}

	if ioErr != nil {
		return Resolution{}, fmt.Errorf("engine: resolve %s->%s: %w: %w",
			from, to, domain.ErrStoreUnavailable, ioErr)
	}
	return Resolution{}, fmt.Errorf("engine: resolve %s->%s: %w", from, to, domain.ErrRateUnavailable)
}

func (r *Resolver) finish(pair ratePair, opts ResolveOptions, res Resolution) Resolution {
	if opts.UseCache {
		r.cache.set(pair, res.Rate)
	}
	return res
}

// Convert converts amount from→to. It never fails: when no tier produces a
// rate the result carries the original amount unchanged with To==From and
// an error description, and the caller displays the value as unconverted.
func (r *Resolver) Convert(ctx context.Context, amount float64, from, to domain.Currency, opts ResolveOptions) domain.ConversionResult {
	res, err := r.Resolve(ctx, from, to, opts)
	if err != nil {
		return domain.ConversionResult{
			OriginalAmount:  amount,
			ConvertedAmount: amount,
			From:            from,
			To:              from,
			Err:             err.Error(),
		}
	}
	return domain.ConversionResult{
		OriginalAmount:  amount,
		ConvertedAmount: amount * res.Rate,
		From:            from,
		To:              to,
		Rate:            res.Rate,
		IsApproximate:   res.IsApproximate,
		FallbackTier:    res.Tier,
	}
}

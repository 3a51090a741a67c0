package rules

import (
	"context"
	"errors"
	"log/slog"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

// Provider assembles the RuleSet the engine sees on each request: the static
// seed tables (built-in defaults plus the rules file) overlaid with the
// administrator-editable rows from the rule store. Store rows are cached as
// one snapshot; a cache miss falls through to the store and repopulates it.
type Provider struct {
	static *RuleSet
	store  domain.RuleStore
	cache  domain.RuleCache
	logger *slog.Logger
}

// NewProvider creates a Provider. store and cache may be nil, in which case
// Snapshot serves the static tables alone.
func NewProvider(static *RuleSet, store domain.RuleStore, cache domain.RuleCache, logger *slog.Logger) *Provider {
	return &Provider{
		static: static,
		store:  store,
		cache:  cache,
		logger: logger.With(slog.String("component", "rules_provider")),
	}
}

// Snapshot returns the current merged RuleSet. Rule-store failures degrade
// to the static tables with a warning rather than failing classification;
// best-guess variants beat no variants.
func (p *Provider) Snapshot(ctx context.Context) *RuleSet {
	if p.store == nil {
		return p.static
	}

	if p.cache != nil {
		snap, err := p.cache.Get(ctx)
		if err == nil {
			return p.static.Overlay(snap)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			p.logger.WarnContext(ctx, "rule cache read failed",
				slog.String("error", err.Error()),
			)
		}
	}

	snap, err := p.loadFromStore(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "rule store read failed, serving static tables",
			slog.String("error", err.Error()),
		)
		return p.static
	}

	merged := p.static.Overlay(snap)
	if err := merged.Validate(); err != nil {
		p.logger.WarnContext(ctx, "stored rules failed validation, serving static tables",
			slog.String("error", err.Error()),
		)
		return p.static
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, snap); err != nil {
			p.logger.WarnContext(ctx, "rule cache write failed",
				slog.String("error", err.Error()),
			)
		}
	}
	return merged
}

// Invalidate drops the cached snapshot so the next Snapshot call re-reads
// the store. Called after administrator rule edits.
func (p *Provider) Invalidate(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Invalidate(ctx)
}

func (p *Provider) loadFromStore(ctx context.Context) (domain.RuleSnapshot, error) {
	var snap domain.RuleSnapshot
	var err error

	if snap.Policies, err = p.store.ListSetPolicies(ctx); err != nil {
		return domain.RuleSnapshot{}, err
	}
	if snap.Mappings, err = p.store.ListRarityMappings(ctx); err != nil {
		return domain.RuleSnapshot{}, err
	}
	if snap.Exceptions, err = p.store.ListCardExceptions(ctx); err != nil {
		return domain.RuleSnapshot{}, err
	}
	return snap, nil
}

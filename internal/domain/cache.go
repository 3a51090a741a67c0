package domain

import "context"

// CustomVariantCache caches the active custom variants per card so display
// classification does not hit the database on every request. Admin writes
// invalidate the card's entry.
type CustomVariantCache interface {
	GetByCard(ctx context.Context, cardID string) ([]CustomVariant, error)
	SetByCard(ctx context.Context, cardID string, variants []CustomVariant) error
	Invalidate(ctx context.Context, cardID string) error
}

// RuleSnapshot is the cacheable form of the merged rule tables.
type RuleSnapshot struct {
	Policies   []SetPolicy
	Mappings   []RarityMapping
	Exceptions []CardException
}

// RuleCache caches one whole-ruleset snapshot.
type RuleCache interface {
	Get(ctx context.Context) (RuleSnapshot, error)
	Set(ctx context.Context, snap RuleSnapshot) error
	Invalidate(ctx context.Context) error
}

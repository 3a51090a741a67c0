package domain

import "context"

// CardStore reads card catalogue records.
type CardStore interface {
	GetByID(ctx context.Context, id string) (Card, error)
	ListBySet(ctx context.Context, setID string) ([]Card, error)
}

// SetStore reads set catalogue records.
type SetStore interface {
	GetByID(ctx context.Context, id string) (SetInfo, error)
}

// PriceStore reads raw price observations.
type PriceStore interface {
	ListByCard(ctx context.Context, cardID string) ([]PriceRecord, error)
	ListBySet(ctx context.Context, setID string) (map[string][]PriceRecord, error)
}

// ExchangeRateStore reads observed exchange rates. Latest returns the most
// recent row for the exact (from, to) pair, or ErrNotFound when the pair has
// never been observed in that direction.
type ExchangeRateStore interface {
	Latest(ctx context.Context, from, to Currency) (ExchangeRate, error)
	Insert(ctx context.Context, rate ExchangeRate) error
}

// CustomVariantStore persists administrator-authored custom variants.
// Variants are never deleted; Deactivate flips IsActive.
type CustomVariantStore interface {
	Create(ctx context.Context, v CustomVariant) error
	Update(ctx context.Context, v CustomVariant) error
	Deactivate(ctx context.Context, id string) error
	ListActiveByCard(ctx context.Context, cardID string) ([]CustomVariant, error)
	ListByCard(ctx context.Context, cardID string) ([]CustomVariant, error)
}

// RuleStore reads the configurable rule tables. Rows are small and returned
// whole; the rules provider overlays them on the static seed tables.
type RuleStore interface {
	ListSetPolicies(ctx context.Context) ([]SetPolicy, error)
	ListRarityMappings(ctx context.Context) ([]RarityMapping, error)
	ListCardExceptions(ctx context.Context) ([]CardException, error)
}

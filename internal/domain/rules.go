package domain

import "time"

// Era is the coarse time-period classification of a set. It drives the
// default variant expectations for cards whose sets fall in its date range.
type Era string

const (
	EraVintage Era = "vintage"
	EraClassic Era = "classic"
	EraModern  Era = "modern"
	// EraUnknown is the documented default when a release date falls outside
	// every configured era range. Classification never fails on it.
	EraUnknown Era = "unknown"
)

// EraDefinition attaches an era label to a release-date range. Ranges are
// inclusive of From and exclusive of To; a zero To means open-ended.
type EraDefinition struct {
	Era  Era
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the definition's range.
func (d EraDefinition) Contains(t time.Time) bool {
	if t.Before(d.From) {
		return false
	}
	return d.To.IsZero() || t.Before(d.To)
}

// SetPolicy declares which variant sub-styles a set supports. One policy
// exists per set; classification reads it, never writes it.
type SetPolicy struct {
	SetID                string
	Era                  Era
	HasStandardReverse   bool
	HasPokeballReverse   bool
	HasMasterballReverse bool
	HasFirstEdition      bool
	// HoloDefault maps rarity labels to whether a holo print exists by
	// default for that rarity in this set.
	HoloDefault map[string]bool
}

// AllowsKind reports whether the policy declares the given sub-style to
// exist for a card of the given rarity. Normal prints always exist.
func (p SetPolicy) AllowsKind(kind VariantKind, rarity string) bool {
	switch kind {
	case VariantNormal:
		return true
	case VariantHolo:
		return p.HoloDefault[rarity]
	case VariantReverseHoloStandard:
		return p.HasStandardReverse
	case VariantReverseHoloPokeball:
		return p.HasPokeballReverse
	case VariantReverseHoloMasterball:
		return p.HasMasterballReverse
	case VariantFirstEdition:
		return p.HasFirstEdition
	default:
		return false
	}
}

// RarityMapping declares, for a (rarity, era) pair, which variant kinds are
// allowed, forced into existence, or excluded. Forced and Excluded must be
// disjoint.
type RarityMapping struct {
	Rarity   string
	Era      Era
	Allowed  []VariantKind
	Forced   []VariantKind
	Excluded []VariantKind
}

// CardException overrides variant existence for one specific card. It has
// the highest precedence among static rules; kinds it does not mention fall
// through to normal rule evaluation.
type CardException struct {
	SetID    string
	Number   string
	Variants map[VariantKind]bool
	Note     string
}

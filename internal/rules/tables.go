// Package rules holds the static/configurable rule tables that drive variant
// classification: era definitions, set policies, rarity mappings, card
// exceptions, and the hand-maintained approximate exchange-rate table.
// A RuleSet is immutable once built; refreshes build a new one.
package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

type mappingKey struct {
	Rarity string
	Era    domain.Era
}

type exceptionKey struct {
	SetID  string
	Number string
}

type pairKey struct {
	From domain.Currency
	To   domain.Currency
}

// RuleSet is one consistent, fully-loaded view of every rule table. The
// engine receives a RuleSet per call and treats it as read-only.
type RuleSet struct {
	eras       []domain.EraDefinition
	policies   map[string]domain.SetPolicy
	mappings   map[mappingKey]domain.RarityMapping
	exceptions map[exceptionKey]domain.CardException
	approx     map[pairKey]float64
}

// EraForDate returns the era whose date range contains t, or EraUnknown when
// no range matches (including the zero time).
func (rs *RuleSet) EraForDate(t time.Time) domain.Era {
	if t.IsZero() {
		return domain.EraUnknown
	}
	for _, def := range rs.eras {
		if def.Contains(t) {
			return def.Era
		}
	}
	return domain.EraUnknown
}

// Policy returns the set policy for setID. The second result is false when
// no policy is configured for the set.
func (rs *RuleSet) Policy(setID string) (domain.SetPolicy, bool) {
	p, ok := rs.policies[setID]
	return p, ok
}

// Mapping returns the rarity mapping for (rarity, era). The second result is
// false when no mapping exists for the pair.
func (rs *RuleSet) Mapping(rarity string, era domain.Era) (domain.RarityMapping, bool) {
	m, ok := rs.mappings[mappingKey{Rarity: rarity, Era: era}]
	return m, ok
}

// Exception returns the card exception for (setID, number), or nil.
func (rs *RuleSet) Exception(setID, number string) *domain.CardException {
	if exc, ok := rs.exceptions[exceptionKey{SetID: setID, Number: number}]; ok {
		return &exc
	}
	return nil
}

// ApproximateRate returns the hand-maintained rate for the pair. When only
// the opposite direction is present the stored rate is inverted.
func (rs *RuleSet) ApproximateRate(from, to domain.Currency) (float64, bool) {
	if r, ok := rs.approx[pairKey{From: from, To: to}]; ok {
		return r, true
	}
	if r, ok := rs.approx[pairKey{From: to, To: from}]; ok && r != 0 {
		return 1 / r, true
	}
	return 0, false
}

// Overlay returns a copy of rs with the given dynamic rows layered on top of
// the static tables. Rows replace static entries with the same key, so
// administrator configuration always wins over the built-in seed.
func (rs *RuleSet) Overlay(snap domain.RuleSnapshot) *RuleSet {
	out := &RuleSet{
		eras:       rs.eras,
		policies:   make(map[string]domain.SetPolicy, len(rs.policies)+len(snap.Policies)),
		mappings:   make(map[mappingKey]domain.RarityMapping, len(rs.mappings)+len(snap.Mappings)),
		exceptions: make(map[exceptionKey]domain.CardException, len(rs.exceptions)+len(snap.Exceptions)),
		approx:     rs.approx,
	}
	for k, v := range rs.policies {
		out.policies[k] = v
	}
	for k, v := range rs.mappings {
		out.mappings[k] = v
	}
	for k, v := range rs.exceptions {
		out.exceptions[k] = v
	}
	for _, p := range snap.Policies {
		out.policies[p.SetID] = p
	}
	for _, m := range snap.Mappings {
		out.mappings[mappingKey{Rarity: m.Rarity, Era: m.Era}] = m
	}
	for _, e := range snap.Exceptions {
		out.exceptions[exceptionKey{SetID: e.SetID, Number: e.Number}] = e
	}
	return out
}

// Validate checks every rarity mapping for the forced/excluded disjointness
// invariant and returns a combined error naming every violation.
func (rs *RuleSet) Validate() error {
	var errs []string
	for key, m := range rs.mappings {
		for _, f := range m.Forced {
			for _, x := range m.Excluded {
				if f == x {
					errs = append(errs, fmt.Sprintf(
						"mapping (%s, %s): kind %q is both forced and excluded",
						key.Rarity, key.Era, f))
				}
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", domain.ErrInvalidRule, strings.Join(errs, "\n  - "))
	}
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Default returns the built-in seed tables. A deployment normally overlays
// these with the rules TOML file and the rows stored in Postgres.
func Default() *RuleSet {
	rs := &RuleSet{
		eras: []domain.EraDefinition{
			{Era: domain.EraVintage, From: date(1999, time.January, 1), To: date(2003, time.July, 1)},
			{Era: domain.EraClassic, From: date(2003, time.July, 1), To: date(2011, time.April, 1)},
			{Era: domain.EraModern, From: date(2011, time.April, 1)},
		},
		policies:   map[string]domain.SetPolicy{},
		mappings:   map[mappingKey]domain.RarityMapping{},
		exceptions: map[exceptionKey]domain.CardException{},
		approx: map[pairKey]float64{
			{From: domain.CurrencyUSD, To: domain.CurrencyEUR}: 0.92,
			{From: domain.CurrencyUSD, To: domain.CurrencyGBP}: 0.79,
			{From: domain.CurrencyUSD, To: domain.CurrencyNOK}: 10.60,
			{From: domain.CurrencyUSD, To: domain.CurrencySEK}: 10.40,
			{From: domain.CurrencyUSD, To: domain.CurrencyDKK}: 6.90,
			{From: domain.CurrencyUSD, To: domain.CurrencyJPY}: 149.0,
			{From: domain.CurrencyEUR, To: domain.CurrencyNOK}: 11.50,
			{From: domain.CurrencyEUR, To: domain.CurrencyGBP}: 0.86,
		},
	}

	common := []domain.VariantKind{
		domain.VariantNormal,
		domain.VariantHolo,
		domain.VariantReverseHoloStandard,
	}

	add := func(m domain.RarityMapping) {
		rs.mappings[mappingKey{Rarity: m.Rarity, Era: m.Era}] = m
	}

	// Vintage sets have no reverse holos; holo rares are forced holo and
	// first editions exist where the set policy says so.
	add(domain.RarityMapping{
		Rarity: "common", Era: domain.EraVintage,
		Allowed:  []domain.VariantKind{domain.VariantNormal, domain.VariantFirstEdition},
		Excluded: []domain.VariantKind{domain.VariantReverseHoloStandard},
	})
	add(domain.RarityMapping{
		Rarity: "rare-holo", Era: domain.EraVintage,
		Allowed:  []domain.VariantKind{domain.VariantHolo, domain.VariantFirstEdition},
		Forced:   []domain.VariantKind{domain.VariantHolo},
		Excluded: []domain.VariantKind{domain.VariantNormal, domain.VariantReverseHoloStandard},
	})

	for _, rarity := range []string{"common", "uncommon", "rare"} {
		add(domain.RarityMapping{Rarity: rarity, Era: domain.EraClassic, Allowed: common})
		add(domain.RarityMapping{Rarity: rarity, Era: domain.EraModern, Allowed: common})
	}
	for _, era := range []domain.Era{domain.EraClassic, domain.EraModern} {
		add(domain.RarityMapping{
			Rarity: "rare-holo", Era: era,
			Allowed: common,
			Forced:  []domain.VariantKind{domain.VariantHolo},
			Excluded: []domain.VariantKind{
				domain.VariantNormal,
			},
		})
	}

	return rs
}

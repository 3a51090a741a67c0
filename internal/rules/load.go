package rules

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

// fileFormat mirrors the rules TOML file. All sections are optional; the
// file overlays the built-in seed tables.
type fileFormat struct {
	Eras             []eraRow       `toml:"era"`
	SetPolicies      []policyRow    `toml:"set_policy"`
	RarityMappings   []mappingRow   `toml:"rarity_mapping"`
	CardExceptions   []exceptionRow `toml:"card_exception"`
	ApproximateRates []approxRow    `toml:"approximate_rate"`
}

type eraRow struct {
	Name string `toml:"name"`
	From string `toml:"from"`
	To   string `toml:"to"`
}

type policyRow struct {
	SetID                string          `toml:"set_id"`
	Era                  string          `toml:"era"`
	HasStandardReverse   bool            `toml:"has_standard_reverse"`
	HasPokeballReverse   bool            `toml:"has_pokeball_reverse"`
	HasMasterballReverse bool            `toml:"has_masterball_reverse"`
	HasFirstEdition      bool            `toml:"has_first_edition"`
	HoloDefault          map[string]bool `toml:"holo_default"`
}

type mappingRow struct {
	Rarity   string   `toml:"rarity"`
	Era      string   `toml:"era"`
	Allowed  []string `toml:"allowed"`
	Forced   []string `toml:"forced"`
	Excluded []string `toml:"excluded"`
}

type exceptionRow struct {
	SetID    string          `toml:"set_id"`
	Number   string          `toml:"number"`
	Note     string          `toml:"note"`
	Variants map[string]bool `toml:"variants"`
}

type approxRow struct {
	From string  `toml:"from"`
	To   string  `toml:"to"`
	Rate float64 `toml:"rate"`
}

const dateLayout = "2006-01-02"

// LoadFile reads the rules TOML file at path and overlays it on the built-in
// seed tables. The returned RuleSet has been validated.
func LoadFile(path string) (*RuleSet, error) {
	var file fileFormat
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("rules: decode %s: %w", path, err)
	}
	return fromFile(file)
}

func fromFile(file fileFormat) (*RuleSet, error) {
	rs := Default()

	if len(file.Eras) > 0 {
		eras := make([]domain.EraDefinition, 0, len(file.Eras))
		for _, row := range file.Eras {
			def := domain.EraDefinition{Era: domain.Era(row.Name)}
			var err error
			if def.From, err = time.Parse(dateLayout, row.From); err != nil {
				return nil, fmt.Errorf("rules: era %q: parse from: %w", row.Name, err)
			}
			if row.To != "" {
				if def.To, err = time.Parse(dateLayout, row.To); err != nil {
					return nil, fmt.Errorf("rules: era %q: parse to: %w", row.Name, err)
				}
			}
			eras = append(eras, def)
		}
		rs.eras = eras
	}

	for _, row := range file.SetPolicies {
		rs.policies[row.SetID] = domain.SetPolicy{
			SetID:                row.SetID,
			Era:                  domain.Era(row.Era),
			HasStandardReverse:   row.HasStandardReverse,
			HasPokeballReverse:   row.HasPokeballReverse,
			HasMasterballReverse: row.HasMasterballReverse,
			HasFirstEdition:      row.HasFirstEdition,
			HoloDefault:          row.HoloDefault,
		}
	}

	for _, row := range file.RarityMappings {
		m := domain.RarityMapping{
			Rarity:   row.Rarity,
			Era:      domain.Era(row.Era),
			Allowed:  toKinds(row.Allowed),
			Forced:   toKinds(row.Forced),
			Excluded: toKinds(row.Excluded),
		}
		rs.mappings[mappingKey{Rarity: m.Rarity, Era: m.Era}] = m
	}

	for _, row := range file.CardExceptions {
		exc := domain.CardException{
			SetID:    row.SetID,
			Number:   row.Number,
			Note:     row.Note,
			Variants: make(map[domain.VariantKind]bool, len(row.Variants)),
		}
		for kind, exists := range row.Variants {
			exc.Variants[domain.VariantKind(kind)] = exists
		}
		rs.exceptions[exceptionKey{SetID: exc.SetID, Number: exc.Number}] = exc
	}

	for _, row := range file.ApproximateRates {
		if row.Rate <= 0 {
			return nil, fmt.Errorf("rules: approximate rate %s->%s: rate must be > 0, got %v",
				row.From, row.To, row.Rate)
		}
		rs.approx[pairKey{From: domain.Currency(row.From), To: domain.Currency(row.To)}] = row.Rate
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

func toKinds(names []string) []domain.VariantKind {
	if len(names) == 0 {
		return nil
	}
	kinds := make([]domain.VariantKind, 0, len(names))
	for _, n := range names {
		kinds = append(kinds, domain.VariantKind(n))
	}
	return kinds
}

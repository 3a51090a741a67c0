package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

// RuleStore implements domain.RuleStore using PostgreSQL. Rows here are the
// administrator-editable overlay on the static seed tables.
type RuleStore struct {
	pool *pgxpool.Pool
}

// NewRuleStore creates a new RuleStore backed by the given connection pool.
func NewRuleStore(pool *pgxpool.Pool) *RuleStore {
	return &RuleStore{pool: pool}
}

// ListSetPolicies returns every stored set policy.
func (s *RuleStore) ListSetPolicies(ctx context.Context) ([]domain.SetPolicy, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT set_id, era, has_standard_reverse, has_pokeball_reverse,
		        has_masterball_reverse, has_first_edition, holo_default
		 FROM set_policies ORDER BY set_id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list set policies: %w", err)
	}
	defer rows.Close()

	var policies []domain.SetPolicy
	for rows.Next() {
		var p domain.SetPolicy
		var era string
		if err := rows.Scan(
			&p.SetID, &era, &p.HasStandardReverse, &p.HasPokeballReverse,
			&p.HasMasterballReverse, &p.HasFirstEdition, &p.HoloDefault,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan set policy: %w", err)
		}
		p.Era = domain.Era(era)
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list set policies rows: %w", err)
	}
	return policies, nil
}

// ListRarityMappings returns every stored rarity mapping.
func (s *RuleStore) ListRarityMappings(ctx context.Context) ([]domain.RarityMapping, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT rarity, era, allowed, forced, excluded
		 FROM rarity_mappings ORDER BY rarity, era`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list rarity mappings: %w", err)
	}
	defer rows.Close()

	var mappings []domain.RarityMapping
	for rows.Next() {
		var m domain.RarityMapping
		var era string
		var allowed, forced, excluded []string
		if err := rows.Scan(&m.Rarity, &era, &allowed, &forced, &excluded); err != nil {
			return nil, fmt.Errorf("postgres: scan rarity mapping: %w", err)
		}
		m.Era = domain.Era(era)
		m.Allowed = toVariantKinds(allowed)
		m.Forced = toVariantKinds(forced)
		m.Excluded = toVariantKinds(excluded)
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list rarity mappings rows: %w", err)
	}
	return mappings, nil
}

// ListCardExceptions returns every stored card exception.
func (s *RuleStore) ListCardExceptions(ctx context.Context) ([]domain.CardException, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT set_id, number, variants, note
		 FROM card_exceptions ORDER BY set_id, number`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list card exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []domain.CardException
	for rows.Next() {
		var e domain.CardException
		var variants map[string]bool
		if err := rows.Scan(&e.SetID, &e.Number, &variants, &e.Note); err != nil {
			return nil, fmt.Errorf("postgres: scan card exception: %w", err)
		}
		e.Variants = make(map[domain.VariantKind]bool, len(variants))
		for kind, exists := range variants {
			e.Variants[domain.VariantKind(kind)] = exists
		}
		exceptions = append(exceptions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list card exceptions rows: %w", err)
	}
	return exceptions, nil
}

func toVariantKinds(names []string) []domain.VariantKind {
	if len(names) == 0 {
		return nil
	}
	kinds := make([]domain.VariantKind, 0, len(names))
	for _, n := range names {
		kinds = append(kinds, domain.VariantKind(n))
	}
	return kinds
}

// Compile-time interface check.
var _ domain.RuleStore = (*RuleStore)(nil)

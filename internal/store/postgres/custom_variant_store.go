package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

// CustomVariantStore implements domain.CustomVariantStore using PostgreSQL.
type CustomVariantStore struct {
	pool *pgxpool.Pool
}

// NewCustomVariantStore creates a new CustomVariantStore backed by the given
// connection pool.
func NewCustomVariantStore(pool *pgxpool.Pool) *CustomVariantStore {
	return &CustomVariantStore{pool: pool}
}

const customVariantCols = `id, card_id, name, family, display_name, description,
	source_product, prices, replaces_standard_variant, is_active,
	created_at, updated_at`

func scanCustomVariant(row pgx.Row) (domain.CustomVariant, error) {
	var v domain.CustomVariant
	var prices map[string]float64
	var replaces *string
	err := row.Scan(
		&v.ID, &v.CardID, &v.Name, &v.Family, &v.DisplayName, &v.Description,
		&v.SourceProduct, &prices, &replaces, &v.IsActive,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return domain.CustomVariant{}, err
	}
	if len(prices) > 0 {
		v.Prices = make(map[domain.Currency]float64, len(prices))
		for code, amount := range prices {
			v.Prices[domain.Currency(code)] = amount
		}
	}
	if replaces != nil {
		kind := domain.VariantKind(*replaces)
		v.ReplacesStandardVariant = &kind
	}
	return v, nil
}

func pricesParam(prices map[domain.Currency]float64) map[string]float64 {
	out := make(map[string]float64, len(prices))
	for code, amount := range prices {
		out[string(code)] = amount
	}
	return out
}

func replacesParam(kind *domain.VariantKind) *string {
	if kind == nil {
		return nil
	}
	s := string(*kind)
	return &s
}

// Create inserts a new custom variant.
func (s *CustomVariantStore) Create(ctx context.Context, v domain.CustomVariant) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO custom_variants (
			id, card_id, name, family, display_name, description,
			source_product, prices, replaces_standard_variant, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`,
		v.ID, v.CardID, v.Name, v.Family, v.DisplayName, v.Description,
		v.SourceProduct, pricesParam(v.Prices), replacesParam(v.ReplacesStandardVariant), v.IsActive,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("postgres: create custom variant %s: %w", v.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("postgres: create custom variant %s: %w", v.ID, err)
	}
	return nil
}

// Update rewrites an existing custom variant's editable fields.
func (s *CustomVariantStore) Update(ctx context.Context, v domain.CustomVariant) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE custom_variants SET
			name = $2, family = $3, display_name = $4, description = $5,
			source_product = $6, prices = $7, replaces_standard_variant = $8,
			is_active = $9, updated_at = NOW()
		 WHERE id = $1`,
		v.ID, v.Name, v.Family, v.DisplayName, v.Description,
		v.SourceProduct, pricesParam(v.Prices), replacesParam(v.ReplacesStandardVariant), v.IsActive,
	)
	if err != nil {
		return fmt.Errorf("postgres: update custom variant %s: %w", v.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Deactivate soft-disables a custom variant. Rows are never deleted.
func (s *CustomVariantStore) Deactivate(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE custom_variants SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deactivate custom variant %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListActiveByCard returns the active custom variants for a card in creation
// order, which is the order the override merger applies them in.
func (s *CustomVariantStore) ListActiveByCard(ctx context.Context, cardID string) ([]domain.CustomVariant, error) {
	return s.listByCard(ctx, cardID, true)
}

// ListByCard returns every custom variant for a card, active or not.
func (s *CustomVariantStore) ListByCard(ctx context.Context, cardID string) ([]domain.CustomVariant, error) {
	return s.listByCard(ctx, cardID, false)
}

func (s *CustomVariantStore) listByCard(ctx context.Context, cardID string, activeOnly bool) ([]domain.CustomVariant, error) {
	query := `SELECT ` + customVariantCols + ` FROM custom_variants WHERE card_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list custom variants for %s: %w", cardID, err)
	}
	defer rows.Close()

	var variants []domain.CustomVariant
	for rows.Next() {
		v, err := scanCustomVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan custom variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list custom variants rows: %w", err)
	}
	return variants, nil
}

// Compile-time interface check.
var _ domain.CustomVariantStore = (*CustomVariantStore)(nil)

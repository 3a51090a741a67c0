package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

// PriceStore implements domain.PriceStore using PostgreSQL.
type PriceStore struct {
	pool *pgxpool.Pool
}

// NewPriceStore creates a new PriceStore backed by the given connection pool.
func NewPriceStore(pool *pgxpool.Pool) *PriceStore {
	return &PriceStore{pool: pool}
}

const priceCols = `card_id, source, variant, currency,
	low, mid, high, market, direct_low, updated_at`

func scanPriceRecord(row pgx.Row) (domain.PriceRecord, error) {
	var r domain.PriceRecord
	var source, variant, currency string
	err := row.Scan(
		&r.CardID, &source, &variant, &currency,
		&r.Low, &r.Mid, &r.High, &r.Market, &r.DirectLow, &r.UpdatedAt,
	)
	if err != nil {
		return domain.PriceRecord{}, err
	}
	r.Source = domain.PriceSource(source)
	r.Variant = domain.VariantKind(variant)
	r.Currency = domain.Currency(currency)
	return r, nil
}

// ListByCard returns every price observation for a card, ordered by source
// then variant so normalization sees a stable iteration order.
func (s *PriceStore) ListByCard(ctx context.Context, cardID string) ([]domain.PriceRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+priceCols+` FROM price_records
		 WHERE card_id = $1 ORDER BY source, variant`, cardID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list prices for card %s: %w", cardID, err)
	}
	defer rows.Close()

	var records []domain.PriceRecord
	for rows.Next() {
		r, err := scanPriceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan price record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list prices rows: %w", err)
	}
	return records, nil
}

// ListBySet returns price observations for every card in the set, grouped by
// card id, in the same stable per-card order as ListByCard.
func (s *PriceStore) ListBySet(ctx context.Context, setID string) (map[string][]domain.PriceRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+priceCols+` FROM price_records p
		 WHERE EXISTS (SELECT 1 FROM cards c WHERE c.id = p.card_id AND c.set_id = $1)
		 ORDER BY p.card_id, p.source, p.variant`, setID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list prices for set %s: %w", setID, err)
	}
	defer rows.Close()

	records := make(map[string][]domain.PriceRecord)
	for rows.Next() {
		r, err := scanPriceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan price record: %w", err)
		}
		records[r.CardID] = append(records[r.CardID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list set prices rows: %w", err)
	}
	return records, nil
}

// Compile-time interface check.
var _ domain.PriceStore = (*PriceStore)(nil)

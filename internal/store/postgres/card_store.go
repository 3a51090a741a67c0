package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

// CardStore implements domain.CardStore and domain.SetStore using PostgreSQL.
type CardStore struct {
	pool *pgxpool.Pool
}

// NewCardStore creates a new CardStore backed by the given connection pool.
func NewCardStore(pool *pgxpool.Pool) *CardStore {
	return &CardStore{pool: pool}
}

const cardCols = `id, set_id, number, name, rarity, release_date,
	variant_signals, created_at, updated_at`

func scanCard(row pgx.Row) (domain.Card, error) {
	var c domain.Card
	err := row.Scan(
		&c.ID, &c.SetID, &c.Number, &c.Name, &c.Rarity, &c.ReleaseDate,
		&c.RawSignals, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Card{}, err
	}
	return c, nil
}

// GetByID retrieves a card by its primary key.
func (s *CardStore) GetByID(ctx context.Context, id string) (domain.Card, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+cardCols+` FROM cards WHERE id = $1`, id)
	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Card{}, domain.ErrNotFound
		}
		return domain.Card{}, fmt.Errorf("postgres: get card %s: %w", id, err)
	}
	return c, nil
}

// ListBySet returns every card in a set ordered by collector number.
func (s *CardStore) ListBySet(ctx context.Context, setID string) ([]domain.Card, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+cardCols+` FROM cards WHERE set_id = $1 ORDER BY number`, setID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list cards for set %s: %w", setID, err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list cards rows: %w", err)
	}
	return cards, nil
}

// SetStore implements domain.SetStore using PostgreSQL.
type SetStore struct {
	pool *pgxpool.Pool
}

// NewSetStore creates a new SetStore backed by the given connection pool.
func NewSetStore(pool *pgxpool.Pool) *SetStore {
	return &SetStore{pool: pool}
}

// GetByID retrieves a set by its primary key.
func (s *SetStore) GetByID(ctx context.Context, id string) (domain.SetInfo, error) {
	var set domain.SetInfo
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, series, release_date, total FROM sets WHERE id = $1`, id,
	).Scan(&set.ID, &set.Name, &set.Series, &set.ReleaseDate, &set.Total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SetInfo{}, domain.ErrNotFound
		}
		return domain.SetInfo{}, fmt.Errorf("postgres: get set %s: %w", id, err)
	}
	return set, nil
}

// Compile-time interface checks.
var (
	_ domain.CardStore = (*CardStore)(nil)
	_ domain.SetStore  = (*SetStore)(nil)
)

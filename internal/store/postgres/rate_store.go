package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

// ExchangeRateStore implements domain.ExchangeRateStore using PostgreSQL.
// Rate rows accumulate over time; Latest serves the newest observation for
// the exact requested direction.
type ExchangeRateStore struct {
	pool *pgxpool.Pool
}

// NewExchangeRateStore creates a new ExchangeRateStore backed by the given
// connection pool.
func NewExchangeRateStore(pool *pgxpool.Pool) *ExchangeRateStore {
	return &ExchangeRateStore{pool: pool}
}

// Latest returns the most recent rate row for (from, to). The pair is
// directional: a missing A→B row is ErrNotFound even when B→A exists.
func (s *ExchangeRateStore) Latest(ctx context.Context, from, to domain.Currency) (domain.ExchangeRate, error) {
	var rate domain.ExchangeRate
	var f, t string
	err := s.pool.QueryRow(ctx,
		`SELECT from_currency, to_currency, rate, observed_at
		 FROM exchange_rates
		 WHERE from_currency = $1 AND to_currency = $2
		 ORDER BY observed_at DESC
		 LIMIT 1`,
		string(from), string(to),
	).Scan(&f, &t, &rate.Rate, &rate.ObservedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ExchangeRate{}, domain.ErrNotFound
		}
		return domain.ExchangeRate{}, fmt.Errorf("postgres: latest rate %s->%s: %w", from, to, err)
	}
	rate.From = domain.Currency(f)
	rate.To = domain.Currency(t)
	return rate, nil
}

// Insert records a new rate observation.
func (s *ExchangeRateStore) Insert(ctx context.Context, rate domain.ExchangeRate) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO exchange_rates (from_currency, to_currency, rate, observed_at)
		 VALUES ($1, $2, $3, $4)`,
		string(rate.From), string(rate.To), rate.Rate, rate.ObservedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert rate %s->%s: %w", rate.From, rate.To, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.ExchangeRateStore = (*ExchangeRateStore)(nil)

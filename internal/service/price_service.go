package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
	"github.com/buenedata/lumidex-v2-sub002/internal/engine"
)

// DefaultBatchWorkers caps the per-card fan-out during set-wide price
// normalization.
const DefaultBatchWorkers = 16

// PriceService answers "what is this card worth" by normalizing raw price
// records into a single cheapest value in the caller's currency.
type PriceService struct {
	prices       domain.PriceStore
	normalizer   *engine.Normalizer
	batchWorkers int
	logger       *slog.Logger
}

// NewPriceService creates a PriceService. batchWorkers <= 0 selects the
// default.
func NewPriceService(prices domain.PriceStore, normalizer *engine.Normalizer, batchWorkers int, logger *slog.Logger) *PriceService {
	if batchWorkers <= 0 {
		batchWorkers = DefaultBatchWorkers
	}
	return &PriceService{
		prices:       prices,
		normalizer:   normalizer,
		batchWorkers: batchWorkers,
		logger:       logger.With(slog.String("component", "price_service")),
	}
}

// GetNormalizedPrice loads the card's raw price records and normalizes them
// to the target currency. A card with no records returns a result with a nil
// Cheapest, not an error.
func (s *PriceService) GetNormalizedPrice(ctx context.Context, cardID string, target domain.Currency, preferred domain.PriceSource) (domain.NormalizedPrice, error) {
	if !domain.ValidCurrency(target) {
		return domain.NormalizedPrice{}, fmt.Errorf("price_service: %w: %q", domain.ErrUnknownCurrency, target)
	}
	if !domain.ValidPriceSource(preferred) {
		return domain.NormalizedPrice{}, fmt.Errorf("price_service: %w: %q", domain.ErrUnknownSource, preferred)
	}

	records, err := s.prices.ListByCard(ctx, cardID)
	if err != nil {
		return domain.NormalizedPrice{}, fmt.Errorf("price_service: list prices for %q: %w", cardID, err)
	}

	return s.normalizer.Normalize(ctx, cardID, records, target, preferred), nil
}

// GetSetPrices normalizes every card in a set, fanning out per card through
// a bounded worker pool since each card may trigger independent rate I/O.
// Per-card failures are logged and skipped; callers tolerate partial
// results, so one bad card never sinks the whole listing.
func (s *PriceService) GetSetPrices(ctx context.Context, setID string, target domain.Currency, preferred domain.PriceSource) (map[string]domain.NormalizedPrice, error) {
	if !domain.ValidCurrency(target) {
		return nil, fmt.Errorf("price_service: %w: %q", domain.ErrUnknownCurrency, target)
	}
	if !domain.ValidPriceSource(preferred) {
		return nil, fmt.Errorf("price_service: %w: %q", domain.ErrUnknownSource, preferred)
	}

	recordsByCard, err := s.prices.ListBySet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("price_service: list prices for set %q: %w", setID, err)
	}

	var mu sync.Mutex
	results := make(map[string]domain.NormalizedPrice, len(recordsByCard))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchWorkers)

	for cardID, records := range recordsByCard {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				// Deadline hit mid-batch: abandon remaining cards, keep
				// what already completed.
				return nil
			}
			normalized := s.normalizer.Normalize(gctx, cardID, records, target, preferred)
			mu.Lock()
			results[cardID] = normalized
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("price_service: normalize set %q: %w", setID, err)
	}
	return results, nil
}

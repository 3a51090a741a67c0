package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
	"github.com/buenedata/lumidex-v2-sub002/internal/engine"
	"github.com/buenedata/lumidex-v2-sub002/internal/rules"
)

func fptr(v float64) *float64 {
	return &v
}

type fakePriceStore struct {
	byCard map[string][]domain.PriceRecord
	err    error
}

func (f *fakePriceStore) ListByCard(ctx context.Context, cardID string) ([]domain.PriceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byCard[cardID], nil
}

func (f *fakePriceStore) ListBySet(ctx context.Context, setID string) (map[string][]domain.PriceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byCard, nil
}

type emptyRateStore struct{}

func (emptyRateStore) Latest(ctx context.Context, from, to domain.Currency) (domain.ExchangeRate, error) {
	return domain.ExchangeRate{}, domain.ErrNotFound
}

func (emptyRateStore) Insert(ctx context.Context, rate domain.ExchangeRate) error {
	return nil
}

func newTestPriceService(prices *fakePriceStore, workers int) *PriceService {
	resolver := engine.NewResolver(emptyRateStore{}, rules.Default(), engine.ResolverConfig{}, testLogger())
	return NewPriceService(prices, engine.NewNormalizer(resolver, testLogger()), workers, testLogger())
}

func TestGetNormalizedPrice(t *testing.T) {
	prices := &fakePriceStore{byCard: map[string][]domain.PriceRecord{
		"c1": {
			{
				CardID: "c1", Source: domain.SourceCardmarket,
				Variant: domain.VariantNormal, Currency: domain.CurrencyEUR,
				Low: fptr(3.50),
			},
		},
	}}
	svc := newTestPriceService(prices, 0)

	out, err := svc.GetNormalizedPrice(context.Background(), "c1", domain.CurrencyEUR, domain.SourceCardmarket)
	require.NoError(t, err)
	require.NotNil(t, out.Cheapest)
	assert.Equal(t, 3.50, out.Cheapest.Amount)
}

func TestGetNormalizedPriceNoRecords(t *testing.T) {
	svc := newTestPriceService(&fakePriceStore{}, 0)

	out, err := svc.GetNormalizedPrice(context.Background(), "unknown", domain.CurrencyEUR, domain.SourceCardmarket)
	require.NoError(t, err)
	assert.Nil(t, out.Cheapest)
}

func TestGetNormalizedPriceValidation(t *testing.T) {
	svc := newTestPriceService(&fakePriceStore{}, 0)

	_, err := svc.GetNormalizedPrice(context.Background(), "c1", domain.Currency("XXX"), domain.SourceCardmarket)
	assert.ErrorIs(t, err, domain.ErrUnknownCurrency)

	_, err = svc.GetNormalizedPrice(context.Background(), "c1", domain.CurrencyEUR, domain.PriceSource("ebay"))
	assert.ErrorIs(t, err, domain.ErrUnknownSource)
}

func TestGetSetPrices(t *testing.T) {
	byCard := make(map[string][]domain.PriceRecord)
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5"} {
		byCard[id] = []domain.PriceRecord{
			{
				CardID: id, Source: domain.SourceCardmarket,
				Variant: domain.VariantNormal, Currency: domain.CurrencyEUR,
				Low: fptr(2.00),
			},
		}
	}
	svc := newTestPriceService(&fakePriceStore{byCard: byCard}, 2)

	out, err := svc.GetSetPrices(context.Background(), "sv8pt5", domain.CurrencyEUR, domain.SourceCardmarket)
	require.NoError(t, err)
	require.Len(t, out, 5)
	for id, price := range out {
		require.NotNil(t, price.Cheapest, "card %s", id)
		assert.Equal(t, 2.00, price.Cheapest.Amount)
	}
}

func TestGetSetPricesStoreError(t *testing.T) {
	svc := newTestPriceService(&fakePriceStore{err: errors.New("connection refused")}, 0)

	_, err := svc.GetSetPrices(context.Background(), "sv8pt5", domain.CurrencyEUR, domain.SourceCardmarket)
	require.Error(t, err)
}

func TestGetSetPricesCancelledContext(t *testing.T) {
	byCard := map[string][]domain.PriceRecord{
		"c1": {{
			CardID: "c1", Source: domain.SourceCardmarket,
			Variant: domain.VariantNormal, Currency: domain.CurrencyEUR,
			Low: fptr(2.00),
		}},
	}
	svc := newTestPriceService(&fakePriceStore{byCard: byCard}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Cancellation abandons the remaining cards; whatever completed is kept
	// and the call still returns cleanly.
	out, err := svc.GetSetPrices(ctx, "sv8pt5", domain.CurrencyEUR, domain.SourceCardmarket)
	require.NoError(t, err)
	assert.Empty(t, out)
}

package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

func fptr(v float64) *float64 {
	return &v
}

func newTestNormalizer(store *fakeRateStore) *Normalizer {
	return NewNormalizer(newTestResolver(store), testLogger())
}

func TestNormalizeCheapestIgnoresPreferredSource(t *testing.T) {
	n := newTestNormalizer(&fakeRateStore{})
	records := []domain.PriceRecord{
		{
			CardID: "c1", Source: domain.SourceTCGPlayer,
			Variant: domain.VariantNormal, Currency: domain.CurrencyEUR,
			Market: fptr(4.20),
		},
		{
			CardID: "c1", Source: domain.SourceCardmarket,
			Variant: domain.VariantHolo, Currency: domain.CurrencyEUR,
			Low: fptr(3.50), Mid: fptr(5.00),
		},
	}

	// preferred=tcgplayer must not stop the cardmarket 3.50 from winning.
	out := n.Normalize(context.Background(), "c1", records, domain.CurrencyEUR, domain.SourceTCGPlayer)

	require.NotNil(t, out.Cheapest)
	assert.Equal(t, 3.50, out.Cheapest.Amount)
	assert.Equal(t, domain.SourceCardmarket, out.Cheapest.Source)
	assert.Equal(t, domain.VariantHolo, out.Cheapest.Variant)
	assert.Equal(t, domain.PriceTypeLow, out.Cheapest.PriceType)
	assert.Nil(t, out.Conversion)
}

func TestNormalizeZeroIsMissing(t *testing.T) {
	n := newTestNormalizer(&fakeRateStore{})
	records := []domain.PriceRecord{
		{
			CardID: "c1", Source: domain.SourceCardmarket,
			Variant: domain.VariantNormal, Currency: domain.CurrencyEUR,
			Low: fptr(0), Mid: fptr(5.00),
		},
	}

	out := n.Normalize(context.Background(), "c1", records, domain.CurrencyEUR, domain.SourceCardmarket)

	require.NotNil(t, out.Cheapest)
	assert.Equal(t, 5.00, out.Cheapest.Amount)
	assert.Equal(t, domain.PriceTypeMid, out.Cheapest.PriceType)
}

func TestNormalizeHighNeverCompetes(t *testing.T) {
	n := newTestNormalizer(&fakeRateStore{})
	records := []domain.PriceRecord{
		{
			CardID: "c1", Source: domain.SourceCardmarket,
			Variant: domain.VariantNormal, Currency: domain.CurrencyEUR,
			High: fptr(1.00), Mid: fptr(5.00),
		},
	}

	out := n.Normalize(context.Background(), "c1", records, domain.CurrencyEUR, domain.SourceCardmarket)

	require.NotNil(t, out.Cheapest)
	assert.Equal(t, 5.00, out.Cheapest.Amount)
}

func TestNormalizeNoRecords(t *testing.T) {
	n := newTestNormalizer(&fakeRateStore{})

	out := n.Normalize(context.Background(), "c1", nil, domain.CurrencyEUR, domain.SourceCardmarket)

	assert.Nil(t, out.Cheapest)
	assert.Nil(t, out.Conversion)
	assert.Empty(t, out.PerVariant)
}

func TestNormalizeTieBreakFirstHit(t *testing.T) {
	n := newTestNormalizer(&fakeRateStore{})
	records := []domain.PriceRecord{
		{
			CardID: "c1", Source: domain.SourceTCGPlayer,
			Variant: domain.VariantNormal, Currency: domain.CurrencyEUR,
			Low: fptr(2.00),
		},
		{
			CardID: "c1", Source: domain.SourceCardmarket,
			Variant: domain.VariantNormal, Currency: domain.CurrencyEUR,
			Low: fptr(2.00),
		},
	}

	out := n.Normalize(context.Background(), "c1", records, domain.CurrencyEUR, domain.SourceCardmarket)

	require.NotNil(t, out.Cheapest)
	assert.Equal(t, domain.SourceTCGPlayer, out.Cheapest.Source)
}

func TestNormalizeConvertsToTarget(t *testing.T) {
	store := &fakeRateStore{rates: map[[2]domain.Currency]float64{
		{domain.CurrencyUSD, domain.CurrencyEUR}: 0.9,
	}}
	n := newTestNormalizer(store)
	records := []domain.PriceRecord{
		{
			CardID: "c1", Source: domain.SourceTCGPlayer,
			Variant: domain.VariantNormal, Currency: domain.CurrencyUSD,
			Market: fptr(10.00),
		},
	}

	out := n.Normalize(context.Background(), "c1", records, domain.CurrencyEUR, domain.SourceCardmarket)

	require.NotNil(t, out.Cheapest)
	assert.InDelta(t, 9.00, out.Cheapest.Amount, 1e-9)
	assert.Equal(t, domain.CurrencyEUR, out.Cheapest.Currency)
	assert.Equal(t, 10.00, out.Cheapest.RawAmount)
	assert.Equal(t, domain.CurrencyUSD, out.Cheapest.RawCurrency)
	require.NotNil(t, out.Conversion)
	assert.True(t, out.Conversion.Converted)
	assert.InDelta(t, 0.9, out.Conversion.Rate, 1e-9)
}

func TestNormalizeUnconvertedKeepsRawAmount(t *testing.T) {
	// Resolver with no store data and no approximate table cannot convert.
	resolver := NewResolver(&fakeRateStore{}, nil, ResolverConfig{}, testLogger())
	n := NewNormalizer(resolver, testLogger())
	records := []domain.PriceRecord{
		{
			CardID: "c1", Source: domain.SourceTCGPlayer,
			Variant: domain.VariantNormal, Currency: domain.CurrencyUSD,
			Market: fptr(10.00),
		},
	}

	out := n.Normalize(context.Background(), "c1", records, domain.CurrencyEUR, domain.SourceCardmarket)

	require.NotNil(t, out.Cheapest)
	assert.Equal(t, 10.00, out.Cheapest.Amount)
	assert.Equal(t, domain.CurrencyUSD, out.Cheapest.Currency)
	require.NotNil(t, out.Conversion)
	assert.False(t, out.Conversion.Converted)
	assert.NotEmpty(t, out.Conversion.Err)
}

func TestPerVariantPrefersSource(t *testing.T) {
	n := newTestNormalizer(&fakeRateStore{})
	records := []domain.PriceRecord{
		{
			CardID: "c1", Source: domain.SourceTCGPlayer,
			Variant: domain.VariantNormal, Currency: domain.CurrencyUSD,
			Market: fptr(4.00),
		},
		{
			CardID: "c1", Source: domain.SourceCardmarket,
			Variant: domain.VariantNormal, Currency: domain.CurrencyEUR,
			Market: fptr(3.80),
		},
		{
			CardID: "c1", Source: domain.SourceTCGPlayer,
			Variant: domain.VariantHolo, Currency: domain.CurrencyUSD,
			Market: fptr(12.00),
		},
	}

	out := n.Normalize(context.Background(), "c1", records, domain.CurrencyEUR, domain.SourceCardmarket)

	normal, ok := out.PerVariant[domain.VariantNormal]
	require.True(t, ok)
	assert.Equal(t, domain.SourceCardmarket, normal.Source)

	// The preferred source has no holo record, so the other source fills in.
	holo, ok := out.PerVariant[domain.VariantHolo]
	require.True(t, ok)
	assert.Equal(t, domain.SourceTCGPlayer, holo.Source)
}

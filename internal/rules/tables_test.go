package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

func TestEraForDate(t *testing.T) {
	rs := Default()

	tests := []struct {
		name string
		date time.Time
		want domain.Era
	}{
		{"zero time", time.Time{}, domain.EraUnknown},
		{"before first era", date(1995, time.May, 1), domain.EraUnknown},
		{"vintage start inclusive", date(1999, time.January, 1), domain.EraVintage},
		{"vintage end exclusive", date(2003, time.July, 1), domain.EraClassic},
		{"classic", date(2007, time.October, 15), domain.EraClassic},
		{"modern open-ended", date(2025, time.February, 1), domain.EraModern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.EraForDate(tt.date))
		})
	}
}

func TestApproximateRateInversion(t *testing.T) {
	rs := Default()

	direct, ok := rs.ApproximateRate(domain.CurrencyUSD, domain.CurrencyEUR)
	require.True(t, ok)
	assert.Equal(t, 0.92, direct)

	inverted, ok := rs.ApproximateRate(domain.CurrencyEUR, domain.CurrencyUSD)
	require.True(t, ok)
	assert.InDelta(t, 1/0.92, inverted, 1e-9)

	_, ok = rs.ApproximateRate(domain.CurrencyJPY, domain.CurrencyNOK)
	assert.False(t, ok)
}

func TestOverlayReplacesByKey(t *testing.T) {
	static := Default()
	static.policies["dup"] = domain.SetPolicy{SetID: "dup", Era: domain.EraClassic}

	merged := static.Overlay(domain.RuleSnapshot{
		Policies: []domain.SetPolicy{
			{SetID: "dup", Era: domain.EraModern, HasStandardReverse: true},
		},
		Exceptions: []domain.CardException{
			{SetID: "s1", Number: "7", Variants: map[domain.VariantKind]bool{domain.VariantHolo: false}},
		},
	})

	policy, ok := merged.Policy("dup")
	require.True(t, ok)
	assert.Equal(t, domain.EraModern, policy.Era)
	assert.True(t, policy.HasStandardReverse)

	exc := merged.Exception("s1", "7")
	require.NotNil(t, exc)
	assert.False(t, exc.Variants[domain.VariantHolo])

	// The static set is untouched.
	original, _ := static.Policy("dup")
	assert.Equal(t, domain.EraClassic, original.Era)
	assert.Nil(t, static.Exception("s1", "7"))
}

func TestValidateForcedExcludedDisjoint(t *testing.T) {
	rs := Default()
	require.NoError(t, rs.Validate())

	rs.mappings[mappingKey{Rarity: "broken", Era: domain.EraModern}] = domain.RarityMapping{
		Rarity: "broken", Era: domain.EraModern,
		Forced:   []domain.VariantKind{domain.VariantHolo},
		Excluded: []domain.VariantKind{domain.VariantHolo},
	}

	err := rs.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRule)
	assert.Contains(t, err.Error(), "broken")
}

package rules

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRuleStore struct {
	snap  domain.RuleSnapshot
	err   error
	calls int
}

func (f *fakeRuleStore) ListSetPolicies(ctx context.Context) ([]domain.SetPolicy, error) {
	f.calls++
	return f.snap.Policies, f.err
}

func (f *fakeRuleStore) ListRarityMappings(ctx context.Context) ([]domain.RarityMapping, error) {
	return f.snap.Mappings, f.err
}

func (f *fakeRuleStore) ListCardExceptions(ctx context.Context) ([]domain.CardException, error) {
	return f.snap.Exceptions, f.err
}

type fakeRuleCache struct {
	snap   *domain.RuleSnapshot
	getErr error
	setErr error
}

func (f *fakeRuleCache) Get(ctx context.Context) (domain.RuleSnapshot, error) {
	if f.getErr != nil {
		return domain.RuleSnapshot{}, f.getErr
	}
	if f.snap == nil {
		return domain.RuleSnapshot{}, domain.ErrNotFound
	}
	return *f.snap, nil
}

func (f *fakeRuleCache) Set(ctx context.Context, snap domain.RuleSnapshot) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.snap = &snap
	return nil
}

func (f *fakeRuleCache) Invalidate(ctx context.Context) error {
	f.snap = nil
	return nil
}

func TestSnapshotStaticOnly(t *testing.T) {
	static := Default()
	p := NewProvider(static, nil, nil, testLogger())

	assert.Same(t, static, p.Snapshot(context.Background()))
}

func TestSnapshotMergesStoreRows(t *testing.T) {
	store := &fakeRuleStore{snap: domain.RuleSnapshot{
		Policies: []domain.SetPolicy{{SetID: "sv8pt5", Era: domain.EraModern}},
	}}
	p := NewProvider(Default(), store, nil, testLogger())

	rs := p.Snapshot(context.Background())
	_, ok := rs.Policy("sv8pt5")
	assert.True(t, ok)
}

func TestSnapshotStoreFailureServesStatic(t *testing.T) {
	static := Default()
	store := &fakeRuleStore{err: errors.New("connection refused")}
	p := NewProvider(static, store, nil, testLogger())

	assert.Same(t, static, p.Snapshot(context.Background()))
}

func TestSnapshotInvalidStoredRulesServeStatic(t *testing.T) {
	static := Default()
	store := &fakeRuleStore{snap: domain.RuleSnapshot{
		Mappings: []domain.RarityMapping{{
			Rarity: "broken", Era: domain.EraModern,
			Forced:   []domain.VariantKind{domain.VariantHolo},
			Excluded: []domain.VariantKind{domain.VariantHolo},
		}},
	}}
	p := NewProvider(static, store, nil, testLogger())

	rs := p.Snapshot(context.Background())
	assert.Same(t, static, rs)
	require.NoError(t, rs.Validate())
}

func TestSnapshotCachePopulatedAndHit(t *testing.T) {
	store := &fakeRuleStore{snap: domain.RuleSnapshot{
		Policies: []domain.SetPolicy{{SetID: "sv8pt5", Era: domain.EraModern}},
	}}
	cache := &fakeRuleCache{}
	p := NewProvider(Default(), store, cache, testLogger())

	p.Snapshot(context.Background())
	require.NotNil(t, cache.snap)
	storeCalls := store.calls

	rs := p.Snapshot(context.Background())
	assert.Equal(t, storeCalls, store.calls, "second snapshot must come from the cache")
	_, ok := rs.Policy("sv8pt5")
	assert.True(t, ok)
}

func TestInvalidateDropsCachedSnapshot(t *testing.T) {
	store := &fakeRuleStore{}
	cache := &fakeRuleCache{snap: &domain.RuleSnapshot{}}
	p := NewProvider(Default(), store, cache, testLogger())

	require.NoError(t, p.Invalidate(context.Background()))
	assert.Nil(t, cache.snap)
}

package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
	"github.com/buenedata/lumidex-v2-sub002/internal/engine"
	"github.com/buenedata/lumidex-v2-sub002/internal/rules"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCardStore struct {
	cards map[string]domain.Card
}

func (f *fakeCardStore) GetByID(ctx context.Context, id string) (domain.Card, error) {
	card, ok := f.cards[id]
	if !ok {
		return domain.Card{}, domain.ErrNotFound
	}
	return card, nil
}

func (f *fakeCardStore) ListBySet(ctx context.Context, setID string) ([]domain.Card, error) {
	var out []domain.Card
	for _, c := range f.cards {
		if c.SetID == setID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeSetStore struct {
	sets map[string]domain.SetInfo
	err  error
}

func (f *fakeSetStore) GetByID(ctx context.Context, id string) (domain.SetInfo, error) {
	if f.err != nil {
		return domain.SetInfo{}, f.err
	}
	set, ok := f.sets[id]
	if !ok {
		return domain.SetInfo{}, domain.ErrNotFound
	}
	return set, nil
}

type fakeCustomStore struct {
	variants map[string][]domain.CustomVariant // by card ID
	listErr  error
	calls    int
}

func (f *fakeCustomStore) Create(ctx context.Context, v domain.CustomVariant) error {
	if f.variants == nil {
		f.variants = make(map[string][]domain.CustomVariant)
	}
	f.variants[v.CardID] = append(f.variants[v.CardID], v)
	return nil
}

func (f *fakeCustomStore) Update(ctx context.Context, v domain.CustomVariant) error {
	for i, existing := range f.variants[v.CardID] {
		if existing.ID == v.ID {
			f.variants[v.CardID][i] = v
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeCustomStore) Deactivate(ctx context.Context, id string) error {
	for cardID, list := range f.variants {
		for i, v := range list {
			if v.ID.String() == id {
				v.IsActive = false
				f.variants[cardID][i] = v
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func (f *fakeCustomStore) ListActiveByCard(ctx context.Context, cardID string) ([]domain.CustomVariant, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.CustomVariant
	for _, v := range f.variants[cardID] {
		if v.IsActive {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeCustomStore) ListByCard(ctx context.Context, cardID string) ([]domain.CustomVariant, error) {
	return f.variants[cardID], nil
}

type fakeCustomCache struct {
	entries map[string][]domain.CustomVariant
	getErr  error
}

func (f *fakeCustomCache) GetByCard(ctx context.Context, cardID string) ([]domain.CustomVariant, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	variants, ok := f.entries[cardID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return variants, nil
}

func (f *fakeCustomCache) SetByCard(ctx context.Context, cardID string, variants []domain.CustomVariant) error {
	if f.entries == nil {
		f.entries = make(map[string][]domain.CustomVariant)
	}
	f.entries[cardID] = variants
	return nil
}

func (f *fakeCustomCache) Invalidate(ctx context.Context, cardID string) error {
	delete(f.entries, cardID)
	return nil
}

func newTestVariantService(t *testing.T, customs *fakeCustomStore, cache domain.CustomVariantCache) *VariantService {
	t.Helper()

	static := rules.Default().Overlay(domain.RuleSnapshot{
		Policies: []domain.SetPolicy{
			{
				SetID:              "sv8pt5",
				Era:                domain.EraModern,
				HasStandardReverse: true,
				HoloDefault:        map[string]bool{"rare-holo": true},
			},
		},
	})

	cards := &fakeCardStore{cards: map[string]domain.Card{
		"sv8pt5-1": {ID: "sv8pt5-1", SetID: "sv8pt5", Number: "1", Rarity: "rare-holo"},
	}}
	sets := &fakeSetStore{sets: map[string]domain.SetInfo{
		"sv8pt5": {ID: "sv8pt5", Name: "Prismatic Evolutions"},
	}}

	return NewVariantService(
		cards, sets, customs, cache,
		rules.NewProvider(static, nil, nil, testLogger()),
		engine.NewClassifier(testLogger()),
		testLogger(),
	)
}

func TestGetDisplayVariants(t *testing.T) {
	svc := newTestVariantService(t, &fakeCustomStore{}, nil)

	dv, err := svc.GetDisplayVariants(context.Background(), "sv8pt5-1")
	require.NoError(t, err)

	assert.Equal(t, "sv8pt5-1", dv.CardID)
	assert.Equal(t, []domain.VariantKind{domain.VariantHolo, domain.VariantReverseHoloStandard}, dv.Display)
	assert.Empty(t, dv.Hidden)
	assert.Empty(t, dv.Custom)
	assert.NotEmpty(t, dv.Explanations)
}

func TestGetDisplayVariantsUnknownCard(t *testing.T) {
	svc := newTestVariantService(t, &fakeCustomStore{}, nil)

	_, err := svc.GetDisplayVariants(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPreviewMatchesDisplay(t *testing.T) {
	kind := domain.VariantReverseHoloStandard
	customs := &fakeCustomStore{variants: map[string][]domain.CustomVariant{
		"sv8pt5-1": {
			{
				ID: uuid.New(), CardID: "sv8pt5-1", Name: "pokeball_pattern",
				IsActive: true, ReplacesStandardVariant: &kind,
			},
		},
	}}
	svc := newTestVariantService(t, customs, nil)

	display, err := svc.GetDisplayVariants(context.Background(), "sv8pt5-1")
	require.NoError(t, err)
	preview, err := svc.PreviewVariants(context.Background(), "sv8pt5-1")
	require.NoError(t, err)

	assert.Equal(t, display, preview)
	assert.Equal(t, []domain.VariantKind{domain.VariantHolo}, display.Display)
	assert.Equal(t, []domain.VariantKind{domain.VariantReverseHoloStandard}, display.Hidden)
}

func TestDisplayVariantsUsesCustomCache(t *testing.T) {
	customs := &fakeCustomStore{variants: map[string][]domain.CustomVariant{
		"sv8pt5-1": {
			{ID: uuid.New(), CardID: "sv8pt5-1", Name: "staff_stamp", IsActive: true},
		},
	}}
	cache := &fakeCustomCache{}
	svc := newTestVariantService(t, customs, cache)

	_, err := svc.GetDisplayVariants(context.Background(), "sv8pt5-1")
	require.NoError(t, err)
	assert.Equal(t, 1, customs.calls)
	assert.Contains(t, cache.entries, "sv8pt5-1")

	_, err = svc.GetDisplayVariants(context.Background(), "sv8pt5-1")
	require.NoError(t, err)
	assert.Equal(t, 1, customs.calls, "second read must be served from the cache")
}

func TestDisplayVariantsCacheFailureFallsThrough(t *testing.T) {
	customs := &fakeCustomStore{}
	cache := &fakeCustomCache{getErr: errors.New("redis down")}
	svc := newTestVariantService(t, customs, cache)

	_, err := svc.GetDisplayVariants(context.Background(), "sv8pt5-1")
	require.NoError(t, err)
	assert.Equal(t, 1, customs.calls)
}

func TestSaveCustomVariantInvalidatesCache(t *testing.T) {
	customs := &fakeCustomStore{}
	cache := &fakeCustomCache{entries: map[string][]domain.CustomVariant{
		"sv8pt5-1": {},
	}}
	svc := newTestVariantService(t, customs, cache)

	err := svc.SaveCustomVariant(context.Background(), domain.CustomVariant{
		ID: uuid.New(), CardID: "sv8pt5-1", Name: "staff_stamp", IsActive: true,
	}, true)
	require.NoError(t, err)
	assert.NotContains(t, cache.entries, "sv8pt5-1")
}

func TestSaveCustomVariantRejectsUnknownReplacement(t *testing.T) {
	svc := newTestVariantService(t, &fakeCustomStore{}, nil)

	bogus := domain.VariantKind("shiny_sparkle")
	err := svc.SaveCustomVariant(context.Background(), domain.CustomVariant{
		ID: uuid.New(), CardID: "sv8pt5-1", Name: "bad",
		ReplacesStandardVariant: &bogus,
	}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRule)
}

func TestDeactivateCustomVariant(t *testing.T) {
	id := uuid.New()
	customs := &fakeCustomStore{variants: map[string][]domain.CustomVariant{
		"sv8pt5-1": {
			{ID: id, CardID: "sv8pt5-1", Name: "staff_stamp", IsActive: true},
		},
	}}
	cache := &fakeCustomCache{entries: map[string][]domain.CustomVariant{"sv8pt5-1": {}}}
	svc := newTestVariantService(t, customs, cache)

	err := svc.DeactivateCustomVariant(context.Background(), id.String(), "sv8pt5-1")
	require.NoError(t, err)
	assert.NotContains(t, cache.entries, "sv8pt5-1")

	active, err := customs.ListActiveByCard(context.Background(), "sv8pt5-1")
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestDisplayVariantsMissingSetDegrades(t *testing.T) {
	static := rules.Default()
	cards := &fakeCardStore{cards: map[string]domain.Card{
		"orphan-1": {ID: "orphan-1", SetID: "ghost", Number: "1", Rarity: "common"},
	}}
	sets := &fakeSetStore{sets: map[string]domain.SetInfo{}}

	svc := NewVariantService(
		cards, sets, &fakeCustomStore{}, nil,
		rules.NewProvider(static, nil, nil, testLogger()),
		engine.NewClassifier(testLogger()),
		testLogger(),
	)

	dv, err := svc.GetDisplayVariants(context.Background(), "orphan-1")
	require.NoError(t, err)
	// No set, no release date, unknown era: the documented normal-only default.
	assert.Equal(t, []domain.VariantKind{domain.VariantNormal}, dv.Display)
}

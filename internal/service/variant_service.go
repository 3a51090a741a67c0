// Package service exposes the engine to callers: variant display/preview
// and price normalization, coordinating stores, caches, the rules provider,
// and the pure engine components.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
	"github.com/buenedata/lumidex-v2-sub002/internal/engine"
	"github.com/buenedata/lumidex-v2-sub002/internal/rules"
)

// VariantService answers "which variants does this card have" by running the
// classifier and the override merger over freshly loaded inputs.
type VariantService struct {
	cards       domain.CardStore
	sets        domain.SetStore
	customs     domain.CustomVariantStore
	customCache domain.CustomVariantCache
	rules       *rules.Provider
	classifier  *engine.Classifier
	logger      *slog.Logger
}

// NewVariantService creates a VariantService. customCache may be nil.
func NewVariantService(
	cards domain.CardStore,
	sets domain.SetStore,
	customs domain.CustomVariantStore,
	customCache domain.CustomVariantCache,
	rulesProvider *rules.Provider,
	classifier *engine.Classifier,
	logger *slog.Logger,
) *VariantService {
	return &VariantService{
		cards:       cards,
		sets:        sets,
		customs:     customs,
		customCache: customCache,
		rules:       rulesProvider,
		classifier:  classifier,
		logger:      logger.With(slog.String("component", "variant_service")),
	}
}

// GetDisplayVariants classifies the card, applies active administrator
// overrides, and returns the final displayable variant set.
func (s *VariantService) GetDisplayVariants(ctx context.Context, cardID string) (domain.DisplayVariants, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return domain.DisplayVariants{}, fmt.Errorf("variant_service: get card %q: %w", cardID, err)
	}

	set, err := s.sets.GetByID(ctx, card.SetID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.DisplayVariants{}, fmt.Errorf("variant_service: get set %q: %w", card.SetID, err)
		}
		// A card referencing a missing set still classifies; the era falls
		// back to the card's own release date.
		s.logger.WarnContext(ctx, "set not found, classifying from card data alone",
			slog.String("card_id", cardID),
			slog.String("set_id", card.SetID),
		)
		set = domain.SetInfo{ID: card.SetID}
	}

	classification := s.classifier.Classify(ctx, engine.ClassifyInput{
		Card:   card,
		Set:    set,
		Tables: s.rules.Snapshot(ctx),
	})

	customs, err := s.activeCustoms(ctx, cardID)
	if err != nil {
		return domain.DisplayVariants{}, fmt.Errorf("variant_service: list custom variants for %q: %w", cardID, err)
	}

	merged := engine.Merge(classification.Flags, customs)

	return domain.DisplayVariants{
		CardID:       cardID,
		Display:      merged.Display,
		Hidden:       merged.Hidden,
		Custom:       merged.Custom,
		Explanations: classification.Explanations,
	}, nil
}

// PreviewVariants is the administrator "what will this look like" view. It
// is the identical pipeline as GetDisplayVariants by construction, never a
// separate code path, so preview and live display agree bit for bit.
func (s *VariantService) PreviewVariants(ctx context.Context, cardID string) (domain.DisplayVariants, error) {
	return s.GetDisplayVariants(ctx, cardID)
}

// activeCustoms returns the active custom variants for the card, consulting
// the cache first. Cache failures fall through to the store.
func (s *VariantService) activeCustoms(ctx context.Context, cardID string) ([]domain.CustomVariant, error) {
	if s.customCache != nil {
		variants, err := s.customCache.GetByCard(ctx, cardID)
		if err == nil {
			return variants, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "custom variant cache read failed",
				slog.String("card_id", cardID),
				slog.String("error", err.Error()),
			)
		}
	}

	variants, err := s.customs.ListActiveByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if s.customCache != nil {
		if err := s.customCache.SetByCard(ctx, cardID, variants); err != nil {
			s.logger.WarnContext(ctx, "custom variant cache write failed",
				slog.String("card_id", cardID),
				slog.String("error", err.Error()),
			)
		}
	}
	return variants, nil
}

// SaveCustomVariant creates or updates an administrator custom variant and
// invalidates the card's cache entry so the next display read sees it.
func (s *VariantService) SaveCustomVariant(ctx context.Context, v domain.CustomVariant, isNew bool) error {
	if v.ReplacesStandardVariant != nil && !domain.IsStandardVariant(*v.ReplacesStandardVariant) {
		return fmt.Errorf("variant_service: %w: replaces unknown kind %q",
			domain.ErrInvalidRule, *v.ReplacesStandardVariant)
	}

	var err error
	if isNew {
		err = s.customs.Create(ctx, v)
	} else {
		err = s.customs.Update(ctx, v)
	}
	if err != nil {
		return fmt.Errorf("variant_service: save custom variant %s: %w", v.ID, err)
	}

	s.invalidateCustoms(ctx, v.CardID)
	return nil
}

// DeactivateCustomVariant soft-disables a custom variant. Rows are never
// deleted so historical linkage stays intact.
func (s *VariantService) DeactivateCustomVariant(ctx context.Context, id, cardID string) error {
	if err := s.customs.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("variant_service: deactivate custom variant %s: %w", id, err)
	}
	s.invalidateCustoms(ctx, cardID)
	return nil
}

func (s *VariantService) invalidateCustoms(ctx context.Context, cardID string) {
	if s.customCache == nil {
		return
	}
	if err := s.customCache.Invalidate(ctx, cardID); err != nil {
		s.logger.WarnContext(ctx, "custom variant cache invalidate failed",
			slog.String("card_id", cardID),
			slog.String("error", err.Error()),
		)
	}
}

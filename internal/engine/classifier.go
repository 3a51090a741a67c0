// Package engine implements the variant determination and price
// normalization core: the variant classifier, the override merger, the
// tiered exchange-rate resolver, and the price normalizer. Everything in
// this package is a synchronous function over its inputs; the only I/O is
// the rate store behind the resolver.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
	"github.com/buenedata/lumidex-v2-sub002/internal/rules"
)

// signalKinds maps the variant price-bucket keys seen on price-source
// payloads to standard variant kinds. Keys are matched case-insensitively.
var signalKinds = map[string]domain.VariantKind{
	"normal":             domain.VariantNormal,
	"holofoil":           domain.VariantHolo,
	"reverseholofoil":    domain.VariantReverseHoloStandard,
	"1steditionnormal":   domain.VariantFirstEdition,
	"1steditionholofoil": domain.VariantFirstEdition,
}

// Classifier decides which physical print variants exist for a card by
// reconciling card exceptions, observed price-source signals, and the
// rarity/era rule tables, in that precedence order.
type Classifier struct {
	logger *slog.Logger
}

// NewClassifier creates a Classifier.
func NewClassifier(logger *slog.Logger) *Classifier {
	return &Classifier{
		logger: logger.With(slog.String("component", "classifier")),
	}
}

// ClassifyInput bundles a card with its set and an already-loaded rule set.
type ClassifyInput struct {
	Card   domain.Card
	Set    domain.SetInfo
	Tables *rules.RuleSet
}

// Classify produces a VariantFlag per variant kind the rules touched, with
// provenance and confidence, plus a human-readable explanation per decision.
// It never fails: unknown eras and rarities resolve to a normal-only default
// policy and are logged as configuration gaps.
func (c *Classifier) Classify(ctx context.Context, in ClassifyInput) domain.Classification {
	decided := make(map[domain.VariantKind]domain.VariantFlag, len(domain.StandardVariantKinds))
	var explanations []string

	decide := func(kind domain.VariantKind, flag domain.VariantFlag, why string) {
		if _, done := decided[kind]; done {
			return
		}
		decided[kind] = flag
		explanations = append(explanations, why)
	}

	// 1. Card exception: highest precedence, short-circuits the kinds it
	// names; unspecified kinds fall through.
	if exc := in.Tables.Exception(in.Card.SetID, in.Card.Number); exc != nil {
		for _, kind := range domain.StandardVariantKinds {
			exists, ok := exc.Variants[kind]
			if !ok {
				continue
			}
			decide(kind, domain.VariantFlag{
				Kind:       kind,
				Exists:     exists,
				Source:     domain.SourceOverride,
				Confidence: domain.ConfidenceHigh,
			}, fmt.Sprintf("%s: exists=%t from card exception (%s %s)", kind, exists, in.Card.SetID, in.Card.Number))
		}
	}

	// 2. Price-source variant keys: observed listings are the strongest
	// non-exception evidence.
	for _, raw := range in.Card.RawSignals {
		kind, ok := signalKinds[strings.ToLower(strings.TrimSpace(raw))]
		if !ok {
			continue
		}
		decide(kind, domain.VariantFlag{
			Kind:       kind,
			Exists:     true,
			Source:     domain.SourceAPISignal,
			Confidence: domain.ConfidenceHigh,
		}, fmt.Sprintf("%s: exists=true from price-source key %q", kind, raw))
	}

	// 3. Rarity mapping for (rarity, era), qualified by the set policy.
	era := c.resolveEra(ctx, in)
	policy, hasPolicy := in.Tables.Policy(in.Card.SetID)
	if !hasPolicy {
		policy = domain.SetPolicy{SetID: in.Card.SetID, Era: era}
	}

	mapping, hasMapping := in.Tables.Mapping(in.Card.Rarity, era)
	if hasMapping {
		for _, kind := range mapping.Forced {
			decide(kind, domain.VariantFlag{
				Kind:       kind,
				Exists:     true,
				Source:     domain.SourceRule,
				Confidence: domain.ConfidenceHigh,
			}, fmt.Sprintf("%s: exists=true forced by rarity mapping (%s, %s)", kind, in.Card.Rarity, era))
		}
		for _, kind := range mapping.Excluded {
			decide(kind, domain.VariantFlag{
				Kind:   kind,
				Exists: false,
				Source: domain.SourceRule,
			}, fmt.Sprintf("%s: exists=false excluded by rarity mapping (%s, %s)", kind, in.Card.Rarity, era))
		}
		for _, kind := range mapping.Allowed {
			if !policy.AllowsKind(kind, in.Card.Rarity) {
				continue
			}
			decide(kind, domain.VariantFlag{
				Kind:       kind,
				Exists:     true,
				Source:     domain.SourceRule,
				Confidence: domain.ConfidenceMedium,
			}, fmt.Sprintf("%s: exists=true allowed by rarity mapping (%s, %s) and set policy", kind, in.Card.Rarity, era))
		}
	} else {
		// Unknown rarity or era: documented default, normal-only at medium
		// confidence. Never fatal.
		c.logger.WarnContext(ctx, "no rarity mapping, using default policy",
			slog.String("card_id", in.Card.ID),
			slog.String("rarity", in.Card.Rarity),
			slog.String("era", string(era)),
		)
		decide(domain.VariantNormal, domain.VariantFlag{
			Kind:       domain.VariantNormal,
			Exists:     true,
			Source:     domain.SourceRule,
			Confidence: domain.ConfidenceMedium,
		}, fmt.Sprintf("normal: exists=true by default policy (no mapping for rarity %q, era %q)", in.Card.Rarity, era))
	}

	// 4. Untouched kinds default to exists=false, expressed by absence.
	flags := make([]domain.VariantFlag, 0, len(decided))
	for _, kind := range domain.StandardVariantKinds {
		if flag, ok := decided[kind]; ok {
			flags = append(flags, flag)
		}
	}

	return domain.Classification{Flags: flags, Explanations: explanations}
}

// resolveEra picks the era for classification: an explicit set-policy era
// wins, then the set release date, then the card release date.
func (c *Classifier) resolveEra(ctx context.Context, in ClassifyInput) domain.Era {
	if policy, ok := in.Tables.Policy(in.Card.SetID); ok && policy.Era != "" {
		return policy.Era
	}

	releaseDate := in.Set.ReleaseDate
	if releaseDate.IsZero() {
		releaseDate = in.Card.ReleaseDate
	}

	era := in.Tables.EraForDate(releaseDate)
	if era == domain.EraUnknown {
		c.logger.WarnContext(ctx, "release date matches no era, using unknown era",
			slog.String("card_id", in.Card.ID),
			slog.String("set_id", in.Card.SetID),
		)
	}
	return era
}

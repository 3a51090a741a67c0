package engine

import (
	"context"
	"log/slog"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

// scanFields lists the numeric fields the cheapest-value search visits, in
// priority order. High is display-only data and never competes for cheapest.
var scanFields = []struct {
	Type domain.PriceType
	Get  func(domain.PriceRecord) *float64
}{
	{domain.PriceTypeLow, func(r domain.PriceRecord) *float64 { return r.Low }},
	{domain.PriceTypeMid, func(r domain.PriceRecord) *float64 { return r.Mid }},
	{domain.PriceTypeMarket, func(r domain.PriceRecord) *float64 { return r.Market }},
	{domain.PriceTypeDirectLow, func(r domain.PriceRecord) *float64 { return r.DirectLow }},
}

// Normalizer reduces a card's raw per-variant price records to a single
// cheapest price in the caller's target currency, plus primary per-variant
// display data.
type Normalizer struct {
	resolver *Resolver
	logger   *slog.Logger
}

// NewNormalizer creates a Normalizer over the given rate resolver.
func NewNormalizer(resolver *Resolver, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		resolver: resolver,
		logger:   logger.With(slog.String("component", "normalizer")),
	}
}

// Normalize scans every record for the card and selects the minimum positive
// value across all sources; preferredSource never restricts the search, it
// only picks which source populates the per-variant display data when both
// sources cover a variant. A stored value of exactly 0 is a data-entry
// placeholder and is treated as missing. When two fields tie numerically the
// first hit wins, with records visited in input order and fields in priority
// order (low, mid, market, direct-low), so the result is deterministic.
//
// A card with no usable records yields Cheapest==nil, not an error.
func (n *Normalizer) Normalize(ctx context.Context, cardID string, records []domain.PriceRecord, target domain.Currency, preferred domain.PriceSource) domain.NormalizedPrice {
	out := domain.NormalizedPrice{
		CardID:     cardID,
		PerVariant: n.perVariant(records, preferred),
	}

	var best *domain.CheapestPrice
	for _, rec := range records {
		for _, field := range scanFields {
			v := field.Get(rec)
			if v == nil || *v <= 0 {
				continue
			}
			if best != nil && *v >= best.RawAmount {
				continue
			}
			best = &domain.CheapestPrice{
				Amount:      *v,
				Currency:    rec.Currency,
				Source:      rec.Source,
				Variant:     rec.Variant,
				PriceType:   field.Type,
				RawAmount:   *v,
				RawCurrency: rec.Currency,
			}
		}
	}
	if best == nil {
		return out
	}

	if best.RawCurrency != target {
		// Price display must never hard-fail on conversion; approximate
		// rates are acceptable here and surfaced to the caller.
		conv := n.resolver.Convert(ctx, best.RawAmount, best.RawCurrency, target, ResolveOptions{
			AllowApproximate: true,
			UseCache:         true,
		})
		out.Conversion = &domain.ConversionMeta{
			Converted:     !conv.Unconverted(),
			Rate:          conv.Rate,
			IsApproximate: conv.IsApproximate,
			FallbackTier:  conv.FallbackTier,
			Err:           conv.Err,
		}
		if conv.Unconverted() {
			n.logger.WarnContext(ctx, "cheapest price left unconverted",
				slog.String("card_id", cardID),
				slog.String("from", string(best.RawCurrency)),
				slog.String("to", string(target)),
				slog.String("error", conv.Err),
			)
		} else {
			best.Amount = conv.ConvertedAmount
			best.Currency = conv.To
		}
	}

	out.Cheapest = best
	return out
}

// perVariant builds the primary display data per variant. The preferred
// source wins when both sources have a record for a variant; otherwise the
// other source fills in.
func (n *Normalizer) perVariant(records []domain.PriceRecord, preferred domain.PriceSource) map[domain.VariantKind]domain.VariantPrices {
	out := make(map[domain.VariantKind]domain.VariantPrices, len(records))
	for _, rec := range records {
		existing, ok := out[rec.Variant]
		if ok && (existing.Source == preferred || rec.Source != preferred) {
			continue
		}
		out[rec.Variant] = domain.VariantPrices{
			Variant:   rec.Variant,
			Source:    rec.Source,
			Currency:  rec.Currency,
			Low:       rec.Low,
			Mid:       rec.Mid,
			High:      rec.High,
			Market:    rec.Market,
			DirectLow: rec.DirectLow,
		}
	}
	return out
}

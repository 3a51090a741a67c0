package domain

import "time"

// PriceSource identifies one of the two external price markets.
type PriceSource string

const (
	SourceTCGPlayer  PriceSource = "tcgplayer"
	SourceCardmarket PriceSource = "cardmarket"
)

// ValidPriceSource reports whether s is a recognised price source.
func ValidPriceSource(s PriceSource) bool {
	return s == SourceTCGPlayer || s == SourceCardmarket
}

// PriceType names which numeric field of a PriceRecord produced a value.
type PriceType string

const (
	PriceTypeLow       PriceType = "low"
	PriceTypeMid       PriceType = "mid"
	PriceTypeHigh      PriceType = "high"
	PriceTypeMarket    PriceType = "market"
	PriceTypeDirectLow PriceType = "direct_low"
)

// PriceRecord is one price observation for a card variant from one source.
// All numeric fields are nullable; by business rule a stored value of
// exactly 0 is treated as missing, never as a genuine free price.
type PriceRecord struct {
	CardID    string
	Source    PriceSource
	Variant   VariantKind
	Currency  Currency
	Low       *float64
	Mid       *float64
	High      *float64
	Market    *float64
	DirectLow *float64
	UpdatedAt time.Time
}

// CheapestPrice is the single best price found for a card, already converted
// to the caller's target currency when a rate was available.
type CheapestPrice struct {
	Amount    float64
	Currency  Currency
	Source    PriceSource
	Variant   VariantKind
	PriceType PriceType
	// RawAmount and RawCurrency preserve the winning record's value before
	// conversion. When conversion was unavailable Amount==RawAmount and
	// Currency==RawCurrency.
	RawAmount   float64
	RawCurrency Currency
}

// VariantPrices is the primary per-variant display data, populated from the
// preferred source when it has data for the variant.
type VariantPrices struct {
	Variant   VariantKind
	Source    PriceSource
	Currency  Currency
	Low       *float64
	Mid       *float64
	High      *float64
	Market    *float64
	DirectLow *float64
}

// ConversionMeta surfaces how the cheapest price was (or was not) converted
// so callers can annotate approximate or unconverted values.
type ConversionMeta struct {
	Converted     bool
	Rate          float64
	IsApproximate bool
	FallbackTier  FallbackTier
	// Err is the conversion failure description when Converted is false and
	// the original amount was kept. Empty otherwise.
	Err string
}

// NormalizedPrice is the full price normalization result for one card.
// Cheapest is nil when the card has no usable price records.
type NormalizedPrice struct {
	CardID     string
	Cheapest   *CheapestPrice
	PerVariant map[VariantKind]VariantPrices
	Conversion *ConversionMeta
}

package domain

import "time"

// Currency is an ISO-4217 style currency code. The accepted set is a small
// closed enumeration; callers validate codes before they reach the engine.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyNOK Currency = "NOK"
	CurrencySEK Currency = "SEK"
	CurrencyDKK Currency = "DKK"
	CurrencyJPY Currency = "JPY"
)

// Currencies lists every accepted currency code.
var Currencies = []Currency{
	CurrencyEUR, CurrencyUSD, CurrencyGBP,
	CurrencyNOK, CurrencySEK, CurrencyDKK, CurrencyJPY,
}

// ValidCurrency reports whether c is one of the accepted codes.
func ValidCurrency(c Currency) bool {
	for _, cur := range Currencies {
		if cur == c {
			return true
		}
	}
	return false
}

// ExchangeRate is one observed conversion rate between two currencies.
// A→B and B→A are independent rows; either may be missing, and only the
// most recent row per pair is authoritative for current conversions.
type ExchangeRate struct {
	From       Currency
	To         Currency
	Rate       float64
	ObservedAt time.Time
}

// FallbackTier names the exchange-rate resolution step that produced a rate,
// ordered by trustworthiness. Identity and direct lookups carry no fallback
// marker.
type FallbackTier string

const (
	FallbackNone        FallbackTier = ""
	FallbackInverse     FallbackTier = "inverse"
	FallbackCross       FallbackTier = "cross"
	FallbackApproximate FallbackTier = "approximate"
)

// ConversionResult is the outcome of converting a single amount between
// currencies. When no tier produced a rate the original amount is carried
// unchanged with To==From and Err describing the failure; conversion is
// abandoned, never zeroed.
type ConversionResult struct {
	OriginalAmount  float64
	ConvertedAmount float64
	From            Currency
	To              Currency
	Rate            float64
	IsApproximate   bool
	FallbackTier    FallbackTier
	Err             string
}

// Unconverted reports whether the conversion was abandoned and the original
// amount carried through.
func (r ConversionResult) Unconverted() bool {
	return r.Err != ""
}

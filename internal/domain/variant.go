package domain

// VariantKind identifies a physical print style of a card.
type VariantKind string

const (
	VariantNormal                VariantKind = "normal"
	VariantHolo                  VariantKind = "holo"
	VariantReverseHoloStandard   VariantKind = "reverse_holo_standard"
	VariantReverseHoloPokeball   VariantKind = "reverse_holo_pokeball"
	VariantReverseHoloMasterball VariantKind = "reverse_holo_masterball"
	VariantFirstEdition          VariantKind = "first_edition"
)

// StandardVariantKinds lists every standard kind in canonical display order.
// All variant iteration in the engine follows this order so results are
// stable across calls.
var StandardVariantKinds = []VariantKind{
	VariantNormal,
	VariantHolo,
	VariantReverseHoloStandard,
	VariantReverseHoloPokeball,
	VariantReverseHoloMasterball,
	VariantFirstEdition,
}

// IsStandardVariant reports whether kind is one of the standard print styles.
func IsStandardVariant(kind VariantKind) bool {
	for _, k := range StandardVariantKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// VariantSource records where a variant existence decision came from.
type VariantSource string

const (
	SourceAPISignal VariantSource = "api_signal"
	SourceRule      VariantSource = "rule"
	SourceOverride  VariantSource = "override"
)

// Confidence is the qualitative trust level of a variant determination.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// VariantFlag is the atomic classification result for one variant kind.
// A kind with no flag is equivalent to Exists=false.
type VariantFlag struct {
	Kind       VariantKind
	Exists     bool
	Source     VariantSource
	Confidence Confidence
}

// Classification is the output of the variant classifier: one flag per kind
// the rules touched, plus a human-readable audit trail. Explanations are
// returned to callers verbatim and never interpreted downstream.
type Classification struct {
	Flags        []VariantFlag
	Explanations []string
}

// DisplayVariants is the final merged variant view for a card: the standard
// kinds to show, the standard kinds hidden by overrides, the administrator
// custom variants, and the classifier's audit trail.
type DisplayVariants struct {
	CardID       string
	Display      []VariantKind
	Hidden       []VariantKind
	Custom       []CustomVariant
	Explanations []string
}

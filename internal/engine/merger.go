package engine

import (
	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

// MergeResult is the final displayable variant set after administrator
// overrides are applied to classifier output.
type MergeResult struct {
	Display []domain.VariantKind
	Hidden  []domain.VariantKind
	Custom  []domain.CustomVariant
}

// Merge applies active custom variants to the standard classifier output.
// Custom variants with a replacement target remove the referenced standard
// kind from the display list and record it in Hidden; every active custom
// variant is always appended to Custom regardless of whether it replaces
// anything. Replacement is additive-display, subtractive-standard-only:
// several customs may target the same kind and all of them still display.
//
// Merge is pure and order-stable: identical inputs always produce identical
// output. Live display and administrator preview both call it, and the two
// must agree bit for bit.
func Merge(standard []domain.VariantFlag, customs []domain.CustomVariant) MergeResult {
	display := make([]domain.VariantKind, 0, len(standard))
	for _, flag := range standard {
		if flag.Exists {
			display = append(display, flag.Kind)
		}
	}

	res := MergeResult{
		Display: display,
		Hidden:  []domain.VariantKind{},
		Custom:  []domain.CustomVariant{},
	}

	hiddenSet := make(map[domain.VariantKind]bool)
	for _, cv := range customs {
		if !cv.IsActive {
			continue
		}
		res.Custom = append(res.Custom, cv)

		if cv.ReplacesStandardVariant == nil {
			continue
		}
		target := *cv.ReplacesStandardVariant
		res.Display = removeKind(res.Display, target)
		if !hiddenSet[target] {
			hiddenSet[target] = true
			res.Hidden = append(res.Hidden, target)
		}
	}

	return res
}

func removeKind(kinds []domain.VariantKind, target domain.VariantKind) []domain.VariantKind {
	out := kinds[:0]
	for _, k := range kinds {
		if k != target {
			out = append(out, k)
		}
	}
	return out
}

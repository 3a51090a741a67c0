package domain

import (
	"time"

	"github.com/google/uuid"
)

// CustomVariant is an administrator-authored variant definition. Custom
// variants are never deleted; deactivation flips IsActive so historical
// linkage stays intact.
type CustomVariant struct {
	ID          uuid.UUID
	CardID      string
	Name        string // machine name, unique per card
	Family      string // variant family tag, e.g. "promo_stamp"
	DisplayName string
	Description string
	// SourceProduct is free text naming the product the variant came from
	// (e.g. a specific boxed set). May be empty.
	SourceProduct string
	// Prices holds administrator-entered prices per currency. May be empty.
	Prices map[Currency]float64
	// ReplacesStandardVariant, when set, hides the referenced standard kind
	// from the display list. Nil means the custom variant is purely additive.
	ReplacesStandardVariant *VariantKind
	IsActive                bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

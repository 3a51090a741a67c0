// Package domain defines the core types of the variant determination and
// price normalization engine, together with the store and cache interfaces
// the engine depends on. It contains no I/O of its own.
package domain

import "time"

// Card is the descriptive record for a single trading card as read from the
// catalogue store.
type Card struct {
	ID          string
	SetID       string
	Number      string
	Name        string
	Rarity      string
	ReleaseDate time.Time
	// RawSignals carries the variant price-bucket keys observed on the
	// card's price-source payloads (e.g. "holofoil", "reverseHolofoil").
	// Presence of a key means real-world listings exist for that variant.
	RawSignals []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SetInfo is the catalogue record for a card set.
type SetInfo struct {
	ID          string
	Name        string
	Series      string
	ReleaseDate time.Time
	Total       int
}

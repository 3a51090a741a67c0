package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrUnknownCurrency  = errors.New("unknown currency code")
	ErrUnknownSource    = errors.New("unknown price source")
	ErrRateUnavailable  = errors.New("exchange rate unavailable")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidRule      = errors.New("invalid rule definition")
)

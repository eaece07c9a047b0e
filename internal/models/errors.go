package models

import "errors"

// Sentinel errors shared across the engine. Analyzers never throw past
// their public boundary — these are returned only by components whose
// contract explicitly allows abort (the orchestrator, the trade log, the
// external candle and option-chain sources).
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrExternalUnavailable = errors.New("external dependency unavailable")
	ErrConfiguration       = errors.New("configuration error")
	ErrInvariantViolation  = errors.New("invariant violation")

	ErrUnknownTrade      = errors.New("unknown trade id")
	ErrImmutableField    = errors.New("field is not mutable after creation")
	ErrStrikesNotSorted  = errors.New("option chain strikes are not sorted ascending")
	ErrDuplicateStrike   = errors.New("duplicate strike in option chain snapshot")
	ErrNegativeQuantity  = errors.New("negative quantity")
)

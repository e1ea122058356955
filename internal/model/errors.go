package model

import "errors"

// Every failure in the engine is scoped to a single auction; none of
// these are fatal to the process.
var (
	ErrValidation           = errors.New("validation failed")
	ErrFormula              = errors.New("malformed objective formula")
	ErrDivisionByZero       = errors.New("division by zero in objective formula")
	ErrUnavailable          = errors.New("worker unavailable")
	ErrInsufficientCapacity = errors.New("insufficient capacity for placement")
	ErrNoFeasibleOffer      = errors.New("no feasible offer")
	ErrExhausted            = errors.New("auction exhausted its round budget")
)

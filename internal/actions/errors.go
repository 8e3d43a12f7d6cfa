package actions

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of every client-side precondition failure. The
// views disable the triggering control, so these only surface when a caller
// bypasses the controls.
var ErrValidation = errors.New("action rejected")

var (
	ErrActionInFlight    = fmt.Errorf("%w: an action is already in flight for this product", ErrValidation)
	ErrEmptySelection    = fmt.Errorf("%w: merge requires at least one selected candidate", ErrValidation)
	ErrSelectionNotEmpty = fmt.Errorf("%w: confirm singleton requires an empty selection", ErrValidation)
	ErrUnknownKind       = fmt.Errorf("%w: unknown action kind", ErrValidation)
	ErrInvalidTarget     = fmt.Errorf("%w: product id required", ErrValidation)
)

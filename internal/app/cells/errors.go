// internal/app/cells/errors.go
package cells

import (
	"errors"
	"fmt"

	"github.com/dalemusser/teamspace/internal/app/store/storeerr"
)

// Cell-boundary error taxonomy. Every command catches collaborator
// failures at its own boundary, stores a human-readable message in the
// cell's Error field, and returns one of these to the caller. Nothing is
// retried automatically and no error crosses a cell boundary as a panic.
var (
	// ErrAuthRequired is returned when a command needs an authenticated
	// identity and none is present. Detected locally, before any
	// repository call.
	ErrAuthRequired = errors.New("sign in required")

	// ErrNotFound is returned when a load of a specific id comes back
	// empty. It is the stores' shared sentinel so errors.Is works across
	// the cell boundary.
	ErrNotFound = storeerr.ErrNotFound
)

// ValidationError is a locally detected business-rule rejection, such as
// attempting workspace creation from a team or partner context. It never
// involves a repository round-trip.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// validationf builds a ValidationError; kept tiny so call sites read like
// fmt.Errorf.
func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

package kinematics

import (
	"fmt"

	"github.com/pkg/errors"
)

// The error kinds a solve can return. The position and orientation kinds
// mean the requested pose is unreachable and are not retryable without
// changing the input. The conversion and angle kinds indicate an
// arithmetic or configuration bug and should be treated as fatal.
var (
	ErrInvalidTargetPosition    = errors.New("target position is not possible")
	ErrInvalidTargetOrientation = errors.New("target orientation is not possible")
	ErrFloatConversion          = errors.New("value cannot be represented as a float64")
	ErrInvalidAngle             = errors.New("computed servo angle is not a real number")
)

// LegError identifies which leg a solve failed on. It wraps the
// underlying kind, so errors.Is still matches the sentinels above.
type LegError struct {
	Leg int
	Err error
}

func (e *LegError) Error() string {
	return fmt.Sprintf("leg %d: %v", e.Leg, e.Err)
}

func (e *LegError) Unwrap() error {
	return e.Err
}

func newLegError(leg int, err error) error {
	return &LegError{Leg: leg, Err: err}
}

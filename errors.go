package gobamm

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every lowering stage.
var (
	// ErrDomain reports a missing, unknown, duplicated or out-of-order domain.
	ErrDomain = errors.New("gobamm: domain error")

	// ErrTypeUnsupported reports an operand that is neither a Symbol nor a number.
	ErrTypeUnsupported = errors.New("gobamm: unsupported operand type")

	// ErrEvaluation reports evaluation of an unresolved tree or of mismatched shapes.
	ErrEvaluation = errors.New("gobamm: evaluation error")

	// ErrMissingParameter reports a parameter name absent from the parameter table.
	ErrMissingParameter = errors.New("gobamm: missing parameter")

	// ErrConfiguration reports an inconsistent mesh, model or discretisation setup.
	ErrConfiguration = errors.New("gobamm: configuration error")

	// ErrBackendUnavailable reports an integrator or assembly backend that is not installed.
	ErrBackendUnavailable = errors.New("gobamm: backend unavailable")
)

// MissingParameterError names the parameter that could not be resolved.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMissingParameter, e.Name)
}

func (e *MissingParameterError) Unwrap() error { return ErrMissingParameter }

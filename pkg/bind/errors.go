package bind

import (
	"errors"
	"fmt"

	"github.com/vango-dev/statebind/pkg/scope"
)

// ErrInvalidState is returned when a binding refers to a state container
// that fails the validity probe, such as a nil or disposed container.
var ErrInvalidState = errors.New("statebind: invalid state container")

// ErrUnsupportedBinding is returned when a binding value cannot be
// classified, such as a function with an unrecognized signature or a zero
// Wrapper.
var ErrUnsupportedBinding = errors.New("statebind: unsupported binding")

// ErrDuplicateBinding is returned when two entries share a name.
var ErrDuplicateBinding = errors.New("statebind: duplicate binding name")

// ErrEmptyName is returned when an entry has no name.
var ErrEmptyName = errors.New("statebind: binding name is empty")

// ErrScopeMisuse is returned when scope information is requested outside of
// a bound action.
var ErrScopeMisuse = scope.ErrMisuse

// BindingError describes a binding that failed validation in Connect.
type BindingError struct {
	Name string
	Kind Kind
	Err  error
}

// Error implements the error interface.
func (e *BindingError) Error() string {
	if e.Kind == KindUnknown {
		return fmt.Sprintf("statebind: binding %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("statebind: binding %q (%s): %v", e.Name, e.Kind, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *BindingError) Unwrap() error {
	return e.Err
}

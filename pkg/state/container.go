package state

import (
	"context"
	"errors"
	"reflect"
)

// ErrTypeMismatch is returned by Store when the value does not have the
// container's element type.
var ErrTypeMismatch = errors.New("statebind: state value type mismatch")

// Listener is called synchronously after every write to a container.
// ctx is the context that was passed to the write.
type Listener func(ctx context.Context)

// Container is the type-erased get/set/subscribe view of a state container.
type Container interface {
	// Load returns the current value.
	Load() any

	// Store replaces the current value and notifies subscribers.
	Store(ctx context.Context, value any) error

	// Subscribe registers fn and returns a function that removes it.
	// The returned function is safe to call more than once.
	Subscribe(fn Listener) (unsubscribe func())
}

// Validator is implemented by containers that can become unusable,
// for example after being disposed.
type Validator interface {
	Valid() bool
}

// Valid reports whether x is a usable state container: it must implement
// Container, must not be a nil pointer, and must not report itself invalid.
func Valid(x any) bool {
	c, ok := x.(Container)
	if !ok || c == nil {
		return false
	}
	rv := reflect.ValueOf(c)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Slice, reflect.Chan:
		if rv.IsNil() {
			return false
		}
	}
	if v, ok := c.(Validator); ok {
		return v.Valid()
	}
	return true
}

package bind

import (
	"fmt"

	"github.com/vango-dev/statebind/pkg/state"
)

// Kind tags the variant held by a Wrapper.
type Kind int

const (
	KindUnknown Kind = iota
	KindState
	KindLoadable
	KindModel
	KindAction
	KindLiteral
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindState:
		return "state"
	case KindLoadable:
		return "loadable"
	case KindModel:
		return "model"
	case KindAction:
		return "action"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Wrapper is an explicitly tagged binding value. The factories below build
// one; the zero Wrapper is unsupported.
type Wrapper struct {
	kind      Kind
	container state.Container

	hasDefault bool
	def        any

	literal any
	invoke  invoker

	err error
}

// State binds c as a one-way prop. Binding a container directly is
// equivalent.
func State(c state.Container) *Wrapper {
	return containerWrapper(KindState, c)
}

// Model binds c as a two-way prop: assignments from the component are
// written back to the container.
func Model(c state.Container) *Wrapper {
	return containerWrapper(KindModel, c)
}

// Loadable binds c as an async-aware prop.
//
// Without a default the prop is an async.Snapshot describing the held value.
// With a default the prop is the plain value: the default while loading, the
// settled value once resolved, and an error when rejected.
//
// Only the first default is used.
func Loadable(c state.Container, defaultValue ...any) *Wrapper {
	w := containerWrapper(KindLoadable, c)
	if len(defaultValue) > 0 {
		w.hasDefault = true
		w.def = defaultValue[0]
	}
	return w
}

// Literal binds v as a constant prop.
func Literal(v any) *Wrapper {
	return &Wrapper{kind: KindLiteral, literal: v}
}

// Method binds fn as an action. See Action for the accepted signatures.
func Method(fn any) *Wrapper {
	inv, ok := normalizeAction(fn)
	if !ok {
		return &Wrapper{kind: KindAction, err: fmt.Errorf("%w: function of type %T", ErrUnsupportedBinding, fn)}
	}
	return &Wrapper{kind: KindAction, invoke: inv}
}

func containerWrapper(kind Kind, c state.Container) *Wrapper {
	w := &Wrapper{kind: kind, container: c}
	if !state.Valid(c) {
		w.err = ErrInvalidState
	}
	return w
}

// Kind returns the variant tag.
func (w *Wrapper) Kind() Kind {
	if w == nil {
		return KindUnknown
	}
	return w.kind
}

// Container returns the wrapped container, or nil for literals and actions.
func (w *Wrapper) Container() state.Container {
	if w == nil {
		return nil
	}
	return w.container
}

// HasDefault reports whether a loadable was created with a default value.
func (w *Wrapper) HasDefault() bool {
	return w != nil && w.hasDefault
}

// Err returns the validation error recorded when the wrapper was built.
func (w *Wrapper) Err() error {
	switch {
	case w == nil:
		return ErrUnsupportedBinding
	case w.err != nil:
		return w.err
	case w.kind == KindUnknown:
		return ErrUnsupportedBinding
	}
	return nil
}

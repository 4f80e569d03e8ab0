package bind

import (
	"fmt"

	"github.com/vango-dev/statebind/pkg/async"
)

// Read derives the current value of the binding.
//
// State and model bindings return the container value and literals return
// themselves. Loadables follow the three-phase rules described on Loadable;
// the default variant returns a rejection as the original error, unwrapped.
func (w *Wrapper) Read() (any, error) {
	if err := w.Err(); err != nil {
		return nil, err
	}

	switch w.kind {
	case KindLiteral:
		return w.literal, nil
	case KindState, KindModel:
		return w.container.Load(), nil
	case KindLoadable:
		return w.readLoadable()
	}
	return nil, fmt.Errorf("%w: %s bindings have no value", ErrUnsupportedBinding, w.kind)
}

func (w *Wrapper) readLoadable() (any, error) {
	snap := snapshotOf(w.container.Load())
	if !w.hasDefault {
		return snap, nil
	}

	switch snap.State {
	case async.Loading:
		return w.def, nil
	case async.HasError:
		return nil, snap.Err
	default:
		return snap.Value, nil
	}
}

// Snapshot returns the three-phase descriptor of a loadable's held value.
// Non-loadable bindings report their value as HasValue.
func (w *Wrapper) Snapshot() async.Snapshot {
	if w.Kind() != KindLoadable || w.Err() != nil {
		v, err := w.Read()
		if err != nil {
			return async.Snapshot{State: async.HasError, Err: err}
		}
		return async.Snapshot{State: async.HasValue, Value: v}
	}
	return snapshotOf(w.container.Load())
}

// snapshotOf describes v: handles report their own phase and every other
// value counts as already resolved.
func snapshotOf(v any) async.Snapshot {
	if h := handleOf(v); h != nil {
		return h.Loadable()
	}
	return async.Snapshot{State: async.HasValue, Value: v}
}

func handleOf(v any) async.Handle {
	h, ok := v.(async.Handle)
	if !ok || isNil(h) {
		return nil
	}
	return h
}

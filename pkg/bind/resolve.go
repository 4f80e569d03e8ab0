package bind

import (
	"fmt"
	"reflect"

	"github.com/vango-dev/statebind/pkg/state"
)

// Entry is one named binding.
type Entry struct {
	Name  string
	Value any
}

// Entries is an ordered binding set. Order decides the order in which props
// are initialized and subscriptions are registered.
type Entries []Entry

// prop is a resolved binding that produces a component prop.
type prop struct {
	name      string
	kind      Kind
	container state.Container
	wrapper   *Wrapper
}

// read derives the current prop value.
func (p *prop) read() (any, error) {
	return p.wrapper.Read()
}

type action struct {
	name   string
	invoke invoker
}

// resolution is the output of classifying an Entries set.
type resolution struct {
	props   []*prop
	actions []action
	models  []*prop
}

// classify turns a raw binding value into a Wrapper.
//
// Order: an explicit *Wrapper, then a state.Container, then a function,
// then anything else as a literal.
func classify(v any) *Wrapper {
	switch x := v.(type) {
	case *Wrapper:
		if x == nil {
			return &Wrapper{}
		}
		return x
	case state.Container:
		return State(x)
	}
	if v != nil && reflect.TypeOf(v).Kind() == reflect.Func {
		return Method(v)
	}
	return Literal(v)
}

func resolve(entries Entries) (*resolution, error) {
	res := &resolution{}
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		if e.Name == "" {
			return nil, &BindingError{Err: ErrEmptyName}
		}
		if _, dup := seen[e.Name]; dup {
			return nil, &BindingError{Name: e.Name, Err: ErrDuplicateBinding}
		}
		seen[e.Name] = struct{}{}

		w := classify(e.Value)
		if err := w.Err(); err != nil {
			return nil, &BindingError{Name: e.Name, Kind: w.Kind(), Err: err}
		}

		switch w.kind {
		case KindAction:
			res.actions = append(res.actions, action{name: e.Name, invoke: w.invoke})
		case KindState, KindLoadable, KindModel, KindLiteral:
			p := &prop{name: e.Name, kind: w.kind, container: w.container, wrapper: w}
			res.props = append(res.props, p)
			if w.kind == KindModel {
				res.models = append(res.models, p)
			}
		default:
			return nil, &BindingError{Name: e.Name, Kind: w.kind, Err: fmt.Errorf("%w: kind %d", ErrUnsupportedBinding, w.kind)}
		}
	}

	return res, nil
}

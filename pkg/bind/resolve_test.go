package bind

import (
	"context"
	"errors"
	"testing"

	"github.com/vango-dev/statebind/pkg/async"
	"github.com/vango-dev/statebind/pkg/state"
)

func TestClassify(t *testing.T) {
	c := state.New(1)

	tests := []struct {
		name  string
		value any
		want  Kind
	}{
		{"container", c, KindState},
		{"state wrapper", State(c), KindState},
		{"model wrapper", Model(c), KindModel},
		{"loadable wrapper", Loadable(c), KindLoadable},
		{"literal wrapper", Literal("x"), KindLiteral},
		{"method wrapper", Method(func(context.Context) {}), KindAction},
		{"action", Action(func(context.Context, ...any) (any, error) { return nil, nil }), KindAction},
		{"unnamed action", func(context.Context, ...any) (any, error) { return nil, nil }, KindAction},
		{"async action", AsyncAction(func(context.Context, ...any) async.Handle { return nil }), KindAction},
		{"ctx error", func(context.Context) error { return nil }, KindAction},
		{"ctx only", func(context.Context) {}, KindAction},
		{"ctx handle", func(context.Context) async.Handle { return nil }, KindAction},
		{"ctx promise", func(context.Context) *async.Promise { return nil }, KindAction},
		{"int", 42, KindLiteral},
		{"string", "hello", KindLiteral},
		{"nil", nil, KindLiteral},
		{"map", map[string]int{"a": 1}, KindLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := classify(tt.value)
			if w.Err() != nil {
				t.Fatalf("unexpected error: %v", w.Err())
			}
			if w.Kind() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, w.Kind())
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	var nilValue *state.Value[int]
	disposed := state.New(0)
	disposed.Dispose()

	tests := []struct {
		name    string
		entries Entries
		want    error
	}{
		{"typed nil container", Entries{{Name: "c", Value: nilValue}}, ErrInvalidState},
		{"disposed container", Entries{{Name: "c", Value: disposed}}, ErrInvalidState},
		{"loadable over nil", Entries{{Name: "c", Value: Loadable(nil)}}, ErrInvalidState},
		{"model over disposed", Entries{{Name: "c", Value: Model(disposed)}}, ErrInvalidState},
		{"unsupported func", Entries{{Name: "f", Value: func(int) string { return "" }}}, ErrUnsupportedBinding},
		{"unsupported method", Entries{{Name: "f", Value: Method(42)}}, ErrUnsupportedBinding},
		{"nil func", Entries{{Name: "f", Value: Method((func())(nil))}}, ErrUnsupportedBinding},
		{"action without context", Entries{{Name: "f", Value: func() {}}}, ErrUnsupportedBinding},
		{"error action without context", Entries{{Name: "f", Value: func() error { return nil }}}, ErrUnsupportedBinding},
		{"method without context", Entries{{Name: "f", Value: Method(func() {})}}, ErrUnsupportedBinding},
		{"zero wrapper", Entries{{Name: "w", Value: &Wrapper{}}}, ErrUnsupportedBinding},
		{"nil wrapper", Entries{{Name: "w", Value: (*Wrapper)(nil)}}, ErrUnsupportedBinding},
		{"duplicate", Entries{{Name: "a", Value: 1}, {Name: "a", Value: 2}}, ErrDuplicateBinding},
		{"empty name", Entries{{Name: "", Value: 1}}, ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := Connect(tt.entries)
			if def != nil {
				t.Error("expected no definition on error")
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var be *BindingError
			if !errors.As(err, &be) {
				t.Fatalf("expected *BindingError, got %T", err)
			}
		})
	}
}

func TestBindingErrorMessage(t *testing.T) {
	_, err := Connect(Entries{{Name: "count", Value: Model(nil)}})

	var be *BindingError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BindingError, got %T", err)
	}
	if be.Name != "count" || be.Kind != KindModel {
		t.Errorf("unexpected error fields: %+v", be)
	}
	want := `statebind: binding "count" (model): statebind: invalid state container`
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestResolvePreservesOrder(t *testing.T) {
	a, b := state.New(1), state.New(2)
	res, err := resolve(Entries{
		{Name: "b", Value: b},
		{Name: "inc", Value: func(context.Context) {}},
		{Name: "a", Value: Model(a)},
		{Name: "title", Value: "hi"},
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	var names []string
	for _, p := range res.props {
		names = append(names, p.name)
	}
	want := []string{"b", "a", "title"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
	if len(res.actions) != 1 || res.actions[0].name != "inc" {
		t.Errorf("unexpected actions: %+v", res.actions)
	}
	if len(res.models) != 1 || res.models[0].name != "a" {
		t.Errorf("unexpected models: %+v", res.models)
	}
}

func TestLiteralIsNotReevaluated(t *testing.T) {
	calls := 0
	w := Literal(func() int { calls++; return calls })

	v1, _ := w.Read()
	v2, _ := w.Read()
	if calls != 0 {
		t.Errorf("literal function should never be called, got %d calls", calls)
	}
	if v1 == nil || v2 == nil {
		t.Error("expected literal to return the function value")
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindUnknown:  "unknown",
		KindState:    "state",
		KindLoadable: "loadable",
		KindModel:    "model",
		KindAction:   "action",
		KindLiteral:  "literal",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

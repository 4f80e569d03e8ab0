package state

import (
	"context"
	"errors"
	"testing"
)

func TestValueGetSet(t *testing.T) {
	ctx := context.Background()
	v := New(0)

	if v.Get() != 0 {
		t.Errorf("expected initial 0, got %d", v.Get())
	}

	v.Set(ctx, 5)
	if v.Get() != 5 {
		t.Errorf("expected 5, got %d", v.Get())
	}

	v.Update(ctx, func(n int) int { return n + 1 })
	if v.Get() != 6 {
		t.Errorf("expected 6 after Update, got %d", v.Get())
	}
}

func TestValueNotifiesOncePerSet(t *testing.T) {
	ctx := context.Background()
	v := New(0)

	calls := 0
	v.Subscribe(func(context.Context) { calls++ })

	v.Set(ctx, 1)
	v.Set(ctx, 1) // same value still notifies without an equality function
	v.Set(ctx, 2)

	if calls != 3 {
		t.Errorf("expected 3 notifications, got %d", calls)
	}
}

func TestValueNotifiesInRegistrationOrder(t *testing.T) {
	ctx := context.Background()
	v := New("a")

	var order []int
	v.Subscribe(func(context.Context) { order = append(order, 1) })
	unsub := v.Subscribe(func(context.Context) { order = append(order, 2) })
	v.Subscribe(func(context.Context) { order = append(order, 3) })
	v.Subscribe(func(context.Context) { order = append(order, 4) })

	unsub()
	v.Set(ctx, "b")

	want := []int{1, 3, 4}
	if len(order) != len(want) {
		t.Fatalf("expected order %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("expected order %v, got %v", want, order)
			break
		}
	}
}

func TestValuePassesContextToListeners(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "marker")
	v := New(0)

	var got any
	v.Subscribe(func(ctx context.Context) { got = ctx.Value(key{}) })
	v.Set(ctx, 1)

	if got != "marker" {
		t.Errorf("expected listener to see the writer's context, got %v", got)
	}
}

func TestValueWithEqualsSkipsUnchanged(t *testing.T) {
	ctx := context.Background()
	v := New(1).WithEquals(func(a, b int) bool { return a == b })

	calls := 0
	v.Subscribe(func(context.Context) { calls++ })

	v.Set(ctx, 1)
	v.Update(ctx, func(n int) int { return n })
	if calls != 0 {
		t.Errorf("expected no notification for equal writes, got %d", calls)
	}

	v.Set(ctx, 2)
	if calls != 1 {
		t.Errorf("expected 1 notification, got %d", calls)
	}
}

func TestValueUnsubscribeIdempotent(t *testing.T) {
	v := New(0)
	unsub := v.Subscribe(func(context.Context) {})
	v.Subscribe(func(context.Context) {})

	unsub()
	unsub()

	if v.Subscribers() != 1 {
		t.Errorf("expected 1 subscriber, got %d", v.Subscribers())
	}
}

func TestValueStore(t *testing.T) {
	ctx := context.Background()
	v := New(0)

	if err := v.Store(ctx, 7); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if v.Load() != 7 {
		t.Errorf("expected 7, got %v", v.Load())
	}

	err := v.Store(ctx, "seven")
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
	if v.Get() != 7 {
		t.Errorf("failed Store must not write, got %d", v.Get())
	}

	if err := v.Store(ctx, nil); err != nil {
		t.Fatalf("Store(nil) error = %v", err)
	}
	if v.Get() != 0 {
		t.Errorf("Store(nil) should write the zero value, got %d", v.Get())
	}
}

func TestValid(t *testing.T) {
	var nilValue *Value[int]
	disposed := New(0)
	disposed.Dispose()

	tests := []struct {
		name string
		x    any
		want bool
	}{
		{"value", New(0), true},
		{"nil interface", nil, false},
		{"typed nil", nilValue, false},
		{"disposed", disposed, false},
		{"not a container", 42, false},
		{"func", func() {}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.x); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisposeDropsSubscribers(t *testing.T) {
	ctx := context.Background()
	v := New(0)
	calls := 0
	v.Subscribe(func(context.Context) { calls++ })

	v.Dispose()
	v.Set(ctx, 1)

	if calls != 0 {
		t.Errorf("disposed value should not notify, got %d calls", calls)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"different types", 1, int64(1), false},
		{"slices", []int{1, 2}, []int{1, 2}, true},
		{"different slices", []int{1}, []int{2}, false},
		{"maps", map[string]int{"a": 1}, map[string]int{"a": 1}, true},
		{"nil and nil", nil, nil, true},
		{"nil and value", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

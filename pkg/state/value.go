package state

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// subscription is one registered listener.
type subscription struct {
	id uint64
	fn Listener
}

// Value is a reactive value container.
// Every Set notifies all subscribers exactly once, synchronously, in the
// order they subscribed.
type Value[T any] struct {
	id uint64

	// value is the current value.
	value T

	// mu protects value.
	mu sync.RWMutex

	// subs are the listeners, kept in registration order.
	subs []subscription

	// subMu protects subs.
	subMu sync.Mutex

	// equal, when set, suppresses writes it reports as unchanged.
	equal func(T, T) bool

	disposed atomic.Bool
}

var _ Container = (*Value[int])(nil)

// New creates a new container holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		id:    nextID(),
		value: initial,
	}
}

// ID returns the unique identifier for this container.
func (v *Value[T]) ID() uint64 {
	return v.id
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set replaces the value and notifies subscribers with ctx.
func (v *Value[T]) Set(ctx context.Context, value T) {
	v.mu.Lock()
	if v.equal != nil && v.equal(v.value, value) {
		v.mu.Unlock()
		return
	}
	v.value = value
	v.mu.Unlock()

	v.notify(ctx)
}

// Update atomically reads and replaces the value.
// The function receives the current value and returns the new value.
func (v *Value[T]) Update(ctx context.Context, fn func(T) T) {
	v.mu.Lock()
	next := fn(v.value)
	if v.equal != nil && v.equal(v.value, next) {
		v.mu.Unlock()
		return
	}
	v.value = next
	v.mu.Unlock()

	v.notify(ctx)
}

// WithEquals configures an equality function. A Set whose new value fn
// reports equal to the current one does not write and does not notify.
func (v *Value[T]) WithEquals(fn func(T, T) bool) *Value[T] {
	v.equal = fn
	return v
}

// Load implements Container.
func (v *Value[T]) Load() any {
	return v.Get()
}

// Store implements Container. A nil value stores the zero value of T.
func (v *Value[T]) Store(ctx context.Context, value any) error {
	if value == nil {
		var zero T
		v.Set(ctx, zero)
		return nil
	}
	typed, ok := value.(T)
	if !ok {
		var zero T
		return fmt.Errorf("%w: want %T, got %T", ErrTypeMismatch, zero, value)
	}
	v.Set(ctx, typed)
	return nil
}

// Subscribe registers fn to run after every write.
func (v *Value[T]) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}

	id := nextID()
	v.subMu.Lock()
	v.subs = append(v.subs, subscription{id: id, fn: fn})
	v.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { v.unsubscribe(id) })
	}
}

// unsubscribe removes a subscription, preserving the order of the rest.
func (v *Value[T]) unsubscribe(id uint64) {
	v.subMu.Lock()
	defer v.subMu.Unlock()

	for i, s := range v.subs {
		if s.id == id {
			v.subs = append(v.subs[:i:i], v.subs[i+1:]...)
			return
		}
	}
}

// Subscribers returns the number of registered listeners.
func (v *Value[T]) Subscribers() int {
	v.subMu.Lock()
	defer v.subMu.Unlock()
	return len(v.subs)
}

// notify calls every subscriber. Uses copy-before-notify so listeners may
// subscribe or unsubscribe while being notified.
func (v *Value[T]) notify(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	v.subMu.Lock()
	subs := make([]subscription, len(v.subs))
	copy(subs, v.subs)
	v.subMu.Unlock()

	for _, s := range subs {
		s.fn(ctx)
	}
}

// Dispose drops all subscribers and marks the container invalid.
func (v *Value[T]) Dispose() {
	if v.disposed.Swap(true) {
		return
	}
	v.subMu.Lock()
	v.subs = nil
	v.subMu.Unlock()
}

// Valid implements Validator. A disposed container is not valid.
func (v *Value[T]) Valid() bool {
	return !v.disposed.Load()
}

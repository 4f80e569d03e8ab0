// Package statebind binds reactive state containers to UI component
// lifecycles.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/statebind"
//
// Usage:
//
//	count := statebind.NewState(0)
//	def, err := statebind.Connect(statebind.Entries{
//	    {Name: "count", Value: statebind.Model(count)},
//	    {Name: "increase", Value: func(ctx context.Context) {
//	        count.Set(ctx, count.Get()+1)
//	        count.Set(ctx, count.Get()+1) // one render, not two
//	    }},
//	}, statebind.WithName("counter"))
//
// The definition's Data, Methods, Mounted, BeforeDestroy and Watch members
// are plugged into the host component. See pkg/host for a ready-made host.
package statebind

import (
	"context"
	"time"

	"github.com/vango-dev/statebind/pkg/async"
	"github.com/vango-dev/statebind/pkg/bind"
	"github.com/vango-dev/statebind/pkg/host"
	"github.com/vango-dev/statebind/pkg/loop"
	"github.com/vango-dev/statebind/pkg/scope"
	"github.com/vango-dev/statebind/pkg/state"
	"github.com/zoobzio/clockz"
)

// =============================================================================
// Bindings (re-export from pkg/bind)
// =============================================================================

// Entry is one named binding.
type Entry = bind.Entry

// Entries is an ordered set of bindings.
type Entries = bind.Entries

// Definition is the lifecycle and member set produced by Connect.
type Definition = bind.Definition

// Overrides are custom members merged into a Definition.
type Overrides = bind.Overrides

// Option configures Connect.
type Option = bind.Option

// Wrapper marks how a container is bound.
type Wrapper = bind.Wrapper

// Kind classifies a binding.
type Kind = bind.Kind

// Instance is the host-side view of a mounted component.
type Instance = bind.Instance

// Observer receives action, render and loadable events.
type Observer = bind.Observer

// BindingError reports a failed binding.
type BindingError = bind.BindingError

// MethodFunc is a bound action as the host calls it.
type MethodFunc = bind.MethodFunc

// Connect resolves entries into a component definition.
//
// Example:
//
//	def, err := statebind.Connect(entries, statebind.WithName("counter"))
var Connect = bind.Connect

// State binds a container for reading.
var State = bind.State

// Model binds a container for reading and two-way assignment.
var Model = bind.Model

// Loadable binds a container holding an async handle. With a default
// value the prop holds the default while loading and the value once
// settled; without one the prop holds the three-phase snapshot.
var Loadable = bind.Loadable

// Literal binds a constant prop.
var Literal = bind.Literal

// Method binds an action.
var Method = bind.Method

// WithName names the component.
var WithName = bind.WithName

// WithLogger sets the binder's logger.
var WithLogger = bind.WithLogger

// WithObserver sets the binder's observer.
var WithObserver = bind.WithObserver

// WithOverrides merges custom members into the definition.
var WithOverrides = bind.WithOverrides

// WithClock sets the clock used to time actions.
var WithClock = bind.WithClock

// Binding errors.
var (
	ErrInvalidState       = bind.ErrInvalidState
	ErrUnsupportedBinding = bind.ErrUnsupportedBinding
	ErrDuplicateBinding   = bind.ErrDuplicateBinding
	ErrEmptyName          = bind.ErrEmptyName
	ErrScopeMisuse        = bind.ErrScopeMisuse
)

// =============================================================================
// Containers (re-export from pkg/state)
// =============================================================================

// Container is the reactive state primitive bindings consume.
type Container = state.Container

// Value is the built-in container.
type Value[T any] = state.Value[T]

// NewState creates a container holding initial.
func NewState[T any](initial T) *Value[T] {
	return state.New(initial)
}

// =============================================================================
// Async values (re-export from pkg/async)
// =============================================================================

// Handle is an async value a loadable can hold.
type Handle = async.Handle

// Promise is the built-in Handle.
type Promise = async.Promise

// Snapshot is the three-phase view of a Handle.
type Snapshot = async.Snapshot

// Phase is the state of a Snapshot.
type Phase = async.Phase

// Snapshot phases.
const (
	Loading  = async.Loading
	HasValue = async.HasValue
	HasError = async.HasError
)

// NewPromise creates a pending promise that settles on d.
func NewPromise(d async.Dispatcher) *Promise {
	return async.New(d)
}

// Go runs fn in a goroutine and settles the promise on d.
func Go(ctx context.Context, d async.Dispatcher, fn func(ctx context.Context) (any, error)) *Promise {
	return async.Go(ctx, d, fn)
}

// After settles with value once dur has passed on clock.
func After(d async.Dispatcher, clock clockz.Clock, dur time.Duration, value any) *Promise {
	return async.After(d, clock, dur, value)
}

// =============================================================================
// Runtime (re-export from pkg/loop, pkg/scope and pkg/host)
// =============================================================================

// Loop is the single-threaded event loop all binding work runs on.
type Loop = loop.Loop

// NewLoop creates an event loop.
var NewLoop = loop.New

// Component is the reference host for a Definition.
type Component = host.Component

// Mount mounts def on a reference host.
var Mount = host.Mount

// InScope reports whether ctx carries an open execution scope.
func InScope(ctx context.Context) bool {
	return scope.Current(ctx) != nil
}

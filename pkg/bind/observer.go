package bind

import (
	"context"
	"time"

	"github.com/vango-dev/statebind/pkg/async"
)

// Render reasons reported to observers.
const (
	// ReasonFlush is a coalesced render at the end of an action.
	ReasonFlush = "flush"

	// ReasonExternal is an immediate render caused by a change made outside
	// the instance's own actions.
	ReasonExternal = "external"

	// ReasonLoadable is a render caused by a loadable settling.
	ReasonLoadable = "loadable"
)

// Observer receives binder lifecycle callbacks. Implementations must be safe
// for concurrent use; see pkg/middleware for Prometheus and OpenTelemetry
// implementations.
type Observer interface {
	// ActionStarted is called before an action body runs. The returned
	// context is passed to the body.
	ActionStarted(ctx context.Context, component, action string) context.Context

	// ActionFinished is called after the action's changes were flushed.
	ActionFinished(ctx context.Context, component, action string, elapsed time.Duration, err error)

	// Rendered is called after every forced render. changes is the number of
	// props written before the render.
	Rendered(ctx context.Context, component, reason string, changes int)

	// LoadableSettled is called when a watched loadable leaves Loading.
	LoadableSettled(ctx context.Context, component, binding string, phase async.Phase)
}

// NopObserver ignores every callback.
type NopObserver struct{}

func (NopObserver) ActionStarted(ctx context.Context, _, _ string) context.Context { return ctx }
func (NopObserver) ActionFinished(context.Context, string, string, time.Duration, error) {}
func (NopObserver) Rendered(context.Context, string, string, int)                        {}
func (NopObserver) LoadableSettled(context.Context, string, string, async.Phase)         {}

package middleware

import (
	"context"
	"time"

	"github.com/vango-dev/statebind/pkg/async"
	"github.com/vango-dev/statebind/pkg/bind"
)

// Chain combines observers. ActionStarted threads the context through each
// observer in order; the other callbacks fan out in the same order.
func Chain(observers ...bind.Observer) bind.Observer {
	out := make(chain, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type chain []bind.Observer

func (c chain) ActionStarted(ctx context.Context, component, action string) context.Context {
	for _, o := range c {
		ctx = o.ActionStarted(ctx, component, action)
	}
	return ctx
}

func (c chain) ActionFinished(ctx context.Context, component, action string, elapsed time.Duration, err error) {
	for _, o := range c {
		o.ActionFinished(ctx, component, action, elapsed, err)
	}
}

func (c chain) Rendered(ctx context.Context, component, reason string, changes int) {
	for _, o := range c {
		o.Rendered(ctx, component, reason, changes)
	}
}

func (c chain) LoadableSettled(ctx context.Context, component, binding string, phase async.Phase) {
	for _, o := range c {
		o.LoadableSettled(ctx, component, binding, phase)
	}
}

// Package demo is the counter application used by the CLI, the websocket
// server and the terminal UI.
package demo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vango-dev/statebind/pkg/async"
	"github.com/vango-dev/statebind/pkg/bind"
	"github.com/vango-dev/statebind/pkg/loop"
	"github.com/vango-dev/statebind/pkg/state"
	"github.com/zoobzio/clockz"
)

// Defaults for the demo timings.
const (
	DefaultAsyncDelay    = 30 * time.Millisecond
	DefaultLoadableDelay = 200 * time.Millisecond
	DefaultLoadableValue = 100
)

// Option configures an App.
type Option func(*App)

// WithClock sets the clock that drives delays.
func WithClock(clock clockz.Clock) Option {
	return func(a *App) { a.clock = clock }
}

// WithAsyncDelay sets the delay of IncreaseAsync.
func WithAsyncDelay(d time.Duration) Option {
	return func(a *App) { a.asyncDelay = d }
}

// WithLoadable sets the delay and value of the loadable.
func WithLoadable(d time.Duration, value int) Option {
	return func(a *App) {
		a.loadableDelay = d
		a.loadableValue = value
	}
}

// App holds the counter state shared by every mounted component.
type App struct {
	Count    *state.Value[int]
	Loadable *state.Value[any]

	loop          *loop.Loop
	clock         clockz.Clock
	asyncDelay    time.Duration
	loadableDelay time.Duration
	loadableValue int
}

// New creates the app. Delayed work settles on l. The loadable starts
// pending.
func New(l *loop.Loop, opts ...Option) *App {
	a := &App{
		Count:         state.New(0),
		loop:          l,
		clock:         clockz.RealClock,
		asyncDelay:    DefaultAsyncDelay,
		loadableDelay: DefaultLoadableDelay,
		loadableValue: DefaultLoadableValue,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.Loadable = state.New[any](a.pendingValue())
	return a
}

func (a *App) pendingValue() *async.Promise {
	return async.After(a.loop, a.clock, a.loadableDelay, a.loadableValue)
}

// Increase adds one to the counter.
func (a *App) Increase(ctx context.Context) {
	a.Count.Set(ctx, a.Count.Get()+1)
}

// Decrease subtracts one from the counter.
func (a *App) Decrease(ctx context.Context) {
	a.Count.Set(ctx, a.Count.Get()-1)
}

// IncreaseAsync adds one to the counter after the async delay. The
// increment runs on the loop with ctx, so it is attributed to the action
// that started it.
func (a *App) IncreaseAsync(ctx context.Context) *async.Promise {
	return async.Delay(a.loop, a.clock, a.asyncDelay).Then(func(any) (any, error) {
		a.Increase(ctx)
		return a.Count.Get(), nil
	})
}

// Reload replaces the loadable with a new pending value.
func (a *App) Reload(ctx context.Context) {
	a.Loadable.Set(ctx, a.pendingValue())
}

// Reset sets the counter back to zero.
func (a *App) Reset(ctx context.Context) {
	a.Count.Set(ctx, 0)
}

// Bindings returns the counter bindings.
func (a *App) Bindings() bind.Entries {
	return bind.Entries{
		{Name: "count", Value: bind.Model(a.Count)},
		{Name: "loadable", Value: bind.Loadable(a.Loadable)},
		{Name: "title", Value: "statebind counter"},
		{Name: "increase", Value: func(ctx context.Context) {
			a.Increase(ctx)
			a.Increase(ctx)
		}},
		{Name: "decrease", Value: a.Decrease},
		{Name: "increaseAsync", Value: a.IncreaseAsync},
		{Name: "reload", Value: a.Reload},
		{Name: "reset", Value: a.Reset},
	}
}

// Connect builds the counter definition.
func (a *App) Connect(opts ...bind.Option) (*bind.Definition, error) {
	opts = append([]bind.Option{bind.WithName("counter")}, opts...)
	return bind.Connect(a.Bindings(), opts...)
}

// Render produces the counter markup.
func Render(props map[string]any) string {
	var b strings.Builder
	if title, ok := props["title"].(string); ok {
		fmt.Fprintf(&b, "<h1>%s</h1>\n", title)
	}
	fmt.Fprintf(&b, "<span id=\"output\">%v</span>\n", props["count"])

	snap, _ := props["loadable"].(async.Snapshot)
	switch snap.State {
	case async.Loading:
		b.WriteString("<span id=\"loadable-loading\">loading</span>\n")
	case async.HasError:
		fmt.Fprintf(&b, "<span id=\"loadable-error\">%v</span>\n", snap.Err)
	default:
		fmt.Fprintf(&b, "<span id=\"loadable-value\">%v</span>\n", snap.Value)
	}
	return b.String()
}

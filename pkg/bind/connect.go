package bind

import (
	"context"
	"log/slog"

	"github.com/vango-dev/statebind/pkg/state"
	"github.com/zoobzio/clockz"
)

// MethodFunc is a bound action as exposed to the host. inst is the instance the
// call is made on.
//
// For asynchronous actions the returned value is an *async.Promise that
// settles after the action's changes have been flushed.
type MethodFunc func(ctx context.Context, inst Instance, args ...any) (any, error)

// WatchFunc observes assignments to a prop from the component side.
type WatchFunc func(ctx context.Context, inst Instance, newValue, oldValue any) error

// Definition is the component definition fragment produced by Connect.
// Hosts call Data before Mounted, and Mounted and BeforeDestroy at most once
// per instance, in that order.
type Definition struct {
	// Name identifies the component in logs, metrics and events.
	Name string

	// Data returns the initial props of inst.
	Data func(inst Instance) (map[string]any, error)

	// Methods are the bound actions, keyed by binding name.
	Methods map[string]MethodFunc

	// Mounted registers the instance's subscriptions.
	Mounted func(inst Instance)

	// BeforeDestroy releases the instance's subscriptions.
	BeforeDestroy func(inst Instance)

	// Watch holds one watcher per model binding.
	Watch map[string]WatchFunc

	// Extra is passed through from Overrides unchanged.
	Extra map[string]any

	b *binder
}

// Instances returns the number of instances the definition is tracking.
func (d *Definition) Instances() int {
	if d == nil || d.b == nil {
		return 0
	}
	return d.b.instances()
}

// Overrides are custom component options merged into the definition.
type Overrides struct {
	// Data runs first; bound props override keys it returns.
	Data func(inst Instance) (map[string]any, error)

	// Methods are added first; bound actions override them by name.
	Methods map[string]MethodFunc

	// Mounted runs after the binder's subscriptions are registered.
	Mounted func(inst Instance)

	// BeforeDestroy runs before the binder's subscriptions are released.
	BeforeDestroy func(inst Instance)

	// Watch is added first; model watchers override it by name.
	Watch map[string]WatchFunc

	// Extra passes through to Definition.Extra.
	Extra map[string]any
}

// Option configures Connect.
type Option func(*options)

type options struct {
	name      string
	logger    *slog.Logger
	observer  Observer
	clock     clockz.Clock
	overrides Overrides
}

// WithName sets the component name. Defaults to "component".
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithObserver sets the observer notified of actions and renders.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithClock sets the clock used to time actions.
func WithClock(clock clockz.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithOverrides merges custom component options into the definition.
func WithOverrides(ov Overrides) Option {
	return func(o *options) { o.overrides = ov }
}

// Connect resolves entries and returns a definition that keeps instance
// props in sync with the bound containers.
//
// Every binding is validated here; the first failure is returned as a
// *BindingError and no definition is produced.
func Connect(entries Entries, opts ...Option) (*Definition, error) {
	o := options{name: "component"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.observer == nil {
		o.observer = NopObserver{}
	}
	if o.clock == nil {
		o.clock = clockz.RealClock
	}

	res, err := resolve(entries)
	if err != nil {
		return nil, err
	}

	b := &binder{
		name:     o.name,
		res:      res,
		logger:   o.logger.With("component", o.name),
		observer: o.observer,
		clock:    o.clock,
		attached: make(map[Instance]*attachment),
	}
	ov := o.overrides

	def := &Definition{
		Name:    o.name,
		Methods: make(map[string]MethodFunc, len(ov.Methods)+len(res.actions)),
		Watch:   make(map[string]WatchFunc, len(ov.Watch)+len(res.models)),
		Extra:   ov.Extra,
		b:       b,
	}

	// Data only reads. The instance becomes known to the binder in Mounted,
	// so a host whose mount fails leaves nothing behind.
	def.Data = func(inst Instance) (map[string]any, error) {
		data := make(map[string]any, len(res.props))
		if ov.Data != nil {
			custom, err := ov.Data(inst)
			if err != nil {
				return nil, err
			}
			for k, v := range custom {
				data[k] = v
			}
		}
		for _, p := range res.props {
			v, err := p.read()
			if err != nil {
				return nil, err
			}
			data[p.name] = v
		}
		return data, nil
	}

	for name, m := range ov.Methods {
		def.Methods[name] = m
	}
	for _, a := range res.actions {
		def.Methods[a.name] = b.wrap(a.name, a.invoke)
	}

	for name, w := range ov.Watch {
		def.Watch[name] = w
	}
	for _, p := range res.models {
		def.Watch[p.name] = modelWatcher(p.container)
	}

	def.Mounted = func(inst Instance) {
		b.mount(context.Background(), inst)
		if ov.Mounted != nil {
			ov.Mounted(inst)
		}
	}

	def.BeforeDestroy = func(inst Instance) {
		if ov.BeforeDestroy != nil {
			ov.BeforeDestroy(inst)
		}
		b.unmount(context.Background(), inst)
	}

	b.logger.Debug("bindings resolved",
		"props", len(res.props),
		"actions", len(res.actions),
		"models", len(res.models),
	)
	return def, nil
}

// modelWatcher writes component-side assignments back to c, skipping values
// equal to what c already holds.
func modelWatcher(c state.Container) WatchFunc {
	return func(ctx context.Context, _ Instance, newValue, _ any) error {
		if state.Equal(newValue, c.Load()) {
			return nil
		}
		return c.Store(ctx, newValue)
	}
}

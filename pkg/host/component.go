package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/vango-dev/statebind/pkg/bind"
)

// ErrUnknownMethod is returned by Call for a method the definition does not
// have.
var ErrUnknownMethod = errors.New("statebind: unknown method")

// ErrDestroyed is returned when a destroyed component is used.
var ErrDestroyed = errors.New("statebind: component destroyed")

// RenderFunc turns the current props into output.
type RenderFunc func(props map[string]any) string

// Snapshot is the observable state of a component after a render.
type Snapshot struct {
	ID        string            `json:"id"`
	Component string            `json:"component"`
	Renders   int               `json:"renders"`
	Props     map[string]any    `json:"props"`
	Output    string            `json:"output"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// Option configures Mount.
type Option func(*Component)

// WithOnRender registers fn to receive a snapshot after every forced render.
func WithOnRender(fn func(Snapshot)) Option {
	return func(c *Component) {
		if fn != nil {
			c.onRender = append(c.onRender, fn)
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Component) { c.logger = logger }
}

// WithID overrides the generated instance id.
func WithID(id string) Option {
	return func(c *Component) { c.id = id }
}

// Component is a mounted instance of a bind.Definition.
type Component struct {
	id       string
	def      *bind.Definition
	render   RenderFunc
	logger   *slog.Logger
	onRender []func(Snapshot)

	mu        sync.Mutex
	props     map[string]any
	renders   int
	output    string
	errs      map[string]error
	destroyed bool

	destroyOnce sync.Once
}

var (
	_ bind.Instance      = (*Component)(nil)
	_ bind.ErrorReporter = (*Component)(nil)
)

// Mount creates a component, initializes its props from def.Data, renders
// the initial output and runs def.Mounted. The initial render is not counted
// as a forced render.
func Mount(def *bind.Definition, render RenderFunc, opts ...Option) (*Component, error) {
	if def == nil {
		return nil, errors.New("statebind: nil definition")
	}
	if render == nil {
		render = func(map[string]any) string { return "" }
	}

	c := &Component{
		id:     uuid.NewString(),
		def:    def,
		render: render,
		props:  make(map[string]any),
		errs:   make(map[string]error),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", def.Name, "instance", c.id)

	if def.Data != nil {
		data, err := def.Data(c)
		if err != nil {
			return nil, fmt.Errorf("mount %s: %w", def.Name, err)
		}
		c.props = data
	}
	c.output = c.render(maps.Clone(c.props))

	if def.Mounted != nil {
		def.Mounted(c)
	}
	c.logger.Debug("component mounted", "props", len(c.props))
	return c, nil
}

// ID returns the instance id.
func (c *Component) ID() string {
	return c.id
}

// Name returns the definition name.
func (c *Component) Name() string {
	return c.def.Name
}

// SetProp implements bind.Instance.
func (c *Component) SetProp(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.props[name] = value
	delete(c.errs, name)
}

// ForceUpdate implements bind.Instance.
func (c *Component) ForceUpdate() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	props := maps.Clone(c.props)
	c.mu.Unlock()

	out := c.render(props)

	c.mu.Lock()
	c.renders++
	c.output = out
	snap := c.snapshotLocked()
	listeners := c.onRender
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// ReportError implements bind.ErrorReporter.
func (c *Component) ReportError(name string, err error) {
	c.mu.Lock()
	c.errs[name] = err
	c.mu.Unlock()
	c.logger.Warn("binding error", "binding", name, "error", err)
}

// Call invokes a bound method on the component.
func (c *Component) Call(ctx context.Context, method string, args ...any) (any, error) {
	if c.Destroyed() {
		return nil, ErrDestroyed
	}

	m, ok := c.def.Methods[method]
	if !ok {
		if s := suggest(method, c.Methods()); s != "" {
			return nil, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownMethod, method, s)
		}
		return nil, fmt.Errorf("%w %q", ErrUnknownMethod, method)
	}
	return m(ctx, c, args...)
}

// Assign writes a prop from the component side, as a two-way input would,
// and runs the prop's watcher if it has one.
func (c *Component) Assign(ctx context.Context, name string, value any) error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return ErrDestroyed
	}
	old, had := c.props[name]
	c.props[name] = value
	c.mu.Unlock()

	w, ok := c.def.Watch[name]
	if !ok {
		return nil
	}
	if err := w(ctx, c, value, old); err != nil {
		// The container rejected the write; the prop keeps its last value.
		c.mu.Lock()
		if had {
			c.props[name] = old
		} else {
			delete(c.props, name)
		}
		c.mu.Unlock()
		return err
	}
	return nil
}

// Methods returns the bound method names, sorted.
func (c *Component) Methods() []string {
	names := make([]string, 0, len(c.def.Methods))
	for name := range c.def.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prop returns the current value of a prop.
func (c *Component) Prop(name string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.props[name]
}

// Props returns a copy of all props.
func (c *Component) Props() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.props)
}

// Renders returns the number of forced renders so far.
func (c *Component) Renders() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renders
}

// Output returns the latest rendered output.
func (c *Component) Output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output
}

// Err returns the last error reported for a prop.
func (c *Component) Err(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs[name]
}

// Snapshot returns the current observable state.
func (c *Component) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Component) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:        c.id,
		Component: c.def.Name,
		Renders:   c.renders,
		Props:     maps.Clone(c.props),
		Output:    c.output,
	}
	if len(c.errs) > 0 {
		snap.Errors = make(map[string]string, len(c.errs))
		for k, err := range c.errs {
			snap.Errors[k] = err.Error()
		}
	}
	return snap
}

// Destroyed reports whether Destroy has been called.
func (c *Component) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// Destroy runs def.BeforeDestroy once. Later renders are ignored.
func (c *Component) Destroy() {
	c.destroyOnce.Do(func() {
		if c.def.BeforeDestroy != nil {
			c.def.BeforeDestroy(c)
		}

		c.mu.Lock()
		c.destroyed = true
		renders := c.renders
		c.mu.Unlock()
		c.logger.Debug("component destroyed", "renders", renders)
	})
}

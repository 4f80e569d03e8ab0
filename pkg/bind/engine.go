package bind

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/vango-dev/statebind/pkg/async"
	"github.com/vango-dev/statebind/pkg/scope"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// binder owns the per-instance state of one Connect call.
type binder struct {
	name     string
	res      *resolution
	logger   *slog.Logger
	observer Observer
	clock    clockz.Clock

	mu       sync.Mutex
	attached map[Instance]*attachment
}

// attachment is the binder's view of one instance.
type attachment struct {
	inst Instance

	mu        sync.Mutex
	mounted   bool
	unsubs    []func()
	loadables map[string]*loadableWatch
}

// loadableWatch is the secondary subscription to a loadable's pending handle.
type loadableWatch struct {
	handle async.Handle
	unsub  func()
}

func (a *attachment) isMounted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mounted
}

// attach returns the attachment for inst, creating it if needed.
func (b *binder) attach(inst Instance) *attachment {
	b.mu.Lock()
	defer b.mu.Unlock()
	att, ok := b.attached[inst]
	if !ok {
		att = &attachment{inst: inst, loadables: make(map[string]*loadableWatch)}
		b.attached[inst] = att
	}
	return att
}

func (b *binder) lookup(inst Instance) *attachment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attached[inst]
}

func (b *binder) detach(inst Instance) *attachment {
	b.mu.Lock()
	defer b.mu.Unlock()
	att := b.attached[inst]
	delete(b.attached, inst)
	return att
}

// Instances returns the number of instances currently known to the binder.
func (b *binder) instances() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.attached)
}

// =============================================================================
// Mount and teardown
// =============================================================================

// mount registers one container subscription per state-backed prop, in
// binding order, and arms the secondary subscription of every loadable.
func (b *binder) mount(ctx context.Context, inst Instance) {
	att := b.attach(inst)

	att.mu.Lock()
	if att.mounted {
		att.mu.Unlock()
		return
	}
	att.mounted = true
	att.mu.Unlock()

	for _, p := range b.res.props {
		if p.container == nil {
			continue
		}
		p := p
		unsub := p.container.Subscribe(func(ctx context.Context) {
			if p.kind == KindLoadable {
				b.armLoadable(att, p)
			}
			b.onChange(ctx, att, p)
		})

		att.mu.Lock()
		att.unsubs = append(att.unsubs, unsub)
		att.mu.Unlock()

		if p.kind == KindLoadable {
			b.armLoadable(att, p)
		}
	}

	b.logger.Debug("instance mounted", "component", b.name, "subscriptions", len(att.unsubs))
	capitan.Emit(ctx, InstanceMounted, KeyComponent.Field(b.name))
}

// unmount releases every subscription in registration order and forgets the
// instance. Later flushes into it are no-ops.
func (b *binder) unmount(ctx context.Context, inst Instance) {
	att := b.detach(inst)
	if att == nil {
		return
	}

	att.mu.Lock()
	att.mounted = false
	unsubs := att.unsubs
	att.unsubs = nil
	watches := make([]*loadableWatch, 0, len(att.loadables))
	for _, p := range b.res.props {
		if w, ok := att.loadables[p.name]; ok {
			watches = append(watches, w)
		}
	}
	att.loadables = make(map[string]*loadableWatch)
	att.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	for _, w := range watches {
		w.unsub()
	}

	b.logger.Debug("instance destroyed", "component", b.name, "subscriptions", len(unsubs))
	capitan.Emit(ctx, InstanceDestroyed, KeyComponent.Field(b.name))
}

// =============================================================================
// Change propagation
// =============================================================================

// onChange is the subscription callback of one prop on one instance.
//
// A change is appended to the active record whoever owns it. It is applied
// immediately unless the active record belongs to this instance, in which
// case the owning action's flush applies it.
func (b *binder) onChange(ctx context.Context, att *attachment, p *prop) {
	rec := scope.Current(ctx)
	if rec != nil {
		if !rec.Append(scope.Change{Name: p.name, Source: b, Read: p.read}) {
			rec = nil
		}
	}

	if !att.isMounted() {
		return
	}
	if rec != nil && rec.Owner() == att.inst {
		return
	}

	v, err := p.read()
	if err != nil {
		b.report(att, p.name, err)
		return
	}
	att.inst.SetProp(p.name, v)
	b.render(ctx, att, ReasonExternal, 1)
}

// flush drains rec and applies its entries to inst with a single render.
// Entries are de-duplicated by name, keep their first position and are
// re-read now. Entries recorded by other binders are skipped. It returns
// the number of props written.
func (b *binder) flush(ctx context.Context, inst Instance, rec *scope.Record) int {
	changes := rec.Drain()

	att := b.lookup(inst)
	if att == nil || !att.isMounted() {
		return 0
	}

	seen := make(map[string]struct{}, len(changes))
	written := 0
	for _, ch := range changes {
		if ch.Source != b {
			continue
		}
		if _, dup := seen[ch.Name]; dup {
			continue
		}
		seen[ch.Name] = struct{}{}

		v, err := ch.Read()
		if err != nil {
			b.report(att, ch.Name, err)
			continue
		}
		inst.SetProp(ch.Name, v)
		written++
	}

	if written == 0 {
		return 0
	}
	b.render(ctx, att, ReasonFlush, written)
	return written
}

func (b *binder) render(ctx context.Context, att *attachment, reason string, changes int) {
	att.inst.ForceUpdate()
	b.observer.Rendered(ctx, b.name, reason, changes)
	capitan.Emit(ctx, RenderForced,
		KeyComponent.Field(b.name),
		KeyReason.Field(reason),
		KeyChanges.Field(changes),
	)
}

// report hands a prop read error to the instance, or logs it.
func (b *binder) report(att *attachment, name string, err error) {
	if r, ok := att.inst.(ErrorReporter); ok {
		r.ReportError(name, err)
		return
	}
	b.logger.Error("binding read failed", "component", b.name, "binding", name, "error", err)
}

// =============================================================================
// Loadables
// =============================================================================

// armLoadable subscribes to the handle currently held by p's container,
// replacing the subscription to any previous handle.
func (b *binder) armLoadable(att *attachment, p *prop) {
	h := handleOf(p.container.Load())

	att.mu.Lock()
	defer att.mu.Unlock()
	if !att.mounted {
		return
	}

	cur := att.loadables[p.name]
	if cur != nil {
		if sameHandle(cur.handle, h) {
			return
		}
		cur.unsub()
		delete(att.loadables, p.name)
	}
	if h == nil || h.Loadable().Settled() {
		return
	}

	unsub := h.Subscribe(func() { b.onLoadableSettled(att, p, h) })
	att.loadables[p.name] = &loadableWatch{handle: h, unsub: unsub}
}

// onLoadableSettled always forces a render; it never coalesces.
func (b *binder) onLoadableSettled(att *attachment, p *prop, h async.Handle) {
	att.mu.Lock()
	cur := att.loadables[p.name]
	if !att.mounted || cur == nil || !sameHandle(cur.handle, h) {
		att.mu.Unlock()
		return
	}
	delete(att.loadables, p.name)
	att.mu.Unlock()

	ctx := context.Background()
	phase := h.Loadable().State
	b.observer.LoadableSettled(ctx, b.name, p.name, phase)
	capitan.Emit(ctx, LoadableSettled,
		KeyComponent.Field(b.name),
		KeyBinding.Field(p.name),
		KeyPhase.Field(phase.String()),
	)

	v, err := p.read()
	if err != nil {
		b.report(att, p.name, err)
		return
	}
	att.inst.SetProp(p.name, v)
	b.render(ctx, att, ReasonLoadable, 1)
}

func sameHandle(a, b async.Handle) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !reflect.TypeOf(a).Comparable() || reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return a == b
}

// =============================================================================
// Actions
// =============================================================================

// wrap turns an action into a MethodFunc. Each call opens a fresh record owned
// by the calling instance and flushes it exactly once: when the body
// returns, errors or panics, or when the handle it returned settles.
func (b *binder) wrap(name string, inv invoker) MethodFunc {
	return func(ctx context.Context, inst Instance, args ...any) (any, error) {
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = b.observer.ActionStarted(ctx, b.name, name)
		start := b.clock.Now()
		rec := scope.NewRecord(inst)

		v, h, err := b.invoke(scope.WithRecord(ctx, rec), inst, rec, name, inv, args, start)
		if h == nil {
			return v, err
		}

		out := async.New(nil)
		h.OnSettle(
			func(v any) {
				b.complete(ctx, inst, rec, name, start, nil)
				out.Resolve(v)
			},
			func(err error) {
				b.complete(ctx, inst, rec, name, start, err)
				out.Reject(err)
			},
		)
		return out, nil
	}
}

func (b *binder) invoke(ctx context.Context, inst Instance, rec *scope.Record, name string, inv invoker, args []any, start time.Time) (v any, h async.Handle, err error) {
	pending := false
	defer func() {
		if pending {
			return
		}
		if r := recover(); r != nil {
			b.complete(ctx, inst, rec, name, start, fmt.Errorf("statebind: action %q panicked: %v", name, r))
			panic(r)
		}
		b.complete(ctx, inst, rec, name, start, err)
	}()

	v, h, err = inv(ctx, args)
	pending = h != nil
	return v, h, err
}

func (b *binder) complete(ctx context.Context, inst Instance, rec *scope.Record, name string, start time.Time, err error) {
	pending := rec.Len()
	written := b.flush(ctx, inst, rec)
	elapsed := b.clock.Since(start)

	b.observer.ActionFinished(ctx, b.name, name, elapsed, err)

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	capitan.Emit(ctx, ActionFlushed,
		KeyComponent.Field(b.name),
		KeyAction.Field(name),
		KeyChanges.Field(written),
		KeyDuration.Field(elapsed),
		KeyError.Field(errMsg),
	)

	b.logger.Debug("action flushed",
		"component", b.name,
		"action", name,
		"changes", pending,
		"written", written,
		"error", err,
	)
}

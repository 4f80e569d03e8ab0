package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
)

var watcherIDs atomic.Uint64

// watcher is one registered callback. Subscribers set phase; OnSettle
// callers set value and/or fail.
type watcher struct {
	id    uint64
	phase func()
	value func(any)
	fail  func(error)
}

// Promise is the reference Handle implementation.
type Promise struct {
	d Dispatcher

	mu       sync.Mutex
	snap     Snapshot
	watchers []watcher
}

var _ Handle = (*Promise)(nil)

// New creates a pending promise whose settlement runs through d.
// A nil dispatcher settles inline.
func New(d Dispatcher) *Promise {
	return &Promise{d: d}
}

// Resolved returns a promise already holding v.
func Resolved(v any) *Promise {
	return &Promise{snap: Snapshot{State: HasValue, Value: v}}
}

// Rejected returns a promise already holding err.
func Rejected(err error) *Promise {
	return &Promise{snap: Snapshot{State: HasError, Err: err}}
}

// Resolve settles the promise with v. Only the first settlement counts.
// Safe to call from any goroutine.
func (p *Promise) Resolve(v any) {
	p.dispatch(func() { p.settle(Snapshot{State: HasValue, Value: v}) })
}

// Reject settles the promise with err. Only the first settlement counts.
// Safe to call from any goroutine.
func (p *Promise) Reject(err error) {
	p.dispatch(func() { p.settle(Snapshot{State: HasError, Err: err}) })
}

// dispatch runs fn through the dispatcher, or inline without one.
func (p *Promise) dispatch(fn func()) {
	if p.d == nil {
		fn()
		return
	}
	p.d.Dispatch(fn)
}

// settle records the outcome and runs watchers in registration order.
func (p *Promise) settle(s Snapshot) {
	p.mu.Lock()
	if p.snap.Settled() {
		p.mu.Unlock()
		return
	}
	p.snap = s
	watchers := p.watchers
	p.watchers = nil
	p.mu.Unlock()

	for _, w := range watchers {
		w.run(s)
	}
}

func (w watcher) run(s Snapshot) {
	if w.phase != nil {
		w.phase()
	}
	switch s.State {
	case HasValue:
		if w.value != nil {
			w.value(s.Value)
		}
	case HasError:
		if w.fail != nil {
			w.fail(s.Err)
		}
	}
}

// Loadable implements Handle.
func (p *Promise) Loadable() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Subscribe implements Handle.
func (p *Promise) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}

	p.mu.Lock()
	if p.snap.Settled() {
		p.mu.Unlock()
		return func() {}
	}
	id := watcherIDs.Add(1)
	p.watchers = append(p.watchers, watcher{id: id, phase: fn})
	p.mu.Unlock()

	return func() { p.remove(id) }
}

// Subscribers returns the number of callbacks waiting for settlement.
func (p *Promise) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.watchers)
}

func (p *Promise) remove(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, w := range p.watchers {
		if w.id == id {
			p.watchers = append(p.watchers[:i:i], p.watchers[i+1:]...)
			return
		}
	}
}

// OnSettle implements Handle.
func (p *Promise) OnSettle(onValue func(any), onError func(error)) {
	w := watcher{id: watcherIDs.Add(1), value: onValue, fail: onError}

	p.mu.Lock()
	if !p.snap.Settled() {
		p.watchers = append(p.watchers, w)
		p.mu.Unlock()
		return
	}
	s := p.snap
	p.mu.Unlock()

	p.dispatch(func() { w.run(s) })
}

// Then returns a promise settled with fn's result once p has a value.
// An error from p skips fn and passes through unchanged. A panic in fn
// rejects the returned promise.
func (p *Promise) Then(fn func(v any) (any, error)) *Promise {
	next := New(p.d)
	p.OnSettle(
		func(v any) {
			defer next.recoverInto("then")
			out, err := fn(v)
			if err != nil {
				next.settle(Snapshot{State: HasError, Err: err})
				return
			}
			next.settle(Snapshot{State: HasValue, Value: out})
		},
		func(err error) {
			next.settle(Snapshot{State: HasError, Err: err})
		},
	)
	return next
}

// Finally returns a promise that runs fn after p settles either way and
// then settles with p's outcome. A panic in fn rejects the returned
// promise instead.
func (p *Promise) Finally(fn func()) *Promise {
	next := New(p.d)
	p.OnSettle(
		func(v any) {
			defer next.recoverInto("finally")
			fn()
			next.settle(Snapshot{State: HasValue, Value: v})
		},
		func(err error) {
			defer next.recoverInto("finally")
			fn()
			next.settle(Snapshot{State: HasError, Err: err})
		},
	)
	return next
}

// recoverInto rejects p with a recovered panic. It must be deferred.
func (p *Promise) recoverInto(where string) {
	if r := recover(); r != nil {
		p.settle(Snapshot{
			State: HasError,
			Err:   fmt.Errorf("statebind: %s callback panicked: %v\n%s", where, r, debug.Stack()),
		})
	}
}

// Go runs fn on a new goroutine and settles the returned promise through d.
// A panic in fn rejects the promise.
func Go(ctx context.Context, d Dispatcher, fn func(ctx context.Context) (any, error)) *Promise {
	p := New(d)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.Reject(fmt.Errorf("statebind: async panic: %v\n%s", r, debug.Stack()))
			}
		}()
		v, err := fn(ctx)
		if err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(v)
	}()
	return p
}

// After returns a promise that resolves with value once clock has advanced
// by dur.
func After(d Dispatcher, clock clockz.Clock, dur time.Duration, value any) *Promise {
	if clock == nil {
		clock = clockz.RealClock
	}
	p := New(d)
	timer := clock.NewTimer(dur)
	go func() {
		<-timer.C()
		p.Resolve(value)
	}()
	return p
}

// Delay returns a promise that resolves with nil after dur.
func Delay(d Dispatcher, clock clockz.Clock, dur time.Duration) *Promise {
	return After(d, clock, dur, nil)
}

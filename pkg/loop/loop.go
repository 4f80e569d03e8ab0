package loop

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Run and RunUntil once the loop has been closed.
var ErrClosed = errors.New("statebind: loop closed")

// Loop is a FIFO task queue drained by exactly one goroutine at a time.
// Dispatch is safe to call from any goroutine. Run, RunPending and RunUntil
// must not be called concurrently with each other.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	done   chan struct{}
	closed atomic.Bool

	logger *slog.Logger

	// executed counts tasks run since creation.
	executed atomic.Uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used to report task panics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates an idle loop.
func New(opts ...Option) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dispatch queues fn to run on the loop. Calls after Close are discarded.
func (l *Loop) Dispatch(fn func()) {
	if fn == nil || l.closed.Load() {
		return
	}

	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of queued tasks.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Executed returns the number of tasks run so far.
func (l *Loop) Executed() uint64 {
	return l.executed.Load()
}

// next pops the oldest task, or returns nil when the queue is empty.
func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn
}

// execute runs one task, recovering and logging a panic.
func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	l.executed.Add(1)
	fn()
}

// RunPending runs queued tasks on the calling goroutine until the queue is
// empty, including tasks queued by the tasks themselves. It returns the
// number of tasks run.
func (l *Loop) RunPending() int {
	n := 0
	for {
		fn := l.next()
		if fn == nil {
			return n
		}
		l.execute(fn)
		n++
	}
}

// Run processes tasks until ctx is done or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()

		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			l.RunPending()
			return ErrClosed
		}
	}
}

// RunUntil processes tasks until cond reports true, waiting for new tasks
// when the queue runs dry. cond is evaluated on the calling goroutine
// before each wait. Returns ctx.Err() if ctx ends first.
func (l *Loop) RunUntil(ctx context.Context, cond func() bool) error {
	for {
		l.RunPending()
		if cond() {
			return nil
		}

		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			l.RunPending()
			if cond() {
				return nil
			}
			return ErrClosed
		}
	}
}

// Close stops the loop. Tasks already queued still run once more in Run.
func (l *Loop) Close() {
	if l.closed.Swap(true) {
		return
	}
	close(l.done)
}

// Closed reports whether Close has been called.
func (l *Loop) Closed() bool {
	return l.closed.Load()
}

// Done returns a channel closed by Close.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

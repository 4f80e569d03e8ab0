package bind

import (
	"context"
	"reflect"

	"github.com/vango-dev/statebind/pkg/async"
)

// Action is a synchronous action. Its result is returned to the caller after
// the changes it made have been flushed.
type Action func(ctx context.Context, args ...any) (any, error)

// AsyncAction is an action that completes later. Changes made through the
// action's context are flushed when the returned handle settles.
type AsyncAction func(ctx context.Context, args ...any) async.Handle

// invoker is the normalized form of every accepted action signature.
// A non-nil handle means the action is still running.
type invoker func(ctx context.Context, args []any) (any, async.Handle, error)

// normalizeAction accepts, besides Action and AsyncAction and their unnamed
// equivalents:
//
//	func(context.Context) error
//	func(context.Context)
//	func(context.Context) async.Handle
//	func(context.Context) *async.Promise
//
// Every accepted signature takes the context. Writes are attributed to
// the action only through it.
func normalizeAction(fn any) (invoker, bool) {
	if fn == nil {
		return nil, false
	}
	if rv := reflect.ValueOf(fn); rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, false
	}

	switch f := fn.(type) {
	case Action:
		return syncInvoker(f), true
	case func(context.Context, ...any) (any, error):
		return syncInvoker(f), true
	case AsyncAction:
		return asyncInvoker(f), true
	case func(context.Context, ...any) async.Handle:
		return asyncInvoker(f), true
	case func(context.Context) async.Handle:
		return asyncInvoker(func(ctx context.Context, _ ...any) async.Handle { return f(ctx) }), true
	case func(context.Context) *async.Promise:
		return asyncInvoker(func(ctx context.Context, _ ...any) async.Handle {
			if p := f(ctx); p != nil {
				return p
			}
			return nil
		}), true
	case func(context.Context) error:
		return syncInvoker(func(ctx context.Context, _ ...any) (any, error) { return nil, f(ctx) }), true
	case func(context.Context):
		return syncInvoker(func(ctx context.Context, _ ...any) (any, error) {
			f(ctx)
			return nil, nil
		}), true
	}
	return nil, false
}

func syncInvoker(f func(context.Context, ...any) (any, error)) invoker {
	return func(ctx context.Context, args []any) (any, async.Handle, error) {
		v, err := f(ctx, args...)
		return v, nil, err
	}
}

func asyncInvoker(f func(context.Context, ...any) async.Handle) invoker {
	return func(ctx context.Context, args []any) (any, async.Handle, error) {
		h := f(ctx, args...)
		if isNil(h) {
			return nil, nil, nil
		}
		return nil, h, nil
	}
}

// isNil reports whether v is nil or a typed nil pointer-like value.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

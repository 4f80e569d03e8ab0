package scope

import (
	"context"
	"errors"
)

// ErrMisuse is returned when scope information is requested outside of any
// active scope.
var ErrMisuse = errors.New("statebind: no active execution scope")

type recordKey struct{}

// frame links a record to the frame it shadows.
type frame struct {
	rec    *Record
	parent *frame
	depth  int
}

func frameFrom(ctx context.Context) *frame {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(recordKey{}).(*frame)
	return f
}

// WithRecord returns a context in which rec is the innermost active record.
func WithRecord(ctx context.Context, rec *Record) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	parent := frameFrom(ctx)
	depth := 1
	if parent != nil {
		depth = parent.depth + 1
	}
	return context.WithValue(ctx, recordKey{}, &frame{rec: rec, parent: parent, depth: depth})
}

// Run calls fn with rec installed as the active record. The caller's ctx is
// left untouched, so the outer record is back in force once fn returns or
// panics.
func Run[R any](ctx context.Context, rec *Record, fn func(ctx context.Context) R) R {
	return fn(WithRecord(ctx, rec))
}

// Current returns the innermost active record, or nil if there is none.
// A closed record is treated as absent.
func Current(ctx context.Context) *Record {
	f := frameFrom(ctx)
	if f == nil || f.rec == nil || f.rec.Closed() {
		return nil
	}
	return f.rec
}

// Owner returns the owner of the innermost active record.
func Owner(ctx context.Context) (any, error) {
	rec := Current(ctx)
	if rec == nil {
		return nil, ErrMisuse
	}
	return rec.owner, nil
}

// Depth reports how many scopes are nested in ctx.
func Depth(ctx context.Context) int {
	f := frameFrom(ctx)
	if f == nil {
		return 0
	}
	return f.depth
}

package bind

import (
	"context"

	"github.com/vango-dev/statebind/pkg/scope"
)

// Instance is a mounted component as seen by the binder. Instances are
// compared with ==, so hosts should use pointer types.
type Instance interface {
	// SetProp writes a prop without rendering.
	SetProp(name string, value any)

	// ForceUpdate renders the instance once.
	ForceUpdate()
}

// ErrorReporter is optionally implemented by instances that want prop read
// errors, such as a rejected loadable with a default, reported to them
// instead of logged.
type ErrorReporter interface {
	ReportError(name string, err error)
}

// CurrentInstance returns the instance whose action is running in ctx.
func CurrentInstance(ctx context.Context) (Instance, error) {
	owner, err := scope.Owner(ctx)
	if err != nil {
		return nil, err
	}
	inst, ok := owner.(Instance)
	if !ok {
		return nil, ErrScopeMisuse
	}
	return inst, nil
}

// Package scope tracks which component instance is currently executing an
// action, so state changes made during that action can be coalesced into a
// single render.
//
// The active record travels in a context.Context. Run installs a record for
// the duration of a call and every continuation that captured the derived
// context, so scopes nest LIFO without any package-level state:
//
//	rec := scope.NewRecord(inst)
//	scope.Run(ctx, rec, func(ctx context.Context) struct{} {
//	    counter.Set(ctx, counter.Get()+1) // recorded, not rendered
//	    return struct{}{}
//	})
//	for _, ch := range rec.Drain() {
//	    // replay changes
//	}
package scope

// Package state provides the reference reactive state container used by
// statebind.
//
// A container holds one value and notifies its subscribers synchronously on
// every write:
//
//	count := state.New(0)
//	unsubscribe := count.Subscribe(func(ctx context.Context) {
//	    fmt.Println("count is now", count.Get())
//	})
//	count.Set(ctx, 1)           // prints "count is now 1"
//	count.Update(ctx, func(n int) int { return n + 1 })
//	unsubscribe()
//
// The context passed to Set is handed to every subscriber. statebind uses it
// to learn which action, if any, caused the write.
//
// # Type Erasure
//
// Bindings are declared as a heterogeneous list, so the binder consumes the
// type-erased Container view (Load, Store, Subscribe). *Value[T] implements
// both the typed and the erased API.
//
// # Thread Safety
//
// Values are guarded by mutexes and may be touched from any goroutine.
// Subscriber ordering is only meaningful when all writes happen on one
// logical thread (see package loop).
package state

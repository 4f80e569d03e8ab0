// Package loop provides the single logical thread that statebind runs on.
//
// All state writes, subscription callbacks and async continuations are
// expected to execute on one Loop. Goroutines doing blocking work (timers,
// I/O) hand their results back with Dispatch:
//
//	l := loop.New()
//	go func() {
//	    user, err := fetchUser(ctx)
//	    l.Dispatch(func() {
//	        if err == nil {
//	            current.Set(ctx, user)
//	        }
//	    })
//	}()
//	go l.Run(ctx)
//
// Tests usually drive the loop from the test goroutine instead, with
// RunPending or RunUntil.
package loop

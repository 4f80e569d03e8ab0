// Package async provides the explicit async-handle capability statebind uses
// to tell asynchronous actions and loadable values apart from plain ones.
//
// A Handle is a single-assignment result that moves from Loading to either
// HasValue or HasError exactly once:
//
//	p := async.Go(ctx, l, func(ctx context.Context) (any, error) {
//	    return api.FetchUser(ctx, id)
//	})
//	p.OnSettle(
//	    func(v any) { fmt.Println("user", v) },
//	    func(err error) { fmt.Println("failed", err) },
//	)
//
// Settlement and every callback run through the Dispatcher given to the
// promise, normally a *loop.Loop, so continuations never race with state
// writes on the loop. A promise without a dispatcher settles inline on the
// calling goroutine.
package async

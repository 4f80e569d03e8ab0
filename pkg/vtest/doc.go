// Package vtest provides testing helpers for bound components.
//
// The vtest package reduces boilerplate when testing definitions built with
// bind.Connect: it mounts a host component that is destroyed at test
// cleanup and offers assertions over props, render counts and output.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    c := vtest.Mount(t, def, nil)
//	    vtest.Call(t, c, "increase")
//	    vtest.ExpectProp(t, c, "count", 2)
//	    vtest.ExpectRenders(t, c, 1)
//	}
//
// # Asynchronous actions
//
// Drive the event loop until a condition holds with Settle:
//
//	vtest.Call(t, c, "increaseLater")
//	clock.Advance(30 * time.Millisecond)
//	vtest.Settle(t, l, func() bool { return c.Renders() == 1 })
package vtest

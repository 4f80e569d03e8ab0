// Package host is a minimal component host for bind definitions.
//
// A Component owns a prop map, counts forced renders and re-runs a render
// function on each one. It is enough to drive a definition end to end from
// tests, the terminal UI and the websocket server:
//
//	c, err := host.Mount(def, func(p map[string]any) string {
//	    return fmt.Sprintf("count: %v", p["count"])
//	})
//	c.Call(ctx, "increase")
//	c.Output()  // "count: 2"
//	c.Renders() // 1
//
// The host follows the lifecycle contract bind relies on: Data before
// Mounted, and Mounted and BeforeDestroy exactly once each.
package host

// Package live serves bound components over websockets.
//
// Every connection mounts its own host.Component from a shared
// bind.Definition, so all connected clients observe the same state
// containers. Clients send JSON requests:
//
//	{"call": "increase"}
//	{"call": "add", "args": [2]}
//	{"assign": {"name": "count", "value": 5}}
//
// and receive a "render" frame after every forced render of their
// component, plus a "result" or "error" frame per request.
//
// All component work runs on the event loop passed to New. The read
// goroutine only decodes requests and dispatches them.
//
// The router also exposes /healthz and, when a gatherer is configured,
// /metrics in the Prometheus text format.
package live

// Package middleware provides production-grade observers for statebind
// definitions.
//
// This package includes:
//   - OpenTelemetry tracing of bound actions
//   - Prometheus metrics for actions, renders and loadables
//   - Chain, to install several observers at once
//
// # OpenTelemetry
//
// The OpenTelemetry observer opens one span per action invocation, named
// "statebind.action <name>". The span is passed to the action body through
// its context and ends when the action's changes have been flushed, so
// asynchronous actions are traced until they settle.
//
//	def, err := bind.Connect(entries,
//	    bind.WithObserver(middleware.OpenTelemetry(
//	        middleware.WithTracerName("my-app"),
//	    )),
//	)
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given.
//
// # Prometheus Metrics
//
// The Prometheus observer records:
//   - statebind_actions_total{component,action,status}
//   - statebind_action_duration_seconds{component,action}
//   - statebind_action_errors_total{component,action,error_type}
//   - statebind_renders_total{component,reason}
//   - statebind_coalesced_changes_total{component}
//   - statebind_loadable_settled_total{component,binding,state}
//
// Use a dedicated registry to expose them:
//
//	reg := prometheus.NewRegistry()
//	obs := middleware.Prometheus(middleware.WithRegistry(reg))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # Combining observers
//
//	bind.WithObserver(middleware.Chain(
//	    middleware.OpenTelemetry(),
//	    middleware.Prometheus(),
//	))
package middleware

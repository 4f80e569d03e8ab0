// Package config loads the statebind CLI configuration.
//
// Values come from, in increasing priority: built-in defaults, an optional
// config file (yaml, toml or json, chosen by extension) and STATEBIND_
// environment variables, where nested keys use underscores:
//
//	STATEBIND_SERVER_ADDR=:9090
//	STATEBIND_METRICS_ENABLED=false
//	STATEBIND_DEMO_ASYNC_DELAY=50ms
//
// The config file path is taken from the --config flag or STATEBIND_CONFIG.
// Every loaded configuration is validated before it is returned.
//
// Example statebind.yaml:
//
//	server:
//	  addr: ":8080"
//	metrics:
//	  enabled: true
//	  path: /metrics
//	log:
//	  level: debug
//	  format: json
//	demo:
//	  async_delay: 30ms
//	  loadable_delay: 200ms
//	  loadable_value: 100
package config

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	c := Default()

	if c.Server.Addr != DefaultAddr {
		t.Errorf("expected addr %q, got %q", DefaultAddr, c.Server.Addr)
	}
	if !c.Metrics.Enabled || c.Metrics.Path != DefaultMetricsPath {
		t.Errorf("unexpected metrics config: %+v", c.Metrics)
	}
	if c.Demo.AsyncDelay != 30*time.Millisecond || c.Demo.LoadableDelay != 200*time.Millisecond {
		t.Errorf("unexpected demo delays: %+v", c.Demo)
	}
	if c.Demo.LoadableValue != 100 {
		t.Errorf("expected loadable value 100, got %d", c.Demo.LoadableValue)
	}
	if err := Validate(c); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statebind.yaml")
	content := `
server:
  addr: ":9999"
log:
  level: debug
  format: json
demo:
  async_delay: 50ms
  loadable_value: 7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Server.Addr != ":9999" {
		t.Errorf("expected :9999, got %q", c.Server.Addr)
	}
	if c.Log.Level != "debug" || c.Log.Format != "json" {
		t.Errorf("unexpected log config: %+v", c.Log)
	}
	if c.Demo.AsyncDelay != 50*time.Millisecond || c.Demo.LoadableValue != 7 {
		t.Errorf("unexpected demo config: %+v", c.Demo)
	}
	if c.Demo.LoadableDelay != 200*time.Millisecond {
		t.Errorf("expected default loadable delay, got %v", c.Demo.LoadableDelay)
	}
	if c.Path() != path {
		t.Errorf("expected path %q, got %q", path, c.Path())
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STATEBIND_SERVER_ADDR", ":7070")
	t.Setenv("STATEBIND_METRICS_ENABLED", "false")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Server.Addr != ":7070" {
		t.Errorf("expected env override, got %q", c.Server.Addr)
	}
	if c.Metrics.Enabled {
		t.Error("expected metrics disabled by env")
	}
}

func TestLoadConfigEnvPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.yaml")
	if err := os.WriteFile(path, []byte("tracing:\n  enabled: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvConfig, path)

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !c.Tracing.Enabled {
		t.Error("expected tracing enabled from STATEBIND_CONFIG file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "Addr"},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "Path"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "Level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "Format"},
		{"negative delay", func(c *Config) { c.Demo.AsyncDelay = -time.Second }, "AsyncDelay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := Validate(c)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error to mention %s, got %v", tt.field, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "statebind.yaml")
	c := Default()
	c.Server.Addr = ":1234"
	c.Demo.AsyncDelay = 75 * time.Millisecond

	if err := Save(c, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.Addr != ":1234" || loaded.Demo.AsyncDelay != 75*time.Millisecond {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: "warn", Format: "json"}.Logger(&buf).Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info must be filtered at warn level, got %q", buf.String())
	}

	LogConfig{Level: "debug", Format: "json"}.Logger(&buf).Debug("shown", "k", "v")
	if !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Errorf("expected json record, got %q", buf.String())
	}
}

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "STATEBIND"

	// EnvConfig names the environment variable holding the config file path.
	EnvConfig = "STATEBIND_CONFIG"

	// DefaultAddr is the default websocket server address.
	DefaultAddr = ":8080"

	// DefaultMetricsPath is the default Prometheus endpoint.
	DefaultMetricsPath = "/metrics"
)

var validate = validator.New()

// Config is the complete CLI configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Log     LogConfig     `mapstructure:"log"`
	Demo    DemoConfig    `mapstructure:"demo"`
	Watch   WatchConfig   `mapstructure:"watch"`

	// path is the config file that was read, if any.
	path string
}

// ServerConfig configures the websocket host.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path" validate:"required,startswith=/"`
	Namespace string `mapstructure:"namespace" validate:"required"`
}

// TracingConfig configures the OpenTelemetry observer.
type TracingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Name    string `mapstructure:"name" validate:"required"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// DemoConfig configures the counter demo.
type DemoConfig struct {
	AsyncDelay    time.Duration `mapstructure:"async_delay" validate:"min=0"`
	LoadableDelay time.Duration `mapstructure:"loadable_delay" validate:"min=0"`
	LoadableValue int           `mapstructure:"loadable_value"`
}

// WatchConfig configures the file source. An empty File disables it.
type WatchConfig struct {
	File string `mapstructure:"file"`
}

// Path returns the config file that was read, or "".
func (c Config) Path() string {
	return c.path
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", DefaultMetricsPath)
	v.SetDefault("metrics.namespace", "statebind")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.name", "statebind")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("demo.async_delay", 30*time.Millisecond)
	v.SetDefault("demo.loadable_delay", 200*time.Millisecond)
	v.SetDefault("demo.loadable_value", 100)
	v.SetDefault("watch.file", "")
}

// Default returns the configuration with only defaults applied.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}

// Load reads configuration from path (or STATEBIND_CONFIG when path is
// empty) and the environment, then validates it. A missing file is an
// error only when a path was given explicitly.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.path = path

	if err := Validate(c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the configuration against its validation tags.
func Validate(c Config) error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s: %w", strings.Join(fields, ", "), err)
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes cfg to path. The format follows the file extension.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("metrics.enabled", cfg.Metrics.Enabled)
	v.Set("metrics.path", cfg.Metrics.Path)
	v.Set("metrics.namespace", cfg.Metrics.Namespace)
	v.Set("tracing.enabled", cfg.Tracing.Enabled)
	v.Set("tracing.name", cfg.Tracing.Name)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("demo.async_delay", cfg.Demo.AsyncDelay.String())
	v.Set("demo.loadable_delay", cfg.Demo.LoadableDelay.String())
	v.Set("demo.loadable_value", cfg.Demo.LoadableValue)
	v.Set("watch.file", cfg.Watch.File)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Logger builds a slog logger writing to w.
func (l LogConfig) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch l.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

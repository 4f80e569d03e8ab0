// Package source feeds state containers from outside the component tree.
//
// A File watches a yaml file and stores every decoded revision into a
// state.Value on the event loop. Those writes happen outside any action, so
// every mounted component bound to the value renders immediately.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/vango-dev/statebind/pkg/async"
	"github.com/vango-dev/statebind/pkg/state"
	"gopkg.in/yaml.v3"
)

// Option configures a File.
type Option func(*options)

type options struct {
	key    string
	logger *slog.Logger
}

// WithKey decodes the file as a mapping and uses the value under key.
func WithKey(key string) Option {
	return func(o *options) { o.key = key }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// File watches path and mirrors its decoded contents into a state value.
type File[T any] struct {
	path   string
	target *state.Value[T]
	d      async.Dispatcher
	key    string
	logger *slog.Logger
}

// NewFile creates a file source. Writes to target are dispatched through d.
func NewFile[T any](path string, target *state.Value[T], d async.Dispatcher, opts ...Option) *File[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &File[T]{
		path:   path,
		target: target,
		d:      d,
		key:    o.key,
		logger: o.logger.With("source", path),
	}
}

// Decode parses one revision of the file.
func (f *File[T]) Decode(data []byte) (T, error) {
	var zero T
	if f.key == "" {
		var v T
		if err := yaml.Unmarshal(data, &v); err != nil {
			return zero, fmt.Errorf("decode %s: %w", f.path, err)
		}
		return v, nil
	}

	doc := map[string]T{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return zero, fmt.Errorf("decode %s: %w", f.path, err)
	}
	v, ok := doc[f.key]
	if !ok {
		return zero, fmt.Errorf("decode %s: key %q not found", f.path, f.key)
	}
	return v, nil
}

// Apply decodes data and stores the result on the dispatcher.
func (f *File[T]) Apply(data []byte) error {
	v, err := f.Decode(data)
	if err != nil {
		return err
	}
	store := func() { f.target.Set(context.Background(), v) }
	if f.d == nil {
		store()
		return nil
	}
	f.d.Dispatch(store)
	return nil
}

// Run applies the current contents and then every write until ctx is done.
// Decode errors are logged and the previous value is kept.
func (f *File[T]) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(f.path); err != nil {
		return fmt.Errorf("failed to watch file %s: %w", f.path, err)
	}

	f.reload()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			f.reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("watch error", "error", err)
		}
	}
}

func (f *File[T]) reload() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		f.logger.Warn("read failed", "error", err)
		return
	}
	if len(data) == 0 {
		return
	}
	if err := f.Apply(data); err != nil {
		f.logger.Warn("decode failed", "error", err)
		return
	}
	f.logger.Debug("source applied")
}

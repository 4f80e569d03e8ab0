package bind

import (
	"context"
	"errors"
	"testing"

	"github.com/vango-dev/statebind/pkg/state"
)

type countingContainer struct {
	*state.Value[int]
	stores int
}

func (c *countingContainer) Store(ctx context.Context, v any) error {
	c.stores++
	return c.Value.Store(ctx, v)
}

func TestModelWatcherStoresChangedValues(t *testing.T) {
	c := &countingContainer{Value: state.New(1)}
	def := mustConnect(t, Entries{{Name: "n", Value: Model(c)}})
	inst := mount(t, def, "a")

	watch, ok := def.Watch["n"]
	if !ok {
		t.Fatal("expected watcher for model binding")
	}

	if err := watch(context.Background(), inst, 1, 1); err != nil {
		t.Fatalf("watch failed: %v", err)
	}
	if c.stores != 0 {
		t.Errorf("equal value must not store, got %d stores", c.stores)
	}

	if err := watch(context.Background(), inst, 5, 1); err != nil {
		t.Fatalf("watch failed: %v", err)
	}
	if c.stores != 1 || c.Get() != 5 {
		t.Errorf("expected one store of 5, got %d stores, value %d", c.stores, c.Get())
	}
}

func TestModelWatcherTypeMismatch(t *testing.T) {
	c := state.New(1)
	def := mustConnect(t, Entries{{Name: "n", Value: Model(c)}})
	inst := mount(t, def, "a")

	err := def.Watch["n"](context.Background(), inst, "five", 1)
	if !errors.Is(err, state.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestStateBindingHasNoWatcher(t *testing.T) {
	def := mustConnect(t, Entries{{Name: "n", Value: state.New(1)}})
	if _, ok := def.Watch["n"]; ok {
		t.Error("one-way binding must not install a watcher")
	}
}

func TestOverridesMerge(t *testing.T) {
	count := state.New(3)
	var order []string

	custom := func(context.Context, Instance, ...any) (any, error) { return "custom", nil }
	customWatch := func(context.Context, Instance, any, any) error { return nil }

	def := mustConnect(t, Entries{
		{Name: "count", Value: Model(count)},
		{Name: "save", Value: func(context.Context) {}},
	}, WithOverrides(Overrides{
		Data: func(Instance) (map[string]any, error) {
			return map[string]any{"count": -1, "local": "x"}, nil
		},
		Methods: map[string]MethodFunc{"save": custom, "reset": custom},
		Watch:   map[string]WatchFunc{"count": customWatch, "local": customWatch},
		Mounted: func(Instance) {
			order = append(order, "mounted")
		},
		BeforeDestroy: func(Instance) {
			order = append(order, "beforeDestroy")
			if count.Subscribers() != 1 {
				t.Errorf("custom BeforeDestroy must run before release, got %d subscribers", count.Subscribers())
			}
		},
		Extra: map[string]any{"template": "<div/>"},
	}))

	inst := newFake("a")
	data, err := def.Data(inst)
	if err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	if data["count"] != 3 {
		t.Errorf("bound prop must override custom data, got %v", data["count"])
	}
	if data["local"] != "x" {
		t.Errorf("expected custom data to be kept, got %v", data["local"])
	}

	if v, _ := def.Methods["save"](context.Background(), inst); v == "custom" {
		t.Error("bound action must override custom method")
	}
	if v, _ := def.Methods["reset"](context.Background(), inst); v != "custom" {
		t.Error("expected custom method to be kept")
	}

	if _, ok := def.Watch["local"]; !ok {
		t.Error("expected custom watcher to be kept")
	}
	if err := def.Watch["count"](context.Background(), inst, 10, 3); err != nil || count.Get() != 10 {
		t.Errorf("model watcher must override custom watcher, got count %d err %v", count.Get(), err)
	}

	if def.Extra["template"] != "<div/>" {
		t.Errorf("expected extra to pass through, got %v", def.Extra)
	}

	def.Mounted(inst)
	if count.Subscribers() != 1 {
		t.Errorf("expected subscriptions before custom Mounted, got %d", count.Subscribers())
	}
	def.BeforeDestroy(inst)

	if len(order) != 2 || order[0] != "mounted" || order[1] != "beforeDestroy" {
		t.Errorf("unexpected hook order: %v", order)
	}
	if count.Subscribers() != 0 {
		t.Errorf("expected subscriptions released, got %d", count.Subscribers())
	}
}

func TestCustomDataError(t *testing.T) {
	boom := errors.New("boom")
	def := mustConnect(t, Entries{{Name: "n", Value: 1}}, WithOverrides(Overrides{
		Data: func(Instance) (map[string]any, error) { return nil, boom },
	}))

	if _, err := def.Data(newFake("a")); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if def.Instances() != 0 {
		t.Errorf("failed Data must not retain the instance, got %d", def.Instances())
	}
}

func TestInstanceKnownOnlyAfterMount(t *testing.T) {
	def := mustConnect(t, Entries{{Name: "count", Value: state.New(0)}})
	inst := newFake("a")

	if _, err := def.Data(inst); err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	if def.Instances() != 0 {
		t.Errorf("expected no instance before Mounted, got %d", def.Instances())
	}

	def.Mounted(inst)
	if def.Instances() != 1 {
		t.Errorf("expected 1 instance after Mounted, got %d", def.Instances())
	}
}

func TestConnectDefaults(t *testing.T) {
	def := mustConnect(t, Entries{{Name: "title", Value: "hello"}})

	if def.Name != "component" {
		t.Errorf("expected default name, got %q", def.Name)
	}
	data, err := def.Data(newFake("a"))
	if err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	if data["title"] != "hello" {
		t.Errorf("expected literal prop, got %v", data["title"])
	}
	if len(def.Methods) != 0 || len(def.Watch) != 0 {
		t.Errorf("expected no methods or watchers, got %d and %d", len(def.Methods), len(def.Watch))
	}
}

func TestConnectEmpty(t *testing.T) {
	def := mustConnect(t, nil, WithName("empty"))
	inst := mount(t, def, "a")

	if len(inst.props) != 0 {
		t.Errorf("expected no props, got %v", inst.props)
	}
	def.BeforeDestroy(inst)
}

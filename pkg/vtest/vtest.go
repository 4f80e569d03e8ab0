package vtest

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/statebind/pkg/async"
	"github.com/vango-dev/statebind/pkg/bind"
	"github.com/vango-dev/statebind/pkg/host"
	"github.com/vango-dev/statebind/pkg/loop"
)

// SettleTimeout bounds how long Settle waits.
var SettleTimeout = 2 * time.Second

// Mount mounts def on a host component and destroys it when the test ends.
//
// Example:
//
//	c := vtest.Mount(t, def, func(p map[string]any) string {
//	    return fmt.Sprint(p["count"])
//	})
func Mount(t testing.TB, def *bind.Definition, render host.RenderFunc, opts ...host.Option) *host.Component {
	t.Helper()
	c, err := host.Mount(def, render, opts...)
	if err != nil {
		t.Fatalf("mount %s: %v", def.Name, err)
	}
	t.Cleanup(c.Destroy)
	return c
}

// Call invokes a method and fails the test if it returns an error.
//
// Example:
//
//	vtest.Call(t, c, "add", 5)
func Call(t testing.TB, c *host.Component, method string, args ...any) any {
	t.Helper()
	v, err := c.Call(context.Background(), method, args...)
	if err != nil {
		t.Fatalf("call %s: %v", method, err)
	}
	return v
}

// Settle runs l until cond holds, failing the test after SettleTimeout.
func Settle(t testing.TB, l *loop.Loop, cond func() bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), SettleTimeout)
	defer cancel()
	if err := l.RunUntil(ctx, cond); err != nil {
		t.Fatalf("settle: %v", err)
	}
}

// ExpectProp asserts that a prop equals want.
//
// Example:
//
//	vtest.ExpectProp(t, c, "count", 2)
func ExpectProp(t testing.TB, c *host.Component, name string, want any) {
	t.Helper()
	got := c.Prop(name)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected prop %s = %#v, got %#v", name, want, got)
	}
}

// ExpectPhase asserts that a loadable prop is an async.Snapshot in phase.
//
// Example:
//
//	vtest.ExpectPhase(t, c, "user", async.Loading)
func ExpectPhase(t testing.TB, c *host.Component, name string, phase async.Phase) async.Snapshot {
	t.Helper()
	snap, ok := c.Prop(name).(async.Snapshot)
	if !ok {
		t.Fatalf("expected prop %s to be an async.Snapshot, got %T", name, c.Prop(name))
	}
	if snap.State != phase {
		t.Errorf("expected prop %s in phase %s, got %s", name, phase, snap.State)
	}
	return snap
}

// ExpectRenders asserts the number of forced renders.
func ExpectRenders(t testing.TB, c *host.Component, want int) {
	t.Helper()
	if got := c.Renders(); got != want {
		t.Errorf("expected %d renders, got %d", want, got)
	}
}

// ExpectOutput asserts that the rendered output contains expected.
//
// Example:
//
//	vtest.ExpectOutput(t, c, "count: 2")
func ExpectOutput(t testing.TB, c *host.Component, expected string) {
	t.Helper()
	out := c.Output()
	if !strings.Contains(out, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(out, 500))
	}
}

// ExpectNotOutput asserts that the rendered output does not contain unexpected.
func ExpectNotOutput(t testing.TB, c *host.Component, unexpected string) {
	t.Helper()
	out := c.Output()
	if strings.Contains(out, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(out, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

package statebind_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vango-dev/statebind"
)

func TestFacadeCounter(t *testing.T) {
	count := statebind.NewState(0)
	def, err := statebind.Connect(statebind.Entries{
		{Name: "count", Value: statebind.Model(count)},
		{Name: "label", Value: statebind.Literal("clicks")},
		{Name: "increase", Value: func(ctx context.Context) {
			if !statebind.InScope(ctx) {
				t.Error("expected action to run in scope")
			}
			count.Set(ctx, count.Get()+1)
			count.Set(ctx, count.Get()+1)
		}},
	}, statebind.WithName("counter"))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	c, err := statebind.Mount(def, nil)
	if err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	defer c.Destroy()

	if _, err := c.Call(context.Background(), "increase"); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if c.Prop("count") != 2 {
		t.Errorf("expected count 2, got %v", c.Prop("count"))
	}
	if c.Renders() != 1 {
		t.Errorf("expected one render, got %d", c.Renders())
	}
	if c.Prop("label") != "clicks" {
		t.Errorf("expected literal prop, got %v", c.Prop("label"))
	}
}

func TestFacadeLoadable(t *testing.T) {
	p := statebind.NewPromise(nil)
	holder := statebind.NewState[any](p)

	def, err := statebind.Connect(statebind.Entries{
		{Name: "data", Value: statebind.Loadable(holder)},
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	c, err := statebind.Mount(def, nil)
	if err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	defer c.Destroy()

	if snap := c.Prop("data").(statebind.Snapshot); snap.State != statebind.Loading {
		t.Fatalf("expected loading, got %v", snap.State)
	}

	p.Resolve(42)

	snap := c.Prop("data").(statebind.Snapshot)
	if snap.State != statebind.HasValue || snap.Value != 42 {
		t.Errorf("expected settled 42, got %+v", snap)
	}
}

func TestFacadeErrors(t *testing.T) {
	_, err := statebind.Connect(statebind.Entries{
		{Name: "x", Value: 1},
		{Name: "x", Value: 2},
	})
	if !errors.Is(err, statebind.ErrDuplicateBinding) {
		t.Errorf("expected ErrDuplicateBinding, got %v", err)
	}

	if statebind.InScope(context.Background()) {
		t.Error("expected no scope outside actions")
	}
}

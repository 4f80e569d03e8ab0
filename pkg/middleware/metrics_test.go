package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/vango-dev/statebind/pkg/async"
	"github.com/vango-dev/statebind/pkg/bind"
	"github.com/vango-dev/statebind/pkg/state"
)

type testInstance struct {
	props   map[string]any
	renders int
}

func (i *testInstance) SetProp(name string, v any) { i.props[name] = v }
func (i *testInstance) ForceUpdate()               { i.renders++ }

func mountTest(t *testing.T, def *bind.Definition) *testInstance {
	t.Helper()
	inst := &testInstance{props: map[string]any{}}
	if _, err := def.Data(inst); err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	def.Mounted(inst)
	return inst
}

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestPrometheusRecordsActions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Prometheus(WithRegistry(reg))

	count := state.New(0)
	boom := errors.New("validation failed")
	def, err := bind.Connect(bind.Entries{
		{Name: "count", Value: count},
		{Name: "inc", Value: func(ctx context.Context) {
			count.Set(ctx, count.Get()+1)
			count.Set(ctx, count.Get()+1)
		}},
		{Name: "fail", Value: func(context.Context) error { return boom }},
	}, bind.WithName("counter"), bind.WithObserver(m))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	inst := mountTest(t, def)

	def.Methods["inc"](context.Background(), inst)
	def.Methods["fail"](context.Background(), inst)
	count.Set(context.Background(), 10)

	if got := metricCounterValue(t, m.actionsTotal.WithLabelValues("counter", "inc", "success")); got != 1 {
		t.Errorf("actions_total(inc, success)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.actionsTotal.WithLabelValues("counter", "fail", "error")); got != 1 {
		t.Errorf("actions_total(fail, error)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.actionErrors.WithLabelValues("counter", "fail", "validation")); got != 1 {
		t.Errorf("action_errors_total(validation)=%v, want 1", got)
	}
	if got := metricHistogramCount(t, m.actionDuration.WithLabelValues("counter", "inc")); got != 1 {
		t.Errorf("action_duration_seconds count=%d, want 1", got)
	}
	if got := metricCounterValue(t, m.rendersTotal.WithLabelValues("counter", bind.ReasonFlush)); got != 1 {
		t.Errorf("renders_total(flush)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.rendersTotal.WithLabelValues("counter", bind.ReasonExternal)); got != 1 {
		t.Errorf("renders_total(external)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.coalescedChanges.WithLabelValues("counter")); got != 1 {
		t.Errorf("coalesced_changes_total=%v, want 1", got)
	}
}

func TestPrometheusRecordsLoadables(t *testing.T) {
	m := Prometheus(WithRegistry(prometheus.NewRegistry()), WithNamespace("app"))

	pending := async.New(nil)
	def, err := bind.Connect(bind.Entries{
		{Name: "user", Value: bind.Loadable(state.New[any](pending))},
	}, bind.WithName("profile"), bind.WithObserver(m))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	mountTest(t, def)

	pending.Reject(errors.New("offline"))

	if got := metricCounterValue(t, m.loadableSettled.WithLabelValues("profile", "user", "hasError")); got != 1 {
		t.Errorf("loadable_settled_total(hasError)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.rendersTotal.WithLabelValues("profile", bind.ReasonLoadable)); got != 1 {
		t.Errorf("renders_total(loadable)=%v, want 1", got)
	}
}

func TestPrometheusRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Prometheus(WithRegistry(reg), WithConstLabels(prometheus.Labels{"env": "test"}))
	m.ActionFinished(context.Background(), "c", "a", time.Millisecond, nil)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "statebind_actions_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected statebind_actions_total to be registered")
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, "timeout"},
		{context.Canceled, "canceled"},
		{bind.ErrInvalidState, "invalid_state"},
		{errors.New(`statebind: action "x" panicked: boom`), "panic"},
		{errors.New("request timeout"), "timeout"},
		{errors.New("user not found"), "not_found"},
		{errors.New("Validation error"), "validation"},
		{errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		if got := categorizeError(tt.err); got != tt.want {
			t.Errorf("categorizeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func newRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

package bind

import (
	"context"
	"testing"
)

type fakeInstance struct {
	name    string
	props   map[string]any
	renders int
	errs    map[string]error
	log     []string
}

func newFake(name string) *fakeInstance {
	return &fakeInstance{name: name, props: map[string]any{}, errs: map[string]error{}}
}

func (f *fakeInstance) SetProp(name string, value any) {
	f.props[name] = value
	f.log = append(f.log, "set:"+name)
}

func (f *fakeInstance) ForceUpdate() {
	f.renders++
	f.log = append(f.log, "render")
}

func (f *fakeInstance) ReportError(name string, err error) {
	f.errs[name] = err
}

// plainInstance does not implement ErrorReporter.
type plainInstance struct {
	props   map[string]any
	renders int
}

func (p *plainInstance) SetProp(name string, value any) { p.props[name] = value }
func (p *plainInstance) ForceUpdate()                   { p.renders++ }

func mount(t *testing.T, def *Definition, name string) *fakeInstance {
	t.Helper()
	inst := newFake(name)
	data, err := def.Data(inst)
	if err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	for k, v := range data {
		inst.props[k] = v
	}
	def.Mounted(inst)
	return inst
}

func mustConnect(t *testing.T, entries Entries, opts ...Option) *Definition {
	t.Helper()
	def, err := Connect(entries, opts...)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	return def
}

func call(t *testing.T, def *Definition, inst Instance, name string, args ...any) any {
	t.Helper()
	m, ok := def.Methods[name]
	if !ok {
		t.Fatalf("method %q not bound", name)
	}
	v, err := m(context.Background(), inst, args...)
	if err != nil {
		t.Fatalf("method %q failed: %v", name, err)
	}
	return v
}

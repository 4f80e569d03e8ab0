package scope

import "sync"

// Change is one state mutation recorded while a scope was active.
type Change struct {
	// Name is the binding name the change was observed under.
	Name string

	// Source identifies the subscriber that recorded the change. The binder
	// stores itself here so foreign entries can be told apart at flush time.
	Source any

	// Read re-reads the current value of the binding.
	Read func() (any, error)
}

// Record collects changes for one action invocation of one owner.
type Record struct {
	owner any

	mu      sync.Mutex
	changes []Change
	closed  bool
}

// NewRecord creates an open record owned by owner.
func NewRecord(owner any) *Record {
	return &Record{owner: owner}
}

// Owner returns the instance that opened the record.
func (r *Record) Owner() any {
	return r.owner
}

// Append records a change. It reports false if the record is already closed.
func (r *Record) Append(c Change) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.changes = append(r.changes, c)
	return true
}

// Drain closes the record and returns the changes in the order they were
// appended. Later calls return nil.
func (r *Record) Drain() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	out := r.changes
	r.changes = nil
	return out
}

// Len returns the number of pending changes.
func (r *Record) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

// Closed reports whether the record has been drained.
func (r *Record) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

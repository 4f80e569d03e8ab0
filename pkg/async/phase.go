package async

import "encoding/json"

// Phase is the lifecycle position of an async value.
type Phase int

const (
	// Loading indicates the value has not settled yet.
	Loading Phase = iota

	// HasValue indicates the value settled successfully.
	HasValue

	// HasError indicates the value settled with an error.
	HasError
)

// String returns the phase name used in loadable descriptors.
func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case HasValue:
		return "hasValue"
	case HasError:
		return "hasError"
	default:
		return "unknown"
	}
}

// Snapshot is the three-phase descriptor of an async value at one instant.
// Value is set only for HasValue and Err only for HasError.
type Snapshot struct {
	State Phase
	Value any
	Err   error
}

// MarshalJSON encodes the descriptor as {"state": "...", "value": ...} or
// {"state": "hasError", "error": "..."}, with the phase as its name.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := struct {
		State string `json:"state"`
		Value *any   `json:"value,omitempty"`
		Error string `json:"error,omitempty"`
	}{State: s.State.String()}
	switch s.State {
	case HasValue:
		v := s.Value
		out.Value = &v
	case HasError:
		if s.Err != nil {
			out.Error = s.Err.Error()
		}
	}
	return json.Marshal(out)
}

// Settled reports whether the snapshot is no longer loading.
func (s Snapshot) Settled() bool {
	return s.State != Loading
}

// Dispatcher runs callbacks on the owning logical thread.
// *loop.Loop implements it.
type Dispatcher interface {
	Dispatch(fn func())
}

// Handle is an in-flight asynchronous result.
type Handle interface {
	// Loadable derives the current descriptor.
	Loadable() Snapshot

	// Subscribe registers fn to run once when the handle settles.
	// Subscribing to a settled handle registers nothing.
	Subscribe(fn func()) (unsubscribe func())

	// OnSettle registers exactly one of onValue or onError to run after
	// settlement. Either may be nil. Registering on a settled handle still
	// runs the callback, deferred through the dispatcher.
	OnSettle(onValue func(any), onError func(error))
}

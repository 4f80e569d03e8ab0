package state

import "reflect"

// Equal reports whether two values held by containers are the same.
// Uses == for comparable dynamic types and reflect.DeepEqual for others.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		// Interfaces holding uncomparable values still panic on ==.
		defer func() { _ = recover() }()
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

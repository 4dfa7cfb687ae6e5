package state

import "reflect"

// equal reports whether a write carries the same value as currently stored,
// deciding the silent-skip dedup guard.
//
// Comparable values (numbers, strings, bools, pointers, comparable structs)
// compare by ==, so pointers compare by identity. Values whose dynamic type
// is not comparable (slices, maps, functions) always count as changed: a
// freshly built composite value re-dispatches even when structurally
// identical to the stored one. nil equals only nil.
func equal(a, b any) (eq bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if !ta.Comparable() {
		return false
	}

	// A comparable static type can still hold incomparable values at
	// runtime (interface-typed fields); those count as changed.
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

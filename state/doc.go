// Package state implements a named-state registry with change notification.
//
// A Registry maps unique names to mutable values and tells interested parties
// when those values change. It is the coordination point that lets
// independent game-logic modules share state without referencing each other:
// one module creates and writes a state, others subscribe to it, none of
// them know who else is on the wire.
//
// # Key Features
//
//   - Named slots: Create, Get, Change, Delete with per-slot locking
//   - Watchers: persistent or one-shot callbacks on value changes
//   - Deferred writes: ChangeQueued coalesces rapid updates into one
//     dispatch per tick
//   - WaitForChange: block the calling goroutine until the next change
//   - Diagnostics: rejected operations are reported, never fatal
//
// # Usage
//
//	reg := state.New(state.WithTickSource(src))
//	defer reg.Close()
//
//	reg.Create("Score", 0)
//
//	sub, _ := reg.Subscribe("Score", func(newValue, oldValue any) {
//	    fmt.Printf("score %v -> %v\n", oldValue, newValue)
//	})
//	defer sub.Unsubscribe()
//
//	reg.Change("Score", 10)       // dispatches (10, 0)
//	reg.Change("Score", 10)       // equal value, no dispatch
//
//	reg.ChangeQueued("Score", 11) // coalesced until the next tick
//	reg.ChangeQueued("Score", 12)
//	// tick fires: one dispatch with (12, 10)
//
// # Dispatch Order
//
// Watchers for a name fire in reverse registration order, most recent
// first. Callbacks run on a dispatch goroutine, never on the writer's: a
// Change call returns once its watchers are scheduled. Within one change
// the callbacks run sequentially, so ordering between them is observable;
// callbacks triggered by distinct writes may interleave. A panicking
// callback is recovered and reported without affecting its siblings.
//
// # Guards
//
// Writes are refused, with a diagnostic and a sentinel error, when the
// state is absent or locked. A write carrying a value equal to the stored
// one is silently skipped. Callers may ignore the returned errors; every
// refusal is also visible through the logger and the optional diagnostic
// handler.
package state

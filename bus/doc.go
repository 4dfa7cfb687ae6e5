// Package bus provides the message bus carrying state-change events out of a
// process.
//
// # Overview
//
// The MessageBus interface is a broadcast-only pub/sub surface: every
// subscriber to a subject receives every message published to it. It exists
// so hosts can observe registry activity (dashboards, recorders, debug
// consoles) without coupling to the registry itself. It is not a state
// synchronization channel; consumers get notifications, not authority.
//
// # Available Implementations
//
//   - MemoryBus: in-process implementation for tests and single-process hosts
//   - NATSBus: cross-process delivery using NATS
//
// # Delivery
//
// Subscriptions are buffered channels. A slow consumer never blocks a
// publisher: when a buffer is full the oldest undelivered message is dropped
// so the newest state wins. Consumers needing every event must drain
// promptly or buffer on their side.
//
//	sub, _ := b.Subscribe("state.Score")
//	for msg := range sub.Messages() {
//	    // handle event
//	}
package bus

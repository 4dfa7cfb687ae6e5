// Package bridge forwards accepted registry writes onto a message bus, so
// consumers outside the owning process can follow the change feed.
//
// A Bridge attaches to a registry as an observer and publishes one JSON
// ChangeEvent per accepted write on the subject <prefix>.<state-name>.
// Events that cannot be serialized or published are dropped with a log
// line; the registry's own dispatch is never affected.
//
// # Usage
//
//	mb := bus.NewMemoryBus(bus.DefaultConfig())
//	b, err := bridge.Attach(reg, mb, bridge.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer b.Close()
//
//	feed, err := bridge.Follow(mb, bridge.DefaultConfig(), "Score")
//	if err != nil {
//		return err
//	}
//	defer feed.Cancel()
//
//	for ev := range feed.Events() {
//		fmt.Println(ev.Name, ev.NewValue)
//	}
//
// Publishing carries the active trace context inside the event, so a
// consumer with a configured telemetry provider can continue the trace
// across the bus.
package bridge

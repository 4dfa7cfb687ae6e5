// Package shutdown provides phase-ordered graceful shutdown for hosts that
// compose a registry with tick sources, bridges and buses.
//
// Teardown order matters here: the tick source must stop before the
// registry closes so no flush races the teardown, a final flush drains
// writes queued by the last tick, and the bus outlives the bridge so the
// last events still go out. The phase constants encode that order; lower
// phases run first and handlers in the same phase run concurrently.
//
// # Usage
//
//	coord := shutdown.NewCoordinator(shutdown.DefaultConfig())
//	coord.HandleSignals() // SIGTERM, SIGINT
//
//	coord.RegisterFuncWithPhase("tick", func(ctx context.Context) error {
//		src.Stop()
//		return nil
//	}, shutdown.PhaseTick)
//	coord.RegisterFuncWithPhase("flush", func(ctx context.Context) error {
//		return reg.Flush()
//	}, shutdown.PhaseFlush)
//	coord.RegisterFuncWithPhase("registry", func(ctx context.Context) error {
//		return reg.Close()
//	}, shutdown.PhaseRegistry)
//	coord.RegisterFuncWithPhase("bus", func(ctx context.Context) error {
//		return mb.Close()
//	}, shutdown.PhaseBus)
//
//	<-coord.Done()
//
// Manual shutdown with timeout:
//
//	if err := coord.ShutdownWithTimeout(10 * time.Second); err != nil {
//		log.Printf("shutdown incomplete: %v", err)
//	}
//
// Handlers should respect context cancellation; the context is canceled
// when the timeout is reached.
package shutdown

// Package tick provides the periodic signals that drive deferred-write
// flushes. A registry subscribes to exactly one Source at construction and
// flushes its queue on every delivered tick.
//
// Two sources are provided: Interval wraps a time.Ticker for wall-clock
// driven hosts, and Manual hands the schedule to the host, which calls Tick
// once per frame or simulation step.
package tick

import (
	"errors"
	"sync/atomic"
	"time"
)

// Common errors.
var (
	ErrInvalidInterval = errors.New("tick interval must be positive")
)

// Source delivers periodic signals on a channel.
type Source interface {
	// C returns the channel ticks are delivered on. The channel is never
	// closed; consumers stop by their own signal.
	C() <-chan time.Time

	// Stop ends delivery and releases resources. Idempotent.
	Stop()
}

// Interval is a Source backed by a time.Ticker.
type Interval struct {
	ticker  *time.Ticker
	stopped atomic.Bool
}

// NewInterval creates a Source ticking every d.
func NewInterval(d time.Duration) (*Interval, error) {
	if d <= 0 {
		return nil, ErrInvalidInterval
	}
	return &Interval{ticker: time.NewTicker(d)}, nil
}

// C returns the tick channel.
func (i *Interval) C() <-chan time.Time {
	return i.ticker.C
}

// Stop stops the underlying ticker.
func (i *Interval) Stop() {
	if i.stopped.Swap(true) {
		return
	}
	i.ticker.Stop()
}

// Manual is a Source driven explicitly by the host, one Tick per frame or
// simulation step. Ticks delivered while a previous tick is still pending
// coalesce into one; a flush drains the whole queue regardless of how many
// ticks requested it.
type Manual struct {
	ch      chan time.Time
	stopped atomic.Bool
}

// NewManual creates a host-driven Source.
func NewManual() *Manual {
	return &Manual{ch: make(chan time.Time, 1)}
}

// C returns the tick channel.
func (m *Manual) C() <-chan time.Time {
	return m.ch
}

// Tick delivers one tick. No-op after Stop.
func (m *Manual) Tick() {
	if m.stopped.Load() {
		return
	}
	select {
	case m.ch <- time.Now():
	default:
		// previous tick not consumed yet; coalesce
	}
}

// Stop ends delivery. The channel is never closed, so a racing Tick is
// harmless.
func (m *Manual) Stop() {
	m.stopped.Store(true)
}

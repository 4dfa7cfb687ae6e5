package bridge

import (
	"encoding/json"
	"sync/atomic"

	"github.com/quembly/statekit/bus"
)

// Feed is a decoded subscription to one state's change events. It works
// against any bus the publishing bridge writes to, in or out of process.
type Feed struct {
	ch     chan ChangeEvent
	busSub bus.Subscription
	stop   chan struct{}
	closed atomic.Bool
}

// Follow subscribes to the change events of one state name.
func Follow(mb bus.MessageBus, cfg Config, name string) (*Feed, error) {
	if mb == nil {
		return nil, ErrNoBus
	}
	cfg = cfg.withDefaults()

	busSub, err := mb.Subscribe(Subject(cfg.SubjectPrefix, name))
	if err != nil {
		return nil, err
	}

	f := &Feed{
		ch:     make(chan ChangeEvent, cfg.BufferSize),
		busSub: busSub,
		stop:   make(chan struct{}),
	}
	go f.relay()
	return f, nil
}

// Events returns the feed channel. It is closed when the feed is canceled
// or the underlying bus subscription ends.
func (f *Feed) Events() <-chan ChangeEvent {
	return f.ch
}

// Cancel stops the feed and releases the bus subscription. Idempotent.
func (f *Feed) Cancel() error {
	if f.closed.Swap(true) {
		return nil
	}
	close(f.stop)
	return f.busSub.Unsubscribe()
}

// relay decodes bus messages onto the feed channel. Only relay closes the
// channel, so Cancel never races a send.
func (f *Feed) relay() {
	defer close(f.ch)

	for {
		select {
		case <-f.stop:
			return
		case msg, ok := <-f.busSub.Messages():
			if !ok {
				return
			}

			var ev ChangeEvent
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				continue // skip malformed messages
			}

			select {
			case f.ch <- ev:
			default:
				// feed consumer is behind, drop
			}
		}
	}
}

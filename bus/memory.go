package bus

import (
	"sync"
	"sync/atomic"
)

// MemoryBus implements MessageBus using in-memory channels.
// Useful for testing and single-process hosts.
type MemoryBus struct {
	config Config

	mu     sync.RWMutex
	subs   map[string][]*memorySub
	closed atomic.Bool
}

type memorySub struct {
	subject string
	ch      chan *Message
	closed  atomic.Bool
	bus     *MemoryBus

	// sendMu serializes delivery so the evict-then-send path cannot
	// interleave between publishers, and guards chClosed.
	sendMu   sync.Mutex
	chClosed bool
}

// closeCh closes the message channel exactly once.
func (s *memorySub) closeCh() {
	s.sendMu.Lock()
	if !s.chClosed {
		s.chClosed = true
		close(s.ch)
	}
	s.sendMu.Unlock()
}

// NewMemoryBus creates a new in-memory message bus.
func NewMemoryBus(cfg Config) *MemoryBus {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}

	return &MemoryBus{
		config: cfg,
		subs:   make(map[string][]*memorySub),
	}
}

// Publish sends a message to all subscribers.
func (b *MemoryBus) Publish(subject string, data []byte) error {
	if err := ValidateSubject(subject); err != nil {
		return err
	}
	if b.closed.Load() {
		return ErrClosed
	}

	msg := &Message{
		Subject: subject,
		Data:    data,
	}

	b.mu.RLock()
	subs := b.subs[subject]
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.deliver(msg)
	}

	return nil
}

// deliver places msg in the subscription buffer, evicting the oldest
// undelivered message if the buffer is full. The newest state wins.
func (s *memorySub) deliver(msg *Message) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	// Closers set the flag before taking sendMu, so the channel is still
	// open if the flag is clear here.
	if s.closed.Load() {
		return
	}

	select {
	case s.ch <- msg:
		return
	default:
	}

	// Buffer full: drop the oldest, then retry once.
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- msg:
	default:
	}
}

// Subscribe creates a subscription to a subject.
func (b *MemoryBus) Subscribe(subject string) (Subscription, error) {
	if err := ValidateSubject(subject); err != nil {
		return nil, err
	}
	if b.closed.Load() {
		return nil, ErrClosed
	}

	sub := &memorySub{
		subject: subject,
		ch:      make(chan *Message, b.config.BufferSize),
		bus:     b,
	}

	b.mu.Lock()
	b.subs[subject] = append(b.subs[subject], sub)
	b.mu.Unlock()

	return sub, nil
}

// Close shuts down the bus.
func (b *MemoryBus) Close() error {
	if b.closed.Swap(true) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, subs := range b.subs {
		for _, sub := range subs {
			sub.closed.Store(true)
			sub.closeCh()
		}
	}

	b.subs = nil

	return nil
}

// Messages returns the message channel.
func (s *memorySub) Messages() <-chan *Message {
	return s.ch
}

// Unsubscribe cancels the subscription.
func (s *memorySub) Unsubscribe() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.bus.mu.Lock()
	if s.bus.subs != nil {
		s.bus.removeSub(s.subject, s)
	}
	s.bus.mu.Unlock()

	s.closeCh()
	return nil
}

// removeSub removes a subscription from the subject list.
func (b *MemoryBus) removeSub(subject string, target *memorySub) {
	subs := b.subs[subject]
	for i, sub := range subs {
		if sub == target {
			b.subs[subject] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[subject]) == 0 {
		delete(b.subs, subject)
	}
}

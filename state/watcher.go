package state

import (
	"github.com/google/uuid"

	"github.com/quembly/statekit/diag"
)

// Subscription is a handle to one registered watcher. Function values are
// not comparable in Go, so removal is by handle rather than by callback
// reference.
type Subscription struct {
	id   string
	name string
	fn   ChangeFunc
	once bool
	reg  *Registry
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Name returns the state name the subscription watches.
func (s *Subscription) Name() string {
	return s.name
}

// Unsubscribe removes the watcher. Idempotent; safe to call from inside the
// watcher's own callback.
func (s *Subscription) Unsubscribe() {
	if s.reg.closed.Load() {
		return
	}

	s.reg.mu.Lock()
	s.reg.removeLocked(s)
	s.reg.mu.Unlock()
}

// Subscribe registers a callback invoked on every change of the named
// state. The state must exist. Duplicate callbacks are allowed; each
// registration is independent.
func (r *Registry) Subscribe(name string, fn ChangeFunc) (*Subscription, error) {
	return r.subscribe(name, fn, false)
}

// SubscribeOnce registers a callback invoked on the next change of the
// named state only. The watcher is removed when the change is scheduled,
// before its callback runs, so a second change can never re-fire it.
func (r *Registry) SubscribeOnce(name string, fn ChangeFunc) (*Subscription, error) {
	return r.subscribe(name, fn, true)
}

func (r *Registry) subscribe(name string, fn ChangeFunc, once bool) (*Subscription, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	if fn == nil {
		return nil, ErrNilCallback
	}

	r.mu.Lock()
	if _, ok := r.states[name]; !ok {
		r.mu.Unlock()
		r.raise(diag.CodeNotFound, name, "subscribe")
		return nil, ErrNotFound
	}

	sub := &Subscription{
		id:   uuid.NewString(),
		name: name,
		fn:   fn,
		once: once,
		reg:  r,
	}
	r.watchers[name] = append(r.watchers[name], sub)
	r.mu.Unlock()

	return sub, nil
}

// Unsubscribe removes every watcher registered for the named state. It
// works on orphaned watcher lists too, so hosts can clean up after a
// Delete.
func (r *Registry) Unsubscribe(name string) error {
	if r.closed.Load() {
		return ErrClosed
	}

	r.mu.Lock()
	delete(r.watchers, name)
	r.mu.Unlock()
	return nil
}

// removeLocked removes one subscription by identity. An emptied list is
// dropped from the map so existence checks see "no watchers". Caller holds
// r.mu.
func (r *Registry) removeLocked(target *Subscription) {
	list := r.watchers[target.name]
	for i, sub := range list {
		if sub == target {
			r.watchers[target.name] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(r.watchers[target.name]) == 0 {
		delete(r.watchers, target.name)
	}
}

// watcherCount returns the number of watchers registered for a name.
func (r *Registry) watcherCount(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.watchers[name])
}

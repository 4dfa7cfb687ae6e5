package state

import (
	"time"

	"github.com/quembly/statekit/diag"
)

// Create inserts a new named state holding value, unlocked. Creating a name
// that already exists is refused: the stored value is untouched and the
// duplicate is reported.
func (r *Registry) Create(name string, value any) error {
	if r.closed.Load() {
		return ErrClosed
	}

	r.mu.Lock()
	if _, ok := r.states[name]; ok {
		r.mu.Unlock()
		r.raise(diag.CodeDuplicateCreate, name, "create")
		return ErrExists
	}
	r.states[name] = &slot{value: value}
	r.mu.Unlock()

	r.logger.StateCreated(name)
	return nil
}

// Get returns the current value of a state. Pure read, no side effects.
func (r *Registry) Get(name string) (any, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}

	r.mu.RLock()
	s, ok := r.states[name]
	if !ok {
		r.mu.RUnlock()
		r.raise(diag.CodeNotFound, name, "get")
		return nil, ErrNotFound
	}
	v := s.value
	r.mu.RUnlock()

	return v, nil
}

// Change writes a new value and dispatches the change to all watchers of
// the name. The write is refused if the state is absent or locked, and
// silently skipped if the value equals the stored one.
func (r *Registry) Change(name string, value any) error {
	if r.closed.Load() {
		return ErrClosed
	}

	r.mu.Lock()
	s, ok := r.states[name]
	if !ok {
		r.mu.Unlock()
		r.raise(diag.CodeNotFound, name, "change")
		return ErrNotFound
	}
	if s.locked {
		r.mu.Unlock()
		r.raise(diag.CodeLockedWrite, name, "change")
		return ErrLocked
	}
	if equal(s.value, value) {
		r.mu.Unlock()
		return nil
	}

	old := s.value
	s.value = value
	subs := r.scheduleLocked(name)
	r.mu.Unlock()

	r.logger.StateChanged(name, len(subs))
	r.spawnRunner([]runItem{{name: name, newValue: value, oldValue: old, subs: subs}})
	r.emit(Event{Name: name, NewValue: value, OldValue: old, Time: time.Now()})
	return nil
}

// Delete removes a state. Locked states are kept and the refusal reported;
// deleting an absent name is not an error. Watchers and queued changes for
// the name are left behind as orphans and dropped silently at their next
// point of use, or revived if the name is created again.
func (r *Registry) Delete(name string) error {
	if r.closed.Load() {
		return ErrClosed
	}

	r.mu.Lock()
	s, ok := r.states[name]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	if s.locked {
		r.mu.Unlock()
		r.raise(diag.CodeLockedDelete, name, "delete")
		return ErrLocked
	}
	delete(r.states, name)
	r.mu.Unlock()

	r.logger.StateDeleted(name)
	return nil
}

// Lock makes a state immutable: writes and deletes are refused until
// Unlock. Locking an absent name returns ErrNotFound without a diagnostic.
func (r *Registry) Lock(name string) error {
	if r.closed.Load() {
		return ErrClosed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.states[name]
	if !ok {
		return ErrNotFound
	}
	s.locked = true
	return nil
}

// Unlock makes a state mutable again. Unlocking an absent name returns
// ErrNotFound without a diagnostic.
func (r *Registry) Unlock(name string) error {
	if r.closed.Load() {
		return ErrClosed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.states[name]
	if !ok {
		return ErrNotFound
	}
	s.locked = false
	return nil
}

// Locked reports whether a state is currently locked.
func (r *Registry) Locked(name string) (bool, error) {
	if r.closed.Load() {
		return false, ErrClosed
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.states[name]
	if !ok {
		return false, ErrNotFound
	}
	return s.locked, nil
}

package state

import (
	"time"

	"github.com/quembly/statekit/diag"
)

// ChangeQueued records a write to be applied at the next flush instead of
// immediately. The guards are the same as Change and are evaluated against
// the currently stored value, never against an already-queued one. Rapid
// queued writes to one name coalesce: the first call captures the old
// value, later calls only replace the new value, and the flush dispatches
// once per name.
func (r *Registry) ChangeQueued(name string, value any) error {
	if r.closed.Load() {
		return ErrClosed
	}

	r.mu.Lock()
	s, ok := r.states[name]
	if !ok {
		r.mu.Unlock()
		r.raise(diag.CodeNotFound, name, "change_queued")
		return ErrNotFound
	}
	if s.locked {
		r.mu.Unlock()
		r.raise(diag.CodeLockedWrite, name, "change_queued")
		return ErrLocked
	}
	if equal(s.value, value) {
		r.mu.Unlock()
		return nil
	}

	if p, queued := r.pending[name]; queued {
		p.newValue = value
	} else {
		r.pending[name] = &pendingChange{oldValue: s.value, newValue: value}
		r.order = append(r.order, name)
	}
	r.mu.Unlock()

	return nil
}

// Flush applies every queued change in queue-insertion order through the
// same dispatch path as Change. The batch is snapshotted up front, so
// writes queued by a callback during the flush land in the next batch.
// Entries whose state was deleted after queuing are dropped silently.
// Flush runs on every tick of the configured source and may also be called
// directly by hosts driving their own schedule.
func (r *Registry) Flush() error {
	if r.closed.Load() {
		return ErrClosed
	}

	r.mu.Lock()
	if len(r.order) == 0 {
		r.mu.Unlock()
		return nil
	}

	start := time.Now()
	batch := r.pending
	order := r.order
	r.pending = make(map[string]*pendingChange)
	r.order = nil

	var items []runItem
	var events []Event
	applied, skipped := 0, 0
	for _, name := range order {
		p, ok := batch[name]
		if !ok {
			skipped++
			continue
		}
		s, live := r.states[name]
		if !live {
			// orphan: state deleted while the change was queued
			skipped++
			continue
		}

		s.value = p.newValue
		items = append(items, runItem{
			name:     name,
			newValue: p.newValue,
			oldValue: p.oldValue,
			subs:     r.scheduleLocked(name),
		})
		events = append(events, Event{
			Name:     name,
			NewValue: p.newValue,
			OldValue: p.oldValue,
			Queued:   true,
			Time:     time.Now(),
		})
		applied++
	}
	r.mu.Unlock()

	r.spawnRunner(items)
	r.emit(events...)
	r.logger.QueueFlush(applied, skipped, time.Since(start))
	return nil
}

// flushLoop drives Flush from the configured tick source until Close.
func (r *Registry) flushLoop() {
	defer close(r.loopDone)
	for {
		select {
		case <-r.done:
			return
		case <-r.source.C():
			r.Flush()
		}
	}
}

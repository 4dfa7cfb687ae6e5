package state

import "context"

// WaitForChange blocks until the next change of the named state and returns
// the value pair the change carried. The state must exist when the call is
// made. Resumption happens from the dispatch path, so the caller observes
// the store already updated.
//
// A state that is deleted and never re-created will never change again; a
// wait on it blocks until ctx is canceled or the registry closes. Callers
// needing bounded waits pass a context with a deadline.
func (r *Registry) WaitForChange(ctx context.Context, name string) (newValue, oldValue any, err error) {
	if r.closed.Load() {
		return nil, nil, ErrClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}

	type pair struct {
		newV, oldV any
	}
	ch := make(chan pair, 1)

	sub, err := r.SubscribeOnce(name, func(newV, oldV any) {
		// one-shot: exactly one send, buffer guarantees no blocking
		ch <- pair{newV, oldV}
	})
	if err != nil {
		return nil, nil, err
	}

	select {
	case p := <-ch:
		return p.newV, p.oldV, nil
	case <-ctx.Done():
		sub.Unsubscribe()
		return nil, nil, ctx.Err()
	case <-r.done:
		return nil, nil, ErrClosed
	}
}

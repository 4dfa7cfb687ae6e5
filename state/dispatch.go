package state

// Dispatch model: the write path snapshots the watcher list under the
// registry lock and hands the snapshot to a runner goroutine, so a writer
// returns as soon as its watchers are scheduled. One runner executes the
// whole snapshot sequentially in reverse registration order, which keeps
// the most-recent-first ordering observable and means a change's callbacks
// never interleave with each other. Callbacks from distinct writes run on
// distinct runners and may interleave freely.

// runItem is one name's scheduled dispatch: the value pair and the watcher
// snapshot taken when the write was applied.
type runItem struct {
	name     string
	newValue any
	oldValue any
	subs     []*Subscription
}

// scheduleLocked snapshots the watcher list for a name and removes its
// one-shot entries from the live list. Removal happens here, at schedule
// time, so a later write cannot re-fire a once-watcher even though its
// callback has not run yet. Caller holds r.mu.
func (r *Registry) scheduleLocked(name string) []*Subscription {
	list := r.watchers[name]
	if len(list) == 0 {
		return nil
	}

	snapshot := make([]*Subscription, len(list))
	copy(snapshot, list)

	kept := list[:0]
	for _, sub := range list {
		if !sub.once {
			kept = append(kept, sub)
		}
	}
	if len(kept) == 0 {
		delete(r.watchers, name)
	} else {
		r.watchers[name] = kept
	}

	return snapshot
}

// spawnRunner starts one goroutine executing the given items in order.
// No goroutine is started when nothing is watching.
func (r *Registry) spawnRunner(items []runItem) {
	total := 0
	for _, it := range items {
		total += len(it.subs)
	}
	if total == 0 {
		return
	}

	go func() {
		for _, it := range items {
			for i := len(it.subs) - 1; i >= 0; i-- {
				r.invoke(it.subs[i], it.newValue, it.oldValue)
			}
		}
	}()
}

// invoke runs one callback with panic isolation. A panicking callback is
// reported and never affects sibling watchers or the writer.
func (r *Registry) invoke(sub *Subscription, newValue, oldValue any) {
	defer func() {
		if rec := recover(); rec != nil {
			r.raisePanic(sub.name, rec)
		}
	}()
	sub.fn(newValue, oldValue)
}

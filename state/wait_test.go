package state

import (
	"context"
	"errors"
	"testing"
	"time"
)

type waitResult struct {
	newValue any
	oldValue any
	err      error
}

// waitForWatchers polls until name has exactly n registered watchers, so a
// test can start a waiter goroutine and only then trigger the change.
func waitForWatchers(t *testing.T, reg *Registry, name string, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for reg.watcherCount(name) != n {
		if time.Now().After(deadline) {
			t.Fatalf("watcher count for %q never reached %d", name, n)
		}
		time.Sleep(time.Millisecond)
	}
}

// ============================================================================
// LEVEL 1: Unit Tests - resumption
// ============================================================================

func TestWaitForChange(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	reg.Create("Score", 1)

	res := make(chan waitResult, 1)
	go func() {
		n, o, err := reg.WaitForChange(context.Background(), "Score")
		res <- waitResult{n, o, err}
	}()

	waitForWatchers(t, reg, "Score", 1)
	reg.Change("Score", 2)

	select {
	case r := <-res:
		if r.err != nil {
			t.Fatalf("WaitForChange failed: %v", r.err)
		}
		if r.newValue != 2 || r.oldValue != 1 {
			t.Errorf("WaitForChange = (%v, %v), want (2, 1)", r.newValue, r.oldValue)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never resumed")
	}
}

func TestWaitForChange_AbsentState(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	_, _, err := reg.WaitForChange(context.Background(), "missing")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWaitForChange_IgnoresOtherNames(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	reg.Create("X", 1)
	reg.Create("Y", 1)

	res := make(chan waitResult, 1)
	go func() {
		n, o, err := reg.WaitForChange(context.Background(), "X")
		res <- waitResult{n, o, err}
	}()

	waitForWatchers(t, reg, "X", 1)
	reg.Change("Y", 9)
	reg.Change("X", 2)

	select {
	case r := <-res:
		if r.newValue != 2 || r.oldValue != 1 {
			t.Errorf("WaitForChange = (%v, %v), want (2, 1)", r.newValue, r.oldValue)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never resumed")
	}
}

func TestWaitForChange_QueuedChange(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	reg.Create("Score", 1)

	res := make(chan waitResult, 1)
	go func() {
		n, o, err := reg.WaitForChange(context.Background(), "Score")
		res <- waitResult{n, o, err}
	}()

	waitForWatchers(t, reg, "Score", 1)
	reg.ChangeQueued("Score", 5)
	reg.Flush()

	select {
	case r := <-res:
		if r.newValue != 5 || r.oldValue != 1 {
			t.Errorf("WaitForChange = (%v, %v), want (5, 1)", r.newValue, r.oldValue)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never resumed after flush")
	}
}

// ============================================================================
// LEVEL 2: Cancellation Tests
// ============================================================================

func TestWaitForChange_ContextCanceled(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	reg.Create("X", 1)
	ctx, cancel := context.WithCancel(context.Background())

	res := make(chan waitResult, 1)
	go func() {
		n, o, err := reg.WaitForChange(ctx, "X")
		res <- waitResult{n, o, err}
	}()

	waitForWatchers(t, reg, "X", 1)
	cancel()

	select {
	case r := <-res:
		if !errors.Is(r.err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", r.err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never resumed after cancel")
	}

	// Cancellation removes the one-shot watcher.
	waitForWatchers(t, reg, "X", 0)
}

func TestWaitForChange_Timeout(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	reg.Create("X", 1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := reg.WaitForChange(ctx, "X")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestWaitForChange_CloseUnblocks(t *testing.T) {
	reg := newTestRegistry()
	reg.Create("X", 1)

	res := make(chan waitResult, 1)
	go func() {
		n, o, err := reg.WaitForChange(context.Background(), "X")
		res <- waitResult{n, o, err}
	}()

	waitForWatchers(t, reg, "X", 1)
	reg.Close()

	select {
	case r := <-res:
		if r.err != ErrClosed {
			t.Errorf("expected ErrClosed, got %v", r.err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never resumed after close")
	}
}

package state

import (
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quembly/statekit/diag"
	"github.com/quembly/statekit/logging"
)

// newTestRegistry builds a registry whose log output is discarded, so tests
// that intentionally trigger rejections stay quiet.
func newTestRegistry(opts ...Option) *Registry {
	quiet := logging.New()
	quiet.SetOutput(io.Discard)
	return New(append([]Option{WithLogger(quiet)}, opts...)...)
}

// ============================================================================
// LEVEL 1: Unit Tests - create, get, change, delete, lock
// ============================================================================

func TestRegistry_CreateGet(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	if err := reg.Create("Score", 5); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := reg.Get("Score")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != 5 {
		t.Errorf("Get = %v, want 5", got)
	}
}

func TestRegistry_Create_Duplicate(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	reg.Create("Score", 5)
	err := reg.Create("Score", 99)
	if err != ErrExists {
		t.Errorf("expected ErrExists, got %v", err)
	}

	// First value survives the rejected create.
	got, _ := reg.Get("Score")
	if got != 5 {
		t.Errorf("Get = %v, want 5", got)
	}
}

func TestRegistry_Get_NotFound(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	_, err := reg.Get("missing")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_Change(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	reg.Create("Score", 1)
	if err := reg.Change("Score", 2); err != nil {
		t.Fatalf("Change failed: %v", err)
	}

	got, _ := reg.Get("Score")
	if got != 2 {
		t.Errorf("Get = %v, want 2", got)
	}
}

func TestRegistry_Change_NotFound(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	err := reg.Change("missing", 1)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_Change_EqualValueSkipped(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	reg.Create("Score", 5)

	var fired atomic.Int32
	reg.Subscribe("Score", func(newValue, oldValue any) {
		fired.Add(1)
	})

	// Writing the stored value is a silent no-op: with no change scheduled
	// there is nothing that could ever fire the watcher.
	if err := reg.Change("Score", 5); err != nil {
		t.Errorf("equal-value change should return nil, got %v", err)
	}
	if n := fired.Load(); n != 0 {
		t.Errorf("watcher fired %d times, want 0", n)
	}
}

func TestRegistry_Delete(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	reg.Create("Score", 1)
	if err := reg.Delete("Score"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := reg.Get("Score")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRegistry_Delete_Absent(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	// Deleting a missing name is not an error.
	if err := reg.Delete("missing"); err != nil {
		t.Errorf("Delete of absent name should not error: %v", err)
	}
}

func TestRegistry_Lock(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	reg.Create("Score", 1)
	if err := reg.Lock("Score"); err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	// Locked states refuse writes.
	if err := reg.Change("Score", 2); err != ErrLocked {
		t.Errorf("expected ErrLocked, got %v", err)
	}
	got, _ := reg.Get("Score")
	if got != 1 {
		t.Errorf("Get = %v, want 1", got)
	}

	// And refuse deletion.
	if err := reg.Delete("Score"); err != ErrLocked {
		t.Errorf("expected ErrLocked on delete, got %v", err)
	}
	if _, err := reg.Get("Score"); err != nil {
		t.Errorf("locked state should survive delete: %v", err)
	}

	locked, err := reg.Locked("Score")
	if err != nil || !locked {
		t.Errorf("Locked = %v, %v, want true, nil", locked, err)
	}
}

func TestRegistry_Unlock(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	reg.Create("Score", 1)
	reg.Lock("Score")
	if err := reg.Unlock("Score"); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	if err := reg.Change("Score", 2); err != nil {
		t.Errorf("Change after Unlock failed: %v", err)
	}
	got, _ := reg.Get("Score")
	if got != 2 {
		t.Errorf("Get = %v, want 2", got)
	}
}

func TestRegistry_LockUnlock_Absent(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	if err := reg.Lock("missing"); err != ErrNotFound {
		t.Errorf("Lock absent: expected ErrNotFound, got %v", err)
	}
	if err := reg.Unlock("missing"); err != ErrNotFound {
		t.Errorf("Unlock absent: expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	reg.Create("A", 1)
	reg.Create("B", 2)
	reg.Create("C", 3)
	reg.Delete("B")

	names := reg.Names()
	if len(names) != 2 {
		t.Fatalf("Names = %v, want 2 entries", names)
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["A"] || !seen["C"] || seen["B"] {
		t.Errorf("Names = %v, want A and C", names)
	}
}

func TestRegistry_RoundTrip(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	// A sequence of accepted and refused operations: Get afterwards must
	// reflect exactly the last accepted value or absence.
	reg.Create("X", 1)
	reg.Change("X", 2)
	reg.Lock("X")
	reg.Change("X", 3) // refused
	reg.Unlock("X")
	reg.Change("X", 4)
	reg.Delete("X")
	reg.Create("X", 7)

	got, err := reg.Get("X")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != 7 {
		t.Errorf("Get = %v, want 7", got)
	}

	reg.Delete("X")
	if _, err := reg.Get("X"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after final delete, got %v", err)
	}
}

// ============================================================================
// LEVEL 2: Behavior Tests - identity semantics, diagnostics, observers
// ============================================================================

func TestRegistry_CompositeValuesAlwaysChange(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	reg.Create("Inventory", []string{"sword"})

	fired := make(chan struct{}, 1)
	reg.Subscribe("Inventory", func(newValue, oldValue any) {
		fired <- struct{}{}
	})

	// A structurally identical slice is still a different value under the
	// identity rule, so it dispatches.
	if err := reg.Change("Inventory", []string{"sword"}); err != nil {
		t.Fatalf("Change failed: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Error("expected dispatch for a rebuilt composite value")
	}
}

func TestRegistry_PointerIdentity(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	type thing struct{ n int }
	p := &thing{1}

	reg.Create("Thing", p)

	var fired atomic.Int32
	reg.Subscribe("Thing", func(newValue, oldValue any) {
		fired.Add(1)
	})

	// Same pointer: no dispatch.
	reg.Change("Thing", p)
	if n := fired.Load(); n != 0 {
		t.Errorf("same pointer dispatched %d times, want 0", n)
	}

	// Different pointer to an equal struct: dispatch.
	done := make(chan struct{}, 1)
	reg.Subscribe("Thing", func(newValue, oldValue any) {
		done <- struct{}{}
	})
	reg.Change("Thing", &thing{1})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("expected dispatch for a different pointer")
	}
}

func TestRegistry_DiagnosticHandler(t *testing.T) {
	var codes []diag.Code
	got := make(chan diag.Code, 8)
	reg := newTestRegistry(WithDiagnosticHandler(func(d diag.Diagnostic) {
		got <- d.Code
	}))
	defer reg.Close()

	reg.Create("X", 1)
	reg.Create("X", 2)       // DUPLICATE_CREATE
	reg.Get("missing")       // NOT_FOUND
	reg.Lock("X")
	reg.Change("X", 9)       // LOCKED_WRITE
	reg.Delete("X")          // LOCKED_DELETE
	reg.Lock("missing")      // silent: no diagnostic
	reg.Unlock("X")
	reg.Change("X", 1)       // equal value: silent, no diagnostic

	close(got)
	for c := range got {
		codes = append(codes, c)
	}

	want := []diag.Code{
		diag.CodeDuplicateCreate,
		diag.CodeNotFound,
		diag.CodeLockedWrite,
		diag.CodeLockedDelete,
	}
	if len(codes) != len(want) {
		t.Fatalf("diagnostics = %v, want %v", codes, want)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("diagnostic[%d] = %v, want %v", i, codes[i], want[i])
		}
	}
}

func TestRegistry_Observe(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	var events []Event
	reg.Observe(func(e Event) {
		events = append(events, e)
	})

	reg.Create("X", 1)
	reg.Change("X", 2)
	reg.ChangeQueued("X", 3)
	reg.Flush()

	// Observers run inline on the writer's goroutine, so the slice is
	// complete once Flush returns.
	if len(events) != 2 {
		t.Fatalf("observed %d events, want 2", len(events))
	}
	if events[0].Name != "X" || events[0].NewValue != 2 || events[0].OldValue != 1 || events[0].Queued {
		t.Errorf("event[0] = %+v", events[0])
	}
	if events[1].NewValue != 3 || events[1].OldValue != 2 || !events[1].Queued {
		t.Errorf("event[1] = %+v", events[1])
	}
}

// ============================================================================
// LEVEL 3: Lifecycle Tests - close semantics
// ============================================================================

func TestRegistry_Close(t *testing.T) {
	reg := newTestRegistry()
	reg.Create("X", 1)

	if err := reg.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := reg.Close(); err != nil {
		t.Errorf("second Close should be nil, got %v", err)
	}

	if err := reg.Create("Y", 1); err != ErrClosed {
		t.Errorf("Create after close: expected ErrClosed, got %v", err)
	}
	if _, err := reg.Get("X"); err != ErrClosed {
		t.Errorf("Get after close: expected ErrClosed, got %v", err)
	}
	if err := reg.Change("X", 2); err != ErrClosed {
		t.Errorf("Change after close: expected ErrClosed, got %v", err)
	}
	if err := reg.ChangeQueued("X", 2); err != ErrClosed {
		t.Errorf("ChangeQueued after close: expected ErrClosed, got %v", err)
	}
	if err := reg.Flush(); err != ErrClosed {
		t.Errorf("Flush after close: expected ErrClosed, got %v", err)
	}
	if err := reg.Delete("X"); err != ErrClosed {
		t.Errorf("Delete after close: expected ErrClosed, got %v", err)
	}
	if _, err := reg.Subscribe("X", func(any, any) {}); err != ErrClosed {
		t.Errorf("Subscribe after close: expected ErrClosed, got %v", err)
	}
	if names := reg.Names(); names != nil {
		t.Errorf("Names after close = %v, want nil", names)
	}
}

package tick_test

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/quembly/statekit/tick"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterval(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		src, err := tick.NewInterval(100 * time.Millisecond)
		require.NoError(t, err)
		defer src.Stop()

		var got int
		done := make(chan struct{})
		go func() {
			defer close(done)
			for range 3 {
				<-src.C()
				got++
			}
		}()

		time.Sleep(350 * time.Millisecond)
		synctest.Wait()

		select {
		case <-done:
		default:
			t.Fatal("expected three ticks within 350ms")
		}
		assert.Equal(t, 3, got)
	})
}

func TestInterval_InvalidDuration(t *testing.T) {
	_, err := tick.NewInterval(0)
	assert.ErrorIs(t, err, tick.ErrInvalidInterval)

	_, err = tick.NewInterval(-time.Second)
	assert.ErrorIs(t, err, tick.ErrInvalidInterval)
}

func TestInterval_StopIdempotent(t *testing.T) {
	src, err := tick.NewInterval(time.Hour)
	require.NoError(t, err)

	src.Stop()
	src.Stop() // must not panic
}

func TestManual(t *testing.T) {
	src := tick.NewManual()
	defer src.Stop()

	src.Tick()

	select {
	case <-src.C():
	case <-time.After(time.Second):
		t.Fatal("tick not delivered")
	}

	// No spurious ticks.
	select {
	case <-src.C():
		t.Fatal("unexpected second tick")
	default:
	}
}

func TestManual_Coalesce(t *testing.T) {
	src := tick.NewManual()
	defer src.Stop()

	// Three ticks with no consumer collapse into one pending tick.
	src.Tick()
	src.Tick()
	src.Tick()

	<-src.C()
	select {
	case <-src.C():
		t.Fatal("pending ticks should coalesce into one")
	default:
	}
}

func TestManual_TickAfterStop(t *testing.T) {
	src := tick.NewManual()
	src.Stop()
	src.Tick()

	select {
	case <-src.C():
		t.Fatal("tick after Stop should be dropped")
	default:
	}
}

package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncpkg "github.com/tapresto/possync/internal/sync"
)

type fakeDrainer struct {
	calls atomic.Int32
}

func (f *fakeDrainer) Drain(ctx context.Context) (*syncpkg.DrainResult, error) {
	f.calls.Add(1)
	return &syncpkg.DrainResult{}, nil
}

func waitForCalls(t *testing.T, d *fakeDrainer, want int32) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		if d.calls.Load() >= want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("Timed out waiting for %d drain calls, got %d", want, d.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestPeriodicDrain(t *testing.T) {
	drainer := &fakeDrainer{}
	s := New(drainer, &Config{DrainInterval: 20 * time.Millisecond})

	s.Start(context.Background())
	defer s.Stop()

	waitForCalls(t, drainer, 2)
}

func TestTriggerDrainImmediate(t *testing.T) {
	drainer := &fakeDrainer{}
	s := New(drainer, &Config{DrainInterval: time.Hour})

	s.Start(context.Background())
	defer s.Stop()

	s.TriggerDrain()
	waitForCalls(t, drainer, 1)
}

func TestOfflineSuppressesPeriodicDrain(t *testing.T) {
	drainer := &fakeDrainer{}
	s := New(drainer, &Config{DrainInterval: 10 * time.Millisecond})
	s.SetOnline(false)

	s.Start(context.Background())
	defer s.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, drainer.calls.Load(), "offline scheduler must not drain on the ticker")
}

func TestConnectivityRestoredTriggersDrain(t *testing.T) {
	drainer := &fakeDrainer{}
	s := New(drainer, &Config{DrainInterval: time.Hour})
	s.SetOnline(false)

	s.Start(context.Background())
	defer s.Stop()

	s.SetOnline(true)
	waitForCalls(t, drainer, 1)
}

func TestStopWaitsForLoop(t *testing.T) {
	drainer := &fakeDrainer{}
	s := New(drainer, &Config{DrainInterval: time.Hour})

	s.Start(context.Background())
	s.Stop()

	// Stop twice is a no-op, Start after Stop works again.
	s.Stop()
	s.Start(context.Background())
	s.TriggerDrain()
	waitForCalls(t, drainer, 1)
	s.Stop()
}

func TestTriggerBeforeStartIsNoOp(t *testing.T) {
	drainer := &fakeDrainer{}
	s := New(drainer, nil)

	require.NotPanics(t, func() { s.TriggerDrain() })
	assert.Zero(t, drainer.calls.Load())
}

package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunsImmediatelyThenOnInterval(t *testing.T) {
	var calls atomic.Int32
	p := New(20*time.Millisecond, func(context.Context) {
		calls.Add(1)
	})

	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond,
		"first run should happen without waiting a full interval")
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestStopHaltsPolling(t *testing.T) {
	var calls atomic.Int32
	p := New(10*time.Millisecond, func(context.Context) {
		calls.Add(1)
	})

	p.Start(context.Background())
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)
	p.Stop()

	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
}

func TestTriggerForcesImmediateRefresh(t *testing.T) {
	var calls atomic.Int32
	p := New(time.Hour, func(context.Context) {
		calls.Add(1)
	})

	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	p.Trigger()
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
}

func TestStopWithoutStart(t *testing.T) {
	p := New(time.Second, func(context.Context) {})
	p.Stop()
}

func TestContextCancellationStopsLoop(t *testing.T) {
	var calls atomic.Int32
	p := New(10*time.Millisecond, func(context.Context) {
		calls.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)
	cancel()

	time.Sleep(30 * time.Millisecond)
	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
	p.Stop()
}

// Copyright 2025 Certen Protocol
package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPeriodic_TicksUntilStopped(t *testing.T) {
	var ticks int64
	p := NewPeriodic("test", 5*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt64(&ticks, 1)
		return nil
	}, nil)

	ctx := context.Background()
	p.Start(ctx)
	require.Equal(t, StateRunning, p.State())

	require.Eventually(t, func() bool { return atomic.LoadInt64(&ticks) >= 3 }, time.Second, time.Millisecond)

	p.Stop()
	require.Equal(t, StateStopped, p.State())

	afterStop := atomic.LoadInt64(&ticks)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, afterStop, atomic.LoadInt64(&ticks), "no further ticks after Stop")
}

func TestPeriodic_PauseSuppressesTicks(t *testing.T) {
	var ticks int64
	p := NewPeriodic("test", 5*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt64(&ticks, 1)
		return nil
	}, nil)

	ctx := context.Background()
	p.Start(ctx)
	require.Eventually(t, func() bool { return atomic.LoadInt64(&ticks) >= 1 }, time.Second, time.Millisecond)

	p.Pause()
	require.Equal(t, StatePaused, p.State())
	paused := atomic.LoadInt64(&ticks)
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, paused, atomic.LoadInt64(&ticks), "no ticks while paused")

	p.Resume()
	require.Equal(t, StateRunning, p.State())
	require.Eventually(t, func() bool { return atomic.LoadInt64(&ticks) > paused }, time.Second, time.Millisecond)

	p.Stop()
}

func TestPeriodic_StartIsIdempotent(t *testing.T) {
	p := NewPeriodic("test", 5*time.Millisecond, func(ctx context.Context) error { return nil }, nil)
	ctx := context.Background()
	p.Start(ctx)
	p.Start(ctx)
	require.Equal(t, StateRunning, p.State())
	p.Stop()
}

func TestPeriodic_StopBeforeStartIsNoop(t *testing.T) {
	p := NewPeriodic("test", 5*time.Millisecond, func(ctx context.Context) error { return nil }, nil)
	p.Stop()
	require.Equal(t, StateStopped, p.State())
}

func TestPeriodic_ContextCancelStopsLoop(t *testing.T) {
	var ticks int64
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPeriodic("test", 5*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt64(&ticks, 1)
		return nil
	}, nil)

	p.Start(ctx)
	require.Eventually(t, func() bool { return atomic.LoadInt64(&ticks) >= 1 }, time.Second, time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	after := atomic.LoadInt64(&ticks)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, after, atomic.LoadInt64(&ticks))
}

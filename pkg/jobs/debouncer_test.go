package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDebouncerLastTriggerWins(t *testing.T) {
	d := NewDebouncer("test", DebouncerConfig{Delay: 30 * time.Millisecond, Logger: zaptest.NewLogger(t)})
	defer d.Stop()

	var first, second int32
	done := make(chan struct{})
	require.NoError(t, d.Schedule("2026-07-01", func(context.Context) error {
		atomic.AddInt32(&first, 1)
		return nil
	}))
	require.NoError(t, d.Schedule("2026-07-01", func(context.Context) error {
		atomic.AddInt32(&second, 1)
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced task did not run")
	}
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
	assert.False(t, d.Pending("2026-07-01"))
}

func TestDebouncerKeysAreIndependent(t *testing.T) {
	d := NewDebouncer("test", DebouncerConfig{Delay: 10 * time.Millisecond})
	defer d.Stop()

	var runs int32
	done := make(chan struct{}, 2)
	task := func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		done <- struct{}{}
		return nil
	}
	require.NoError(t, d.Schedule("a", task))
	require.NoError(t, d.Schedule("b", task))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("task did not run")
		}
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&runs))
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer("test", DebouncerConfig{Delay: 20 * time.Millisecond})
	defer d.Stop()

	var runs int32
	require.NoError(t, d.Schedule("a", func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}))
	assert.True(t, d.Pending("a"))
	assert.True(t, d.Cancel("a"))
	assert.False(t, d.Cancel("a"))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&runs))
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer("test", DebouncerConfig{Delay: time.Hour})
	require.NoError(t, d.Schedule("a", func(context.Context) error { return errors.New("never") }))
	d.Stop()
	d.Stop()

	assert.False(t, d.Pending("a"))
	assert.Error(t, d.Schedule("a", func(context.Context) error { return nil }))
	assert.Error(t, NewDebouncer("nil", DebouncerConfig{}).Schedule("a", nil))
	assert.Equal(t, 750*time.Millisecond, NewDebouncer("default", DebouncerConfig{}).Delay())
}

func TestDebouncerLogsFailures(t *testing.T) {
	d := NewDebouncer("test", DebouncerConfig{Delay: 5 * time.Millisecond})
	defer d.Stop()

	done := make(chan struct{})
	require.NoError(t, d.Schedule("a", func(ctx context.Context) error {
		defer close(done)
		return errors.New("boom")
	}))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

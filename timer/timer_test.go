package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTimerFiresOnce(t *testing.T) {
	m := NewManagerWithTick(5 * time.Millisecond)
	defer m.Stop()

	var fired atomic.Int32
	m.AddTimer(10*time.Millisecond, 0, func() {
		fired.Add(1)
	})

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestIntervalTimerRepeats(t *testing.T) {
	m := NewManagerWithTick(5 * time.Millisecond)
	defer m.Stop()

	var fired atomic.Int32
	m.AddTimer(5*time.Millisecond, 10*time.Millisecond, func() {
		fired.Add(1)
	})

	require.Eventually(t, func() bool {
		return fired.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRemoveTimerCancelsPending(t *testing.T) {
	m := NewManagerWithTick(5 * time.Millisecond)
	defer m.Stop()

	var fired atomic.Int32
	id := m.AddTimer(200*time.Millisecond, 0, func() {
		fired.Add(1)
	})
	m.RemoveTimer(id)

	time.Sleep(400 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestTimersFireInOrder(t *testing.T) {
	m := NewManagerWithTick(5 * time.Millisecond)
	defer m.Stop()

	var first, second atomic.Bool
	m.AddTimer(300*time.Millisecond, 0, func() {
		second.Store(true)
	})
	m.AddTimer(10*time.Millisecond, 0, func() {
		first.Store(true)
	})

	require.Eventually(t, func() bool {
		return first.Load()
	}, time.Second, 5*time.Millisecond)
	assert.False(t, second.Load())

	require.Eventually(t, func() bool {
		return second.Load()
	}, time.Second, 5*time.Millisecond)
}

func TestStopIsIdempotent(t *testing.T) {
	m := NewManagerWithTick(5 * time.Millisecond)
	m.Stop()
	m.Stop()
}

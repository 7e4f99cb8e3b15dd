package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeFiresInDueOrder(t *testing.T) {
	clock := NewFake()
	var got []string
	clock.AfterFunc(300*time.Millisecond, func() { got = append(got, "c") })
	clock.AfterFunc(100*time.Millisecond, func() { got = append(got, "a") })
	clock.AfterFunc(200*time.Millisecond, func() { got = append(got, "b") })
	clock.AfterFunc(100*time.Millisecond, func() { got = append(got, "a2") })

	assert.Equal(t, 0, clock.Advance(99*time.Millisecond))
	assert.Empty(t, got)

	assert.Equal(t, 4, clock.Advance(time.Second))
	assert.Equal(t, []string{"a", "a2", "b", "c"}, got)
	assert.Equal(t, 1099*time.Millisecond, clock.Now())
	assert.Equal(t, 0, clock.Pending())
}

func TestFakeZeroDelayWaitsForAdvance(t *testing.T) {
	clock := NewFake()
	fired := false
	clock.AfterFunc(0, func() { fired = true })
	assert.False(t, fired)

	clock.Advance(0)
	assert.True(t, fired)
}

func TestFakeNegativeDelayIsZero(t *testing.T) {
	clock := NewFake()
	clock.AfterFunc(-time.Second, func() {})
	next, ok := clock.Next()
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), next)
}

func TestFakeEveryCadence(t *testing.T) {
	clock := NewFake()
	var at []time.Duration
	clock.Every(8*time.Second, func() { at = append(at, clock.Now()) })

	clock.Advance(33 * time.Second)
	assert.Equal(t, []time.Duration{8 * time.Second, 16 * time.Second, 24 * time.Second, 32 * time.Second}, at)
	assert.Equal(t, 1, clock.Pending())
}

func TestFakeStop(t *testing.T) {
	clock := NewFake()
	fired := 0
	once := clock.AfterFunc(time.Second, func() { fired++ })
	every := clock.Every(time.Second, func() { fired++ })

	assert.True(t, once.Stop())
	assert.False(t, once.Stop())
	assert.True(t, every.Stop())
	assert.False(t, every.Stop())

	clock.Advance(10 * time.Second)
	assert.Zero(t, fired)
}

func TestFakeStopAfterFire(t *testing.T) {
	clock := NewFake()
	task := clock.AfterFunc(time.Millisecond, func() {})
	clock.Advance(time.Millisecond)
	assert.False(t, task.Stop())
}

func TestFakeCallbackCanScheduleAndCancel(t *testing.T) {
	clock := NewFake()
	var got []time.Duration
	var victim Task
	clock.AfterFunc(time.Second, func() {
		got = append(got, clock.Now())
		clock.AfterFunc(0, func() { got = append(got, clock.Now()) })
		victim.Stop()
	})
	victim = clock.AfterFunc(2*time.Second, func() { got = append(got, -1) })

	clock.Advance(5 * time.Second)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, got)
}

func TestFakeEveryRejectsNonPositive(t *testing.T) {
	clock := NewFake()
	assert.Panics(t, func() { clock.Every(0, func() {}) })
}

func TestFakeNextEmpty(t *testing.T) {
	_, ok := NewFake().Next()
	assert.False(t, ok)
}

package session

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_CountsDown(t *testing.T) {
	fc := clockwork.NewFakeClock()
	timer := NewTimer(fc, 0)
	require.Equal(t, 900, timer.Remaining())
	assert.False(t, timer.Urgent())

	fc.Advance(time.Second)
	assert.False(t, timer.Tick())
	assert.Equal(t, 899, timer.Remaining())

	fc.Advance(600 * time.Second)
	assert.False(t, timer.Tick())
	assert.Equal(t, 299, timer.Remaining())
	assert.True(t, timer.Urgent())

	fc.Advance(299 * time.Second)
	assert.True(t, timer.Tick())
	assert.Zero(t, timer.Remaining())
	assert.True(t, timer.Stopped())
	assert.Nil(t, timer.C())
}

func TestTimer_NeverIncreases(t *testing.T) {
	fc := clockwork.NewFakeClock()
	timer := NewTimer(fc, 10*time.Second)

	prev := timer.Remaining()
	for i := 0; i < 20; i++ {
		// spurious ticks still count down by one
		timer.Tick()
		assert.LessOrEqual(t, timer.Remaining(), prev)
		prev = timer.Remaining()
	}
	assert.Zero(t, timer.Remaining())
}

func TestTimer_RoundsBudgetUp(t *testing.T) {
	fc := clockwork.NewFakeClock()
	timer := NewTimer(fc, 1500*time.Millisecond)
	defer timer.Stop()
	assert.Equal(t, 2, timer.Remaining())
}

func TestTimer_StopIsIdempotent(t *testing.T) {
	fc := clockwork.NewFakeClock()
	timer := NewTimer(fc, time.Minute)

	timer.Stop()
	timer.Stop()
	assert.True(t, timer.Stopped())
	assert.Nil(t, timer.C())

	fc.Advance(2 * time.Minute)
	assert.False(t, timer.Tick())
	assert.Equal(t, 60, timer.Remaining())
}

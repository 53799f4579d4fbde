package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerScheduler_FiresOnce(t *testing.T) {
	var fired atomic.Int32
	s := NewTimer(func() { fired.Add(1) })

	s.Replace(5 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestTimerScheduler_ReplaceDropsPending(t *testing.T) {
	var fired atomic.Int32
	s := NewTimer(func() { fired.Add(1) })

	// The first registration never fires: Replace supersedes it.
	s.Replace(time.Hour)
	s.Replace(5 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestTimerScheduler_Cancel(t *testing.T) {
	var fired atomic.Int32
	s := NewTimer(func() { fired.Add(1) })

	s.Replace(5 * time.Millisecond)
	s.Cancel()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	// Cancel with nothing pending is a no-op.
	s.Cancel()
}

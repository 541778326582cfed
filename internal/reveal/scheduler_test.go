package reveal

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualScheduler(t *testing.T) {
	s := NewManualScheduler()

	var ran []int
	s.RequestFrame(func() { ran = append(ran, 1) })
	cancel := s.RequestFrame(func() { ran = append(ran, 2) })
	s.RequestFrame(func() {
		ran = append(ran, 3)
		s.RequestFrame(func() { ran = append(ran, 4) })
	})
	cancel()

	assert.Equal(t, 2, s.Pending())
	assert.Equal(t, 2, s.Step())
	assert.Equal(t, []int{1, 3}, ran)

	assert.Equal(t, 1, s.Pending(), "callbacks requested during a frame wait for the next one")
	assert.Equal(t, 1, s.Step())
	assert.Equal(t, []int{1, 3, 4}, ran)
	assert.Equal(t, 0, s.Step())
}

func TestTickerScheduler(t *testing.T) {
	s := NewTickerScheduler(200)
	defer s.Stop()

	var frames atomic.Int32
	var loop func()
	loop = func() {
		if frames.Add(1) < 3 {
			s.RequestFrame(loop)
		}
	}
	s.RequestFrame(loop)

	assert.Eventually(t, func() bool { return frames.Load() == 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestTickerScheduler_CancelAndStop(t *testing.T) {
	s := NewTickerScheduler(0)

	var ran atomic.Bool
	cancel := s.RequestFrame(func() { ran.Store(true) })
	cancel()
	time.Sleep(50 * time.Millisecond)
	assert.False(t, ran.Load())

	s.Stop()
	s.Stop()
}

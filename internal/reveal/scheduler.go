package reveal

import (
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler runs callbacks at frame boundaries.
type Scheduler interface {
	// RequestFrame arranges for fn to run once on the next frame. The
	// returned cancel func prevents fn from running if it has not yet.
	RequestFrame(fn func()) (cancel func())
}

type frameRequest struct {
	fn        func()
	cancelled atomic.Bool
}

// frameQueue holds the callbacks waiting for the next frame. Callbacks
// requested while a frame is running wait for the following one.
type frameQueue struct {
	mu      sync.Mutex
	pending []*frameRequest
}

func (q *frameQueue) add(fn func()) func() {
	req := &frameRequest{fn: fn}
	q.mu.Lock()
	q.pending = append(q.pending, req)
	q.mu.Unlock()
	return func() { req.cancelled.Store(true) }
}

func (q *frameQueue) runFrame() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	ran := 0
	for _, req := range batch {
		if req.cancelled.Load() {
			continue
		}
		req.fn()
		ran++
	}
	return ran
}

func (q *frameQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, req := range q.pending {
		if !req.cancelled.Load() {
			n++
		}
	}
	return n
}

// DefaultFPS matches a typical display refresh rate.
const DefaultFPS = 60

// TickerScheduler runs frames from a time.Ticker on a single goroutine.
type TickerScheduler struct {
	queue frameQueue
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// NewTickerScheduler starts a scheduler producing fps frames per second.
// Stop must be called to release its goroutine.
func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = DefaultFPS
	}
	s := &TickerScheduler{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.loop(time.Second / time.Duration(fps))
	return s
}

func (s *TickerScheduler) loop(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.queue.runFrame()
		}
	}
}

func (s *TickerScheduler) RequestFrame(fn func()) func() {
	return s.queue.add(fn)
}

// Stop halts the ticker and waits for an in-flight frame to finish.
// Pending callbacks are dropped.
func (s *TickerScheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

// ManualScheduler runs a frame only when Step is called.
type ManualScheduler struct {
	queue frameQueue
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) RequestFrame(fn func()) func() {
	return s.queue.add(fn)
}

// Step runs one frame and returns how many callbacks ran.
func (s *ManualScheduler) Step() int {
	return s.queue.runFrame()
}

// Pending returns the number of live callbacks waiting for the next frame.
func (s *ManualScheduler) Pending() int {
	return s.queue.len()
}

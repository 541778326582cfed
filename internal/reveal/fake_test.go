package reveal

import (
	"context"
	"sync"
)

// fakeDevice hands out streams whose every bin equals the next scripted
// level. The last level repeats once the script runs out.
type fakeDevice struct {
	mu      sync.Mutex
	levels  []byte
	bins    int
	openErr error
	gate    chan struct{} // when set, Open blocks until it is closed

	open    int
	opened  int
	entered chan struct{}
}

func newFakeDevice(levels ...byte) *fakeDevice {
	return &fakeDevice{levels: levels, bins: 16, entered: make(chan struct{}, 1)}
}

func (d *fakeDevice) Open(ctx context.Context) (Stream, error) {
	select {
	case d.entered <- struct{}{}:
	default:
	}
	if d.gate != nil {
		select {
		case <-d.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.open++
	d.opened++
	return &fakeStream{dev: d}, nil
}

// released reports whether every stream handed out has been closed.
func (d *fakeDevice) released() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open == 0
}

func (d *fakeDevice) openCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opened
}

type fakeStream struct {
	dev    *fakeDevice
	frame  int
	closed bool
}

func (s *fakeStream) FrequencyBinCount() int { return s.dev.bins }

func (s *fakeStream) ByteFrequencyData(dst []byte) {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	level := byte(0)
	if n := len(s.dev.levels); n > 0 {
		level = s.dev.levels[min(s.frame, n-1)]
	}
	s.frame++
	for i := range dst {
		dst[i] = level
	}
}

func (s *fakeStream) Close() error {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.dev.open--
	}
	return nil
}

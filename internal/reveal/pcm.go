package reveal

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"sync"
)

// PCMDevice is a microphone fed by raw signed 16-bit little-endian mono
// PCM, such as the output of
//
//	arecord -q -f S16_LE -c 1 -r 44100
//
// Only one stream may be open at a time. Closing a stream stops analysis
// immediately; the reader goroutine exits after its current Read returns.
type PCMDevice struct {
	src     io.Reader
	fftSize int

	mu   sync.Mutex
	open bool
}

func NewPCMDevice(src io.Reader) *PCMDevice {
	return &PCMDevice{src: src, fftSize: DefaultFFTSize}
}

func (d *PCMDevice) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return nil, ErrDeviceBusy
	}

	analyser, err := NewAnalyser(d.fftSize)
	if err != nil {
		return nil, err
	}
	d.open = true

	s := &pcmStream{dev: d, analyser: analyser, done: make(chan struct{})}
	go s.read()
	return s, nil
}

// IsOpen reports whether a stream currently holds the device.
func (d *PCMDevice) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *PCMDevice) release() {
	d.mu.Lock()
	d.open = false
	d.mu.Unlock()
}

type pcmStream struct {
	dev  *PCMDevice
	done chan struct{}

	mu       sync.Mutex
	analyser *Analyser
	closed   bool
	err      error
}

func (s *pcmStream) read() {
	defer close(s.done)

	buf := make([]byte, 4096)
	samples := make([]float64, 0, len(buf)/2)
	var carry []byte

	for {
		n, err := s.dev.src.Read(buf)
		data := append(carry, buf[:n]...)
		whole := len(data) &^ 1

		samples = samples[:0]
		for i := 0; i < whole; i += 2 {
			v := int16(binary.LittleEndian.Uint16(data[i:]))
			samples = append(samples, float64(v)/32768)
		}
		carry = append(carry[:0], data[whole:]...)

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.analyser.Write(samples)
		if err != nil && !errors.Is(err, io.EOF) {
			s.err = err
		}
		s.mu.Unlock()

		if err != nil {
			return
		}
	}
}

func (s *pcmStream) FrequencyBinCount() int {
	return s.analyser.FrequencyBinCount()
}

func (s *pcmStream) ByteFrequencyData(dst []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		clear(dst)
		return
	}
	s.analyser.ByteFrequencyData(dst)
}

// Err returns the first non-EOF read error.
func (s *pcmStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *pcmStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.dev.release()
	return nil
}

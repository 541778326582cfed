package reveal

import (
	"context"
	"errors"
	"fmt"
)

// Device is an audio input that yields an analysable Stream once opened.
type Device interface {
	// Open acquires the input. It may block, for example while a user
	// answers a permission prompt. ctx bounds the acquisition only; the
	// returned Stream lives until it is closed.
	Open(ctx context.Context) (Stream, error)
}

// Stream is an open microphone stream together with its analysis context.
type Stream interface {
	// FrequencyBinCount is the number of bins filled by ByteFrequencyData.
	FrequencyBinCount() int
	// ByteFrequencyData writes the current magnitude spectrum, scaled to
	// 0-255, into dst.
	ByteFrequencyData(dst []byte)
	// Close stops the input and tears down the analysis context.
	Close() error
}

// ErrDeviceBusy is returned by devices that only support one open stream.
var ErrDeviceBusy = errors.New("audio device already open")

// DeviceError wraps a failure to acquire the audio input.
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device: %v", e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

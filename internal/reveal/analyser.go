package reveal

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Analyser defaults, matching a browser AnalyserNode.
const (
	DefaultFFTSize   = 2048
	DefaultSmoothing = 0.8
	DefaultMinDB     = -100.0
	DefaultMaxDB     = -30.0
)

// Analyser turns a stream of mono samples in [-1, 1) into byte frequency
// data the way a browser AnalyserNode does: Blackman window, FFT, magnitude
// smoothed over time, converted to decibels and mapped linearly from
// [MinDB, MaxDB] onto [0, 255].
//
// An Analyser is not safe for concurrent use.
type Analyser struct {
	Smoothing float64
	MinDB     float64
	MaxDB     float64

	size   int
	window []float64
	ring   []float64
	pos    int
	smooth []float64
	frame  []float64
	coeffs []complex128
	fft    *fourier.FFT
}

// NewAnalyser returns an analyser over the most recent size samples.
func NewAnalyser(size int) (*Analyser, error) {
	if size < 32 || size&(size-1) != 0 {
		return nil, fmt.Errorf("fft size %d must be a power of two >= 32", size)
	}
	a := &Analyser{
		Smoothing: DefaultSmoothing,
		MinDB:     DefaultMinDB,
		MaxDB:     DefaultMaxDB,
		size:      size,
		window:    blackman(size),
		ring:      make([]float64, size),
		smooth:    make([]float64, size/2),
		frame:     make([]float64, size),
		coeffs:    make([]complex128, size/2+1),
		fft:       fourier.NewFFT(size),
	}
	return a, nil
}

func blackman(n int) []float64 {
	const a0, a1, a2 = 0.42, 0.5, 0.08
	w := make([]float64, n)
	for i := range w {
		x := 2 * math.Pi * float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x)
	}
	return w
}

func (a *Analyser) FrequencyBinCount() int { return a.size / 2 }

// Write appends samples, keeping only the newest FFT-size of them.
func (a *Analyser) Write(samples []float64) {
	for _, s := range samples {
		a.ring[a.pos] = s
		a.pos = (a.pos + 1) % a.size
	}
}

// ByteFrequencyData analyses the current window into dst. Bins beyond
// len(dst) are still smoothed but not written.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	for i := 0; i < a.size; i++ {
		a.frame[i] = a.ring[(a.pos+i)%a.size] * a.window[i]
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.frame)

	scale := 255 / (a.MaxDB - a.MinDB)
	for k := range a.smooth {
		mag := cmplx.Abs(a.coeffs[k]) / float64(a.size)
		a.smooth[k] = a.Smoothing*a.smooth[k] + (1-a.Smoothing)*mag
		if k >= len(dst) {
			continue
		}

		if a.smooth[k] <= 0 {
			dst[k] = 0
			continue
		}
		v := scale * (20*math.Log10(a.smooth[k]) - a.MinDB)
		switch {
		case v < 0:
			dst[k] = 0
		case v > 255:
			dst[k] = 255
		default:
			dst[k] = byte(v)
		}
	}
}

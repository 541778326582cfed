package reveal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/princebabou/wishCraft/internal/models"
)

// ErrClosed is returned by operations on a closed Controller.
var ErrClosed = errors.New("reveal controller closed")

// FetchFunc loads the card shown by a Controller.
type FetchFunc func(ctx context.Context) (*models.Card, error)

// Controller runs the reveal flow for one card view. It is safe for
// concurrent use; frame callbacks and Close may run on different goroutines.
type Controller struct {
	device        Device
	sched         Scheduler
	threshold     float64
	logger        zerolog.Logger
	onChange      func(from, to State)
	onDeviceError func(error)

	mu          sync.Mutex
	state       State
	card        *models.Card
	loadErr     error
	stream      Stream
	bins        []byte
	samples     int
	cancelFrame func()
	cancelLoad  context.CancelFunc
	cancelOpen  context.CancelFunc
	closed      bool
	revealed    chan struct{}
}

type Option func(*Controller)

// WithThreshold overrides BlowThreshold.
func WithThreshold(t float64) Option {
	return func(c *Controller) { c.threshold = t }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithStateHook registers fn to be called after every state change. fn runs
// without the controller's lock held and may call back into it.
func WithStateHook(fn func(from, to State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithDeviceErrorHook registers fn to be called when the audio device cannot
// be opened.
func WithDeviceErrorHook(fn func(error)) Option {
	return func(c *Controller) { c.onDeviceError = fn }
}

func NewController(device Device, sched Scheduler, opts ...Option) *Controller {
	c := &Controller{
		device:    device,
		sched:     sched,
		threshold: BlowThreshold,
		logger:    log.Logger,
		state:     StateLoading,
		revealed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Card returns the loaded card, or nil before a successful Load.
func (c *Controller) Card() *models.Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.card
}

// LoadErr returns the error that moved the controller to StateError.
func (c *Controller) LoadErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// Samples returns how many frames have been analysed so far.
func (c *Controller) Samples() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.samples
}

// Revealed is closed once the controller has reached StateBlown and the
// state hook has returned.
func (c *Controller) Revealed() <-chan struct{} {
	return c.revealed
}

// Load runs fetch and moves the controller from Loading to Idle, or to Error
// when fetch fails. A Close during fetch cancels its context.
func (c *Controller) Load(ctx context.Context, fetch FetchFunc) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateLoading || c.cancelLoad != nil {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("load: %w: already %s", ErrInvalidTransition, state)
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancelLoad = cancel
	c.mu.Unlock()
	defer cancel()

	card, fetchErr := fetch(ctx)

	c.mu.Lock()
	c.cancelLoad = nil
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	event := EventLoaded
	if fetchErr != nil {
		event = EventLoadFailed
		c.loadErr = fetchErr
	} else {
		c.card = card
	}
	from := c.state
	to, err := Next(from, event)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = to
	c.mu.Unlock()

	if fetchErr != nil {
		c.logger.Error().Err(fetchErr).Msg("failed to load birthday card")
	}
	c.notify(from, to)
	return fetchErr
}

// Listen moves Idle to Listening, opens the audio device and starts
// sampling on the next frame. Calling it while listening or after the
// candles are blown does nothing.
//
// A device failure is logged and returned as a *DeviceError, and the
// controller stays in Listening without sampling.
func (c *Controller) Listen(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state == StateListening || c.state == StateBlown {
		c.mu.Unlock()
		return nil
	}
	from := c.state
	to, err := Next(from, EventListen)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = to
	ctx, cancel := context.WithCancel(ctx)
	c.cancelOpen = cancel
	c.mu.Unlock()
	defer cancel()
	c.notify(from, to)

	stream, err := c.device.Open(ctx)

	c.mu.Lock()
	c.cancelOpen = nil
	if c.closed {
		c.mu.Unlock()
		if err != nil {
			return ErrClosed
		}
		return errors.Join(ErrClosed, stream.Close())
	}
	if err != nil {
		c.mu.Unlock()
		derr := &DeviceError{Err: err}
		c.logger.Error().Err(err).Msg("error accessing microphone")
		if c.onDeviceError != nil {
			c.onDeviceError(derr)
		}
		return derr
	}

	c.stream = stream
	c.bins = make([]byte, stream.FrequencyBinCount())
	c.cancelFrame = c.sched.RequestFrame(c.sample)
	bins := len(c.bins)
	c.mu.Unlock()

	c.logger.Debug().Int("bins", bins).Msg("listening for candles")
	return nil
}

func (c *Controller) sample() {
	c.mu.Lock()
	c.cancelFrame = nil
	if c.closed || c.state != StateListening || c.stream == nil {
		c.mu.Unlock()
		return
	}

	c.stream.ByteFrequencyData(c.bins)
	c.samples++
	level := MeanMagnitude(c.bins)
	if level <= c.threshold {
		c.cancelFrame = c.sched.RequestFrame(c.sample)
		c.mu.Unlock()
		return
	}

	from := c.state
	c.state, _ = Next(from, EventBlow)
	releaseErr := c.releaseLocked()
	frames := c.samples
	c.mu.Unlock()

	if releaseErr != nil {
		c.logger.Warn().Err(releaseErr).Msg("failed to release audio stream")
	}
	c.logger.Info().Float64("level", level).Int("frames", frames).Msg("candles blown out")
	c.notify(from, StateBlown)
	close(c.revealed)
}

// releaseLocked cancels the pending frame and closes the stream.
func (c *Controller) releaseLocked() error {
	if c.cancelFrame != nil {
		c.cancelFrame()
		c.cancelFrame = nil
	}
	if c.stream == nil {
		return nil
	}
	err := c.stream.Close()
	c.stream = nil
	return err
}

// Close tears the controller down from any state: an in-flight Load or
// device acquisition is cancelled, the pending frame is dropped and the
// audio stream is closed.
// It is safe to call more than once.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.cancelLoad != nil {
		c.cancelLoad()
	}
	if c.cancelOpen != nil {
		c.cancelOpen()
	}
	return c.releaseLocked()
}

func (c *Controller) notify(from, to State) {
	if from == to || c.onChange == nil {
		return
	}
	c.onChange(from, to)
}

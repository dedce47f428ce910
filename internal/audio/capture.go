package audio

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/devbydaniel/voicemsg/internal/domain/voice"
)

// Stream is an open input device. Read blocks until the next buffer of
// interleaved samples is available. The returned slice may be reused by the
// next Read.
type Stream interface {
	Start() error
	Read() ([]int16, error)
	Stop() error
	Close() error
}

// Constraints describe the requested input format.
type Constraints struct {
	SampleRate      int
	Channels        int
	FramesPerBuffer int
}

// emptyReadPause is the wait after a read that returned no samples.
const emptyReadPause = 5 * time.Millisecond

type captureState int

const (
	stateIdle captureState = iota
	stateRecording
	stateStopped
)

// CaptureSession records one pass of a single input stream.
type CaptureSession struct {
	logger      *zap.Logger
	stream      Stream
	constraints Constraints

	mu      sync.Mutex
	state   captureState
	chunks  [][]int16
	samples int
	readErr error
	payload []byte

	quit     chan struct{}
	loopDone chan struct{}
	failed   chan struct{}

	haltOnce    sync.Once
	failOnce    sync.Once
	releaseOnce sync.Once
	releaseErr  error
}

// NewCaptureSession wraps an opened stream. The session owns the stream from
// here on and closes it in Release.
func NewCaptureSession(logger *zap.Logger, stream Stream, c Constraints) *CaptureSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptureSession{
		logger:      logger,
		stream:      stream,
		constraints: c,
		quit:        make(chan struct{}),
		loopDone:    make(chan struct{}),
		failed:      make(chan struct{}),
	}
}

// Start begins accumulating audio. Starting a session twice is a programming
// error and panics.
func (c *CaptureSession) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateIdle {
		panic("audio: Start called on a capture session that is not idle")
	}
	c.state = stateRecording

	if err := c.stream.Start(); err != nil {
		c.readErr = fmt.Errorf("starting stream: %w", err)
		c.failOnce.Do(func() { close(c.failed) })
		close(c.loopDone)
		return
	}
	go c.loop()
}

func (c *CaptureSession) loop() {
	defer close(c.loopDone)
	for {
		select {
		case <-c.quit:
			return
		default:
		}

		buf, err := c.stream.Read()
		if err != nil {
			c.mu.Lock()
			c.readErr = fmt.Errorf("reading stream: %w", err)
			c.mu.Unlock()
			c.logger.Warn("capture read failed", zap.Error(err))
			c.failOnce.Do(func() { close(c.failed) })
			return
		}
		if len(buf) == 0 {
			// No data yet; back off instead of spinning on the device.
			select {
			case <-c.quit:
				return
			case <-time.After(emptyReadPause):
			}
			continue
		}

		chunk := make([]int16, len(buf))
		copy(chunk, buf)

		c.mu.Lock()
		if c.state == stateRecording {
			c.chunks = append(c.chunks, chunk)
			c.samples += len(chunk)
		}
		c.mu.Unlock()
	}
}

// Failed is closed when the device reports an error while recording.
func (c *CaptureSession) Failed() <-chan struct{} {
	return c.failed
}

// halt ends the reader loop and waits for the buffer in flight.
func (c *CaptureSession) halt() {
	c.haltOnce.Do(func() {
		close(c.quit)
		c.mu.Lock()
		started := c.state != stateIdle
		c.mu.Unlock()
		if started {
			<-c.loopDone
		}
	})
}

// Stop ends recording. The buffer being read when Stop is called is kept.
func (c *CaptureSession) Stop() error {
	c.mu.Lock()
	switch c.state {
	case stateIdle:
		c.state = stateStopped
		c.mu.Unlock()
		return nil
	case stateStopped:
		err := c.readErr
		c.mu.Unlock()
		return wrapCaptureErr(err)
	}
	c.mu.Unlock()

	c.halt()

	c.mu.Lock()
	c.state = stateStopped
	err := c.readErr
	samples := c.samples
	c.mu.Unlock()

	if stopErr := c.stream.Stop(); stopErr != nil && err == nil {
		err = fmt.Errorf("stopping stream: %w", stopErr)
		c.mu.Lock()
		c.readErr = err
		c.mu.Unlock()
	}

	c.logger.Debug("capture stopped",
		zap.Int("samples", samples),
		zap.Duration("duration", c.Duration()),
	)
	return wrapCaptureErr(err)
}

func wrapCaptureErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", voice.ErrCaptureFailure, err)
}

// Finalize encodes the recorded audio as WAV. It is only valid after Stop and
// returns the same bytes on every call.
func (c *CaptureSession) Finalize() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateStopped {
		return nil, voice.ErrNotStopped
	}
	if c.payload != nil {
		return c.payload, nil
	}

	samples := make([]int16, 0, c.samples)
	for _, chunk := range c.chunks {
		samples = append(samples, chunk...)
	}
	payload, err := EncodeWAV(samples, c.constraints.SampleRate, c.constraints.Channels)
	if err != nil {
		return nil, fmt.Errorf("encoding wav: %w", err)
	}
	c.payload = payload
	return c.payload, nil
}

// Duration is the length of audio captured so far.
func (c *CaptureSession) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	frames := c.samples
	if c.constraints.Channels > 0 {
		frames /= c.constraints.Channels
	}
	if c.constraints.SampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(c.constraints.SampleRate)
}

// Release closes the device. Only the first call has an effect.
func (c *CaptureSession) Release() error {
	c.releaseOnce.Do(func() {
		c.halt()
		c.releaseErr = c.stream.Close()
		if c.releaseErr != nil {
			c.logger.Warn("closing input stream", zap.Error(c.releaseErr))
		}
	})
	return c.releaseErr
}

// Package mic opens the default input device through PortAudio.
package mic

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/devbydaniel/voicemsg/internal/audio"
	"github.com/devbydaniel/voicemsg/internal/domain/voice"
)

var (
	paMu        sync.Mutex
	initialized bool
)

// initialize sets up the PortAudio library once per process.
func initialize() error {
	paMu.Lock()
	defer paMu.Unlock()
	if initialized {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	initialized = true
	return nil
}

// Terminate shuts PortAudio down. Call once before the process exits.
func Terminate() {
	paMu.Lock()
	defer paMu.Unlock()
	if !initialized {
		return
	}
	_ = portaudio.Terminate()
	initialized = false
}

// Microphone opens capture sessions on the default input device.
type Microphone struct {
	Constraints audio.Constraints
	Logger      *zap.Logger
}

func NewMicrophone(c audio.Constraints, logger *zap.Logger) *Microphone {
	return &Microphone{Constraints: c, Logger: logger}
}

// Probe reports the default input device name.
func (m *Microphone) Probe() (string, error) {
	if err := initialize(); err != nil {
		return "", fmt.Errorf("%w: %w", voice.ErrDeviceUnavailable, err)
	}
	dev, err := portaudio.DefaultInputDevice()
	if err != nil {
		return "", fmt.Errorf("%w: %w", voice.ErrDeviceUnavailable, err)
	}
	if dev == nil || dev.MaxInputChannels < 1 {
		return "", fmt.Errorf("%w: no input channels", voice.ErrDeviceUnavailable)
	}
	return dev.Name, nil
}

// Open acquires the default input device. The returned session holds the
// device until Release.
func (m *Microphone) Open(ctx context.Context) (*audio.CaptureSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := m.Probe()
	if err != nil {
		return nil, err
	}

	c := m.Constraints
	buf := make([]int16, c.FramesPerBuffer*c.Channels)
	stream, err := portaudio.OpenDefaultStream(c.Channels, 0, float64(c.SampleRate), c.FramesPerBuffer, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %w", voice.ErrDeviceUnavailable, name, err)
	}

	logger := m.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("input device opened",
		zap.String("device", name),
		zap.Int("sample_rate", c.SampleRate),
		zap.Int("channels", c.Channels),
	)
	return audio.NewCaptureSession(logger, &paStream{stream: stream, buf: buf, logger: logger}, c), nil
}

// paStream adapts a blocking PortAudio stream to audio.Stream.
type paStream struct {
	stream *portaudio.Stream
	buf    []int16
	logger *zap.Logger
}

func (s *paStream) Start() error { return s.stream.Start() }
func (s *paStream) Stop() error  { return s.stream.Stop() }
func (s *paStream) Close() error { return s.stream.Close() }

func (s *paStream) Read() ([]int16, error) {
	if err := s.stream.Read(); err != nil {
		// An overflow drops samples but the stream keeps running.
		if errors.Is(err, portaudio.InputOverflowed) {
			s.logger.Debug("input overflowed")
			return s.buf, nil
		}
		return nil, err
	}
	return s.buf, nil
}

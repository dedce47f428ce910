// Package surface mounts the record control once the host is ready and
// dispatches its activations.
package surface

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// ErrNoMountPoint is returned when the host never became ready within the
// readiness window.
var ErrNoMountPoint = errors.New("no mount point for the record control")

// Host reports whether the integration point for the control exists yet.
type Host interface {
	Ready(ctx context.Context) error
}

// HostFunc adapts a function to Host.
type HostFunc func(ctx context.Context) error

func (f HostFunc) Ready(ctx context.Context) error { return f(ctx) }

// AlwaysReady is the host used when no chat host is configured.
var AlwaysReady = HostFunc(func(context.Context) error { return nil })

// Control is the record button. Only the session controller toggles it.
type Control struct {
	enabled atomic.Bool

	mu  sync.Mutex
	out io.Writer
}

func newControl(out io.Writer) *Control {
	if out == nil {
		out = io.Discard
	}
	c := &Control{out: out}
	c.enabled.Store(true)
	return c
}

func (c *Control) Enabled() bool {
	return c.enabled.Load()
}

// Disable reports false when the control was already disabled.
func (c *Control) Disable() bool {
	if !c.enabled.CompareAndSwap(true, false) {
		return false
	}
	c.render(false)
	return true
}

func (c *Control) Enable() {
	if c.enabled.CompareAndSwap(false, true) {
		c.render(true)
	}
}

func (c *Control) render(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if enabled {
		fmt.Fprintln(c.out, "[🎤 Record] press Enter to record, Ctrl+D to quit")
		return
	}
	fmt.Fprintln(c.out, "[🎤 Recording…]")
}

// Surface owns the single control of this process.
type Surface struct {
	host   Host
	window time.Duration
	out    io.Writer
	logger *zap.Logger

	once    sync.Once
	control *Control
	err     error
}

// New creates a surface that waits up to window for host readiness.
func New(host Host, window time.Duration, out io.Writer, logger *zap.Logger) *Surface {
	if host == nil {
		host = AlwaysReady
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Surface{host: host, window: window, out: out, logger: logger}
}

// Mount waits for the host and creates the control. Later calls return the
// result of the first.
func (s *Surface) Mount(ctx context.Context) (*Control, error) {
	s.once.Do(func() {
		s.control, s.err = s.mount(ctx)
	})
	return s.control, s.err
}

func (s *Surface) mount(ctx context.Context) (*Control, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		return struct{}{}, s.host.Ready(ctx)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(s.window),
	)
	if err != nil {
		s.logger.Debug("host not ready, control not mounted",
			zap.Int("attempts", attempts),
			zap.Duration("window", s.window),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrNoMountPoint, err)
	}

	s.logger.Debug("control mounted", zap.Int("attempts", attempts))
	c := newControl(s.out)
	c.render(true)
	return c, nil
}

// Serve calls handle for each activation while the control is enabled. It
// returns when activations is closed or ctx is done.
func (s *Surface) Serve(ctx context.Context, control *Control, activations <-chan string, handle func(context.Context)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-activations:
			if !ok {
				return nil
			}
			if !control.Enabled() {
				s.logger.Debug("activation ignored, control disabled")
				continue
			}
			handle(ctx)
		}
	}
}

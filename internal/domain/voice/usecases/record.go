package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devbydaniel/voicemsg/internal/domain/voice"
)

// Capture is one open microphone session.
type Capture interface {
	Start()
	Stop() error
	Finalize() ([]byte, error)
	Release() error
	Failed() <-chan struct{}
}

// OpenFunc acquires the input device.
type OpenFunc func(ctx context.Context) (Capture, error)

// Confirmer shows the Cancel/Send dialog. The channel yields one outcome.
type Confirmer interface {
	Present(ctx context.Context) <-chan voice.DialogOutcome
}

// Deliverer turns a finalized payload into a saved artifact.
type Deliverer interface {
	Deliver(ctx context.Context, payload []byte, startedAt time.Time) (*voice.Artifact, error)
}

// Control is the trigger that started the session.
type Control interface {
	Disable() bool
	Enable()
}

// RecordSession runs one recording attempt from activation to Done.
type RecordSession struct {
	Open    OpenFunc
	Dialog  Confirmer
	Deliver Deliverer
	Logger  *zap.Logger

	// Now and NewID are replaced in tests.
	Now   func() time.Time
	NewID func() string
}

// sessionRun is the mutable state of one Execute call.
type sessionRun struct {
	res     *voice.Result
	log     *zap.Logger
	capture Capture
	stopped bool
	release sync.Once
}

func (r *sessionRun) enter(state voice.State) {
	r.log.Debug("session state",
		zap.String("from", string(r.res.Session.State)),
		zap.String("to", string(state)),
	)
	r.res.Session.State = state
}

// stopCapture stops the capture at most once.
func (r *sessionRun) stopCapture() error {
	if r.capture == nil || r.stopped {
		return nil
	}
	r.stopped = true
	return r.capture.Stop()
}

// releaseCapture releases the device at most once per session.
func (r *sessionRun) releaseCapture() {
	if r.capture == nil {
		return
	}
	r.release.Do(func() {
		if err := r.capture.Release(); err != nil {
			r.log.Warn("releasing microphone", zap.Error(err))
		}
	})
}

// contain runs a cleanup step, logging a panic instead of propagating it.
func (r *sessionRun) contain(step string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error(step+" panicked", zap.Any("panic", p))
		}
	}()
	fn()
}

// Execute records until the dialog resolves and delivers the recording on
// Send. The control is disabled for the whole session. Failures are reported
// in the result and never returned as panics or errors. The result is never nil.
func (s *RecordSession) Execute(ctx context.Context, control Control) (res *voice.Result) {
	if !control.Disable() {
		return &voice.Result{
			Session: voice.Session{State: voice.StateDone, Disposition: voice.Discarded},
			Outcome: voice.DismissedAbnormally,
			Err:     voice.ErrSessionActive,
		}
	}

	session := voice.Session{
		ID:          s.newID(),
		StartedAt:   s.now(),
		State:       voice.StateRequesting,
		Disposition: voice.Pending,
	}
	run := &sessionRun{
		res: &voice.Result{Session: session, Outcome: voice.DismissedAbnormally},
		log: s.logger().With(zap.String("session_id", session.ID)),
	}

	defer func() {
		res = run.res
		if p := recover(); p != nil {
			err := fmt.Errorf("recording session aborted: %v", p)
			run.log.Error("session panicked", zap.Any("panic", p), zap.String("state", string(run.res.Session.State)))
			if run.res.Err == nil {
				run.res.Err = err
			}
		}
		if run.res.Session.Disposition == voice.Pending {
			if run.capture != nil && run.res.Session.State != voice.StateDiscarding {
				run.enter(voice.StateDiscarding)
			}
			run.res.Session.Disposition = voice.Discarded
			run.res.Artifact = nil
		}
		run.contain("stopping capture", func() {
			if err := run.stopCapture(); err != nil {
				run.log.Warn("stopping capture", zap.Error(err))
			}
		})
		run.contain("releasing microphone", run.releaseCapture)
		run.enter(voice.StateDone)
		control.Enable()
	}()

	s.run(ctx, run)
	return run.res
}

func (s *RecordSession) run(ctx context.Context, run *sessionRun) {
	capture, err := s.Open(ctx)
	if err != nil {
		if !errors.Is(err, voice.ErrDeviceUnavailable) {
			err = fmt.Errorf("%w: %w", voice.ErrDeviceUnavailable, err)
		}
		run.log.Error("microphone unavailable", zap.Error(err))
		run.res.Err = err
		return
	}
	run.capture = capture

	run.enter(voice.StateCapturing)
	capture.Start()

	run.enter(voice.StateAwaitingConfirmation)
	outcome := s.confirm(ctx, capture)
	run.res.Outcome = outcome

	run.enter(voice.StateFinalizing)
	stopped := s.now()
	if err := run.stopCapture(); err != nil {
		if !errors.Is(err, voice.ErrCaptureFailure) {
			err = fmt.Errorf("%w: %w", voice.ErrCaptureFailure, err)
		}
		run.log.Error("capture failed", zap.Error(err))
		run.res.Err = err
	}
	run.res.Duration = stopped.Sub(run.res.Session.StartedAt)

	if outcome != voice.Confirmed || run.res.Err != nil {
		run.enter(voice.StateDiscarding)
		run.log.Info("recording discarded", zap.Stringer("outcome", outcome))
		run.res.Session.Disposition = voice.Discarded
		return
	}

	run.enter(voice.StateDelivering)
	payload, err := capture.Finalize()
	run.releaseCapture()
	if err != nil {
		err = fmt.Errorf("%w: %w", voice.ErrCaptureFailure, err)
		run.log.Error("finalizing recording", zap.Error(err))
		run.res.Err = err
		run.res.Session.Disposition = voice.Discarded
		return
	}

	artifact, err := s.Deliver.Deliver(ctx, payload, run.res.Session.StartedAt)
	if err == nil && artifact == nil {
		err = fmt.Errorf("%w: no artifact produced", voice.ErrDeliveryFailure)
	}
	if err != nil {
		run.log.Error("delivering recording", zap.Error(err))
		run.res.Err = err
		run.res.Session.Disposition = voice.Discarded
		return
	}
	run.log.Info("recording delivered",
		zap.String("file", artifact.Filename),
		zap.Int("bytes", len(artifact.Bytes)),
	)
	run.res.Artifact = artifact
	run.res.Session.Disposition = voice.Delivered
}

// confirm presents the dialog while capture runs. A capture failure dismisses
// the dialog; its single outcome is still awaited.
func (s *RecordSession) confirm(ctx context.Context, capture Capture) voice.DialogOutcome {
	dctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := s.Dialog.Present(dctx)
	select {
	case outcome, ok := <-outcomes:
		if !ok {
			return voice.DismissedAbnormally
		}
		return outcome
	case <-capture.Failed():
		cancel()
		<-outcomes
		return voice.DismissedAbnormally
	}
}

func (s *RecordSession) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *RecordSession) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *RecordSession) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}

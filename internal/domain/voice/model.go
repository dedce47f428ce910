package voice

import (
	"errors"
	"time"
)

var (
	// ErrDeviceUnavailable is returned when no input device exists or access was denied.
	ErrDeviceUnavailable = errors.New("audio input device unavailable")
	// ErrCaptureFailure wraps errors raised by the device while recording.
	ErrCaptureFailure = errors.New("capture failed")
	// ErrDeliveryFailure wraps errors raised while saving the recording.
	ErrDeliveryFailure = errors.New("delivery failed")
	// ErrSessionActive is returned when the control is activated during a running session.
	ErrSessionActive = errors.New("a recording session is already active")
	// ErrNotStopped is returned by Finalize on a capture that has not been stopped.
	ErrNotStopped = errors.New("capture session not stopped")
)

// DialogOutcome is the single result of the confirmation dialog.
type DialogOutcome int

const (
	Confirmed DialogOutcome = iota
	CanceledByUser
	DismissedAbnormally
)

func (o DialogOutcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case CanceledByUser:
		return "canceled"
	case DismissedAbnormally:
		return "dismissed"
	}
	return "unknown"
}

// State is a step of the session controller.
type State string

const (
	StateRequesting           State = "requesting"
	StateCapturing            State = "capturing"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateFinalizing           State = "finalizing"
	StateDelivering           State = "delivering"
	StateDiscarding           State = "discarding"
	StateDone                 State = "done"
)

// Disposition is what happened to the captured audio.
type Disposition string

const (
	Pending   Disposition = "pending"
	Delivered Disposition = "delivered"
	Discarded Disposition = "discarded"
)

// Session is one recording attempt, from control activation to Done.
type Session struct {
	ID          string
	StartedAt   time.Time
	State       State
	Disposition Disposition
}

// Artifact is the finalized recording handed to the user.
type Artifact struct {
	Bytes    []byte
	MIMEType string
	Filename string
	Path     string // where the file was saved
}

// Result holds the outcome of a completed session.
type Result struct {
	Session  Session
	Outcome  DialogOutcome
	Artifact *Artifact
	Duration time.Duration // from start until the dialog resolved
	Err      error
}

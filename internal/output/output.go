package output

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/devbydaniel/voicemsg/internal/domain/voice"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Listening(host string) {
	fmt.Fprintf(f.w, "👂 Record control mounted on %s\n", host)
}

// SessionResult prints the outcome of one recording session.
func (f *Formatter) SessionResult(res *voice.Result) {
	switch {
	case res == nil:
		f.Error("Recording session ended without a result")
	case errors.Is(res.Err, voice.ErrSessionActive):
		f.Warning("A recording is already in progress")
	case errors.Is(res.Err, voice.ErrDeviceUnavailable):
		f.Error("Microphone unavailable: " + res.Err.Error())
	case res.Err != nil:
		f.Error("Recording discarded: " + res.Err.Error())
	case res.Session.Disposition == voice.Delivered && res.Artifact != nil:
		fmt.Fprintf(f.w, "⏹️  Recording stopped (%s)\n", formatDuration(res.Duration))
		fmt.Fprintf(f.w, "💾 Saved: %s\n", res.Artifact.Path)
	default:
		fmt.Fprintf(f.w, "🗑️  Recording discarded (%s)\n", res.Outcome)
	}
}

func (f *Formatter) Notification(title, message string) {
	fmt.Fprintf(f.w, "📎 %s: %s\n", title, message)
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) RecordingListHeader(dir string) {
	fmt.Fprintf(f.w, "🎤 Recordings in %s:\n\n", dir)
}

func (f *Formatter) RecordingListItem(name string, size int64) {
	fmt.Fprintf(f.w, "  %s (%s)\n", name, formatSize(size))
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	if n < unit*unit {
		return fmt.Sprintf("%.1f KB", float64(n)/unit)
	}
	return fmt.Sprintf("%.1f MB", float64(n)/(unit*unit))
}

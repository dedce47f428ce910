// Package dialog implements the blocking Cancel/Send confirmation shown while
// a recording is in progress.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/devbydaniel/voicemsg/internal/domain/voice"
)

// DefaultInputGrace is long enough to absorb a double-pressed Enter.
const DefaultInputGrace = 500 * time.Millisecond

// Options configure the confirmation modal.
type Options struct {
	Title        string
	Text         string
	CancelLabel  string
	ConfirmLabel string

	// Blocking must be true; the modal owns input until it resolves.
	Blocking              bool
	DismissOnOutsideClick bool
	DismissOnEscape       bool

	// LiveIndicator draws a ticking "REC" line while the modal is open.
	LiveIndicator bool

	// InputGrace drops answers that arrive this soon after the modal opens,
	// so a repeated Enter on the record control cannot send at once.
	InputGrace time.Duration
}

func DefaultOptions() Options {
	return Options{
		Title:         "Recording...",
		Text:          `When you're done, type "s" + Enter (or just Enter) to Send, "c" + Enter to Cancel.`,
		CancelLabel:   "Cancel",
		ConfirmLabel:  "Send",
		Blocking:      true,
		LiveIndicator: true,
		InputGrace:    DefaultInputGrace,
	}
}

// Terminal presents the modal on a line-oriented console.
type Terminal struct {
	lines <-chan string
	opts  Options

	// Tick is the live indicator refresh interval.
	Tick time.Duration

	mu  sync.Mutex
	out io.Writer
}

// NewTerminal builds a modal reading answers from lines. Only blocking modals
// that ignore escape and outside interaction are supported.
func NewTerminal(lines <-chan string, out io.Writer, opts Options) (*Terminal, error) {
	if !opts.Blocking || opts.DismissOnOutsideClick || opts.DismissOnEscape {
		return nil, errors.New("dialog: confirmation must be blocking and not dismissible")
	}
	if out == nil {
		out = io.Discard
	}
	return &Terminal{
		lines: lines,
		opts:  opts,
		Tick:  time.Second,
		out:   out,
	}, nil
}

func (t *Terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

// Present shows the modal. The returned channel yields exactly one outcome
// and is then closed. Canceling ctx or closing the input dismisses it.
func (t *Terminal) Present(ctx context.Context) <-chan voice.DialogOutcome {
	result := make(chan voice.DialogOutcome, 1)

	t.printf("\n🎙️  %s\n%s\n[%s] [%s]\n", t.opts.Title, t.opts.Text, t.opts.CancelLabel, t.opts.ConfirmLabel)

	go func() {
		defer close(result)

		stopIndicator := func() {}
		if t.opts.LiveIndicator {
			stopIndicator = t.startIndicator()
		}
		outcome := t.wait(ctx, time.Now().Add(t.opts.InputGrace))
		stopIndicator()

		t.printf("\n")
		result <- outcome
	}()
	return result
}

func (t *Terminal) wait(ctx context.Context, acceptFrom time.Time) voice.DialogOutcome {
	for {
		select {
		case <-ctx.Done():
			return voice.DismissedAbnormally
		case line, ok := <-t.lines:
			if !ok {
				return voice.DismissedAbnormally
			}
			if time.Now().Before(acceptFrom) {
				continue
			}
			if outcome, ok := t.parse(line); ok {
				return outcome
			}
			t.printf("Press Enter to %s or type \"c\" to %s.\n", t.opts.ConfirmLabel, t.opts.CancelLabel)
		}
	}
}

// parse maps an answer to an outcome. Escape sequences and unknown input are
// ignored.
func (t *Terminal) parse(line string) (voice.DialogOutcome, bool) {
	if strings.ContainsRune(line, '\x1b') {
		return 0, false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	switch answer {
	case "", "s", "y", "yes", strings.ToLower(t.opts.ConfirmLabel):
		return voice.Confirmed, true
	case "c", "n", "no", strings.ToLower(t.opts.CancelLabel):
		return voice.CanceledByUser, true
	}
	return 0, false
}

// startIndicator redraws the elapsed time until the returned func is called.
func (t *Terminal) startIndicator() func() {
	tick := t.Tick
	if tick <= 0 {
		tick = time.Second
	}
	started := time.Now()
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				elapsed := time.Since(started).Round(time.Second)
				t.printf("\r● REC %02d:%02d", int(elapsed.Minutes()), int(elapsed.Seconds())%60)
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}

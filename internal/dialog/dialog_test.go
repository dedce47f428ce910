package dialog

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbydaniel/voicemsg/internal/domain/voice"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func quietOptions() Options {
	opts := DefaultOptions()
	opts.LiveIndicator = false
	opts.InputGrace = 0
	return opts
}

func receive(t *testing.T, ch <-chan voice.DialogOutcome) voice.DialogOutcome {
	t.Helper()
	select {
	case o, ok := <-ch:
		require.True(t, ok, "expected an outcome before close")
		return o
	case <-time.After(time.Second):
		t.Fatal("dialog did not resolve")
	}
	return 0
}

func TestNewTerminal_RejectsDismissibleModal(t *testing.T) {
	for name, mutate := range map[string]func(*Options){
		"non-blocking":  func(o *Options) { o.Blocking = false },
		"outside click": func(o *Options) { o.DismissOnOutsideClick = true },
		"escape":        func(o *Options) { o.DismissOnEscape = true },
	} {
		t.Run(name, func(t *testing.T) {
			opts := DefaultOptions()
			mutate(&opts)
			_, err := NewTerminal(nil, nil, opts)
			assert.Error(t, err)
		})
	}
}

func TestPresent_Answers(t *testing.T) {
	cases := []struct {
		input string
		want  voice.DialogOutcome
	}{
		{"", voice.Confirmed},
		{"s", voice.Confirmed},
		{" Send ", voice.Confirmed},
		{"c", voice.CanceledByUser},
		{"CANCEL", voice.CanceledByUser},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			lines := make(chan string, 1)
			term, err := NewTerminal(lines, nil, quietOptions())
			require.NoError(t, err)

			outcomes := term.Present(context.Background())
			lines <- tc.input
			assert.Equal(t, tc.want, receive(t, outcomes))
		})
	}
}

func TestPresent_IgnoresEscapeAndUnknownInput(t *testing.T) {
	lines := make(chan string, 3)
	out := &syncBuffer{}
	term, err := NewTerminal(lines, out, quietOptions())
	require.NoError(t, err)

	outcomes := term.Present(context.Background())
	lines <- "\x1b"
	lines <- "what"
	lines <- "c"

	assert.Equal(t, voice.CanceledByUser, receive(t, outcomes))
	assert.Contains(t, out.String(), "Recording...")
	assert.Contains(t, out.String(), `When you're done, type "s" + Enter (or just Enter) to Send, "c" + Enter to Cancel.`)
	assert.Contains(t, out.String(), "Press Enter to Send")
}

func TestPresent_ResolvesExactlyOnce(t *testing.T) {
	lines := make(chan string, 2)
	term, err := NewTerminal(lines, nil, quietOptions())
	require.NoError(t, err)

	outcomes := term.Present(context.Background())
	lines <- "s"
	lines <- "c"

	assert.Equal(t, voice.Confirmed, receive(t, outcomes))
	_, ok := <-outcomes
	assert.False(t, ok, "channel must close after the single outcome")
}

func TestPresent_ClosedInputDismisses(t *testing.T) {
	lines := make(chan string)
	term, err := NewTerminal(lines, nil, quietOptions())
	require.NoError(t, err)

	outcomes := term.Present(context.Background())
	close(lines)
	assert.Equal(t, voice.DismissedAbnormally, receive(t, outcomes))
}

func TestPresent_ContextCancelDismisses(t *testing.T) {
	term, err := NewTerminal(make(chan string), nil, quietOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	outcomes := term.Present(ctx)
	cancel()
	assert.Equal(t, voice.DismissedAbnormally, receive(t, outcomes))
}

func TestPresent_LiveIndicator(t *testing.T) {
	lines := make(chan string, 1)
	out := &syncBuffer{}
	opts := DefaultOptions()
	opts.InputGrace = 0
	term, err := NewTerminal(lines, out, opts)
	require.NoError(t, err)
	term.Tick = 5 * time.Millisecond

	outcomes := term.Present(context.Background())
	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("● REC 00:00"))
	}, time.Second, time.Millisecond)

	lines <- ""
	assert.Equal(t, voice.Confirmed, receive(t, outcomes))
}

func TestPresent_DropsAnswersDuringGrace(t *testing.T) {
	lines := make(chan string, 1)
	opts := quietOptions()
	opts.InputGrace = 200 * time.Millisecond
	term, err := NewTerminal(lines, nil, opts)
	require.NoError(t, err)

	outcomes := term.Present(context.Background())
	// A second Enter right after activation must not send.
	lines <- ""
	select {
	case o := <-outcomes:
		t.Fatalf("resolved during grace with %s", o)
	case <-time.After(100 * time.Millisecond):
	}

	time.Sleep(150 * time.Millisecond)
	lines <- "c"
	assert.Equal(t, voice.CanceledByUser, receive(t, outcomes))
}

func TestDefaultOptions_HaveInputGrace(t *testing.T) {
	assert.Equal(t, DefaultInputGrace, DefaultOptions().InputGrace)
}

package app

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/devbydaniel/voicemsg/config"
	"github.com/devbydaniel/voicemsg/internal/audio"
	"github.com/devbydaniel/voicemsg/internal/audio/mic"
	"github.com/devbydaniel/voicemsg/internal/console"
	"github.com/devbydaniel/voicemsg/internal/dialog"
	"github.com/devbydaniel/voicemsg/internal/domain/voice/usecases"
	"github.com/devbydaniel/voicemsg/internal/host/mattermost"
	"github.com/devbydaniel/voicemsg/internal/notify"
	"github.com/devbydaniel/voicemsg/internal/output"
	"github.com/devbydaniel/voicemsg/internal/surface"
)

type App struct {
	Microphone *mic.Microphone
	Transcoder *audio.Transcoder
	Mattermost *mattermost.Host // nil unless configured
	Deliver    *usecases.DeliverArtifact
	Surface    *surface.Surface

	// HostName describes where the control is mounted.
	HostName string

	logger *zap.Logger
	in     io.Reader
	out    io.Writer

	linesOnce sync.Once
	lines     <-chan string

	sessionOnce sync.Once
	session     *usecases.RecordSession
	sessionErr  error
}

// New wires the recorder. Console input is read from in and prompts are
// written to out.
func New(cfg *config.Config, logger *zap.Logger, in io.Reader, out io.Writer) *App {
	a := &App{logger: logger, in: in, out: out, HostName: "console"}

	a.Microphone = mic.NewMicrophone(audio.Constraints{
		SampleRate:      cfg.SampleRate,
		Channels:        cfg.Channels,
		FramesPerBuffer: cfg.FramesPerBuffer,
	}, logger.Named("mic"))
	a.Transcoder = audio.NewTranscoder()

	formatter := output.NewFormatter(out)
	notifiers := notify.Multi{&notify.Console{Formatter: formatter}}
	if cfg.Notifications {
		notifiers = append(notifiers, notify.NewDesktop())
	}

	var attacher usecases.Attacher = notify.NewClipboard()
	var host surface.Host = surface.AlwaysReady
	if cfg.Mattermost.Enabled() {
		a.Mattermost = mattermost.New(mattermost.Options{
			URL:     cfg.Mattermost.URL,
			Token:   cfg.Mattermost.Token,
			Team:    cfg.Mattermost.Team,
			Channel: cfg.Mattermost.Channel,
		}, logger.Named("mattermost"))
		attacher = a.Mattermost
		host = a.Mattermost
		a.HostName = cfg.Mattermost.Team + "/" + cfg.Mattermost.Channel
	}

	a.Deliver = &usecases.DeliverArtifact{
		OutputDir:  cfg.OutputDir,
		Format:     cfg.Format,
		Transcoder: a.Transcoder,
		Notifier:   notifiers,
		Attacher:   attacher,
		Logger:     logger.Named("deliver"),
	}

	a.Surface = surface.New(host, cfg.ReadinessWindow, out, logger.Named("surface"))
	return a
}

// RecordSession returns the session controller. The console reader and the
// dialog are created on first use so commands that never record leave stdin
// alone.
func (a *App) RecordSession() (*usecases.RecordSession, error) {
	a.sessionOnce.Do(func() {
		d, err := dialog.NewTerminal(a.Lines(), a.out, dialog.DefaultOptions())
		if err != nil {
			a.sessionErr = err
			return
		}
		a.session = &usecases.RecordSession{
			Open:    a.openCapture,
			Dialog:  d,
			Deliver: a.Deliver,
			Logger:  a.logger.Named("session"),
		}
	})
	return a.session, a.sessionErr
}

func (a *App) openCapture(ctx context.Context) (usecases.Capture, error) {
	s, err := a.Microphone.Open(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Lines returns the shared console line channel, starting the reader on
// first use.
func (a *App) Lines() <-chan string {
	a.linesOnce.Do(func() {
		a.lines = console.Lines(a.in)
	})
	return a.lines
}

// Close releases process-wide audio resources.
func (a *App) Close() {
	mic.Terminate()
}

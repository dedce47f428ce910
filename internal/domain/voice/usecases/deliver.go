package usecases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/devbydaniel/voicemsg/internal/audio"
	"github.com/devbydaniel/voicemsg/internal/domain/voice"
)

const (
	FormatWAV = "wav"
	FormatOgg = "ogg"

	// FilenameTimeLayout renders e.g. "2026-10-15 at 14.03.22".
	FilenameTimeLayout = "2006-01-02 at 15.04.05"

	maxNameCollisions = 100
)

// Transcoder converts a WAV payload to Ogg/Opus.
type Transcoder interface {
	ToOgg(ctx context.Context, wav []byte) ([]byte, error)
}

// Notifier shows the transient "recording ready" message.
type Notifier interface {
	Notify(title, message string) error
}

// Attacher hands a saved artifact to the host's upload path.
type Attacher interface {
	Attach(ctx context.Context, artifact *voice.Artifact) error
}

// DeliverArtifact saves finalized recordings and hands them to the host.
type DeliverArtifact struct {
	OutputDir  string
	Format     string
	Transcoder Transcoder
	Notifier   Notifier
	Attacher   Attacher
	Logger     *zap.Logger
}

// Filename returns the artifact name for a recording started at t.
func Filename(t time.Time, format string) string {
	return fmt.Sprintf("Voice Recording %s.%s", t.Local().Format(FilenameTimeLayout), format)
}

// Deliver names the payload after startedAt, saves it, shows the success
// notification and attaches the file. Only a failure to produce or save the
// file is returned; notification and attach problems are logged.
func (d *DeliverArtifact) Deliver(ctx context.Context, payload []byte, startedAt time.Time) (*voice.Artifact, error) {
	log := d.logger()

	format := d.Format
	if format == "" {
		format = FormatWAV
	}
	data, mimeType := payload, audio.WAVMIMEType
	switch format {
	case FormatWAV:
	case FormatOgg:
		if d.Transcoder == nil {
			return nil, fmt.Errorf("%w: no transcoder for %q", voice.ErrDeliveryFailure, format)
		}
		ogg, err := d.Transcoder.ToOgg(ctx, payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", voice.ErrDeliveryFailure, err)
		}
		data, mimeType = ogg, audio.OggMIMEType
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", voice.ErrDeliveryFailure, format)
	}

	path, err := d.save(Filename(startedAt, format), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", voice.ErrDeliveryFailure, err)
	}
	artifact := &voice.Artifact{
		Bytes:    data,
		MIMEType: mimeType,
		Filename: filepath.Base(path),
		Path:     path,
	}
	log.Info("recording saved", zap.String("path", path), zap.String("mime_type", mimeType))

	if d.Notifier != nil {
		if err := d.Notifier.Notify("Upload your recording", "Drag & drop the downloaded recording into a file dialog."); err != nil {
			log.Warn("showing notification", zap.Error(err))
		}
	}
	if d.Attacher != nil {
		if err := d.Attacher.Attach(ctx, artifact); err != nil {
			log.Warn("attaching recording", zap.Error(err))
		}
	}
	return artifact, nil
}

// save writes data under OutputDir without replacing existing files; a
// " (n)" suffix is added on collision.
func (d *DeliverArtifact) save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(d.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 0; n < maxNameCollisions; n++ {
		candidate := name
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, n, ext)
		}
		path := filepath.Join(d.OutputDir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating %s: %w", candidate, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("writing %s: %w", candidate, err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("writing %s: %w", candidate, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("too many recordings named %q", name)
}

func (d *DeliverArtifact) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

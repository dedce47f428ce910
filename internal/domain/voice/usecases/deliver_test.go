package usecases

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbydaniel/voicemsg/internal/domain/voice"
)

type fakeNotifier struct {
	titles []string
	err    error
}

func (n *fakeNotifier) Notify(title, _ string) error {
	n.titles = append(n.titles, title)
	return n.err
}

type fakeAttacher struct {
	attached []*voice.Artifact
	err      error
}

func (a *fakeAttacher) Attach(_ context.Context, artifact *voice.Artifact) error {
	a.attached = append(a.attached, artifact)
	return a.err
}

type fakeTranscoder struct {
	out []byte
	err error
}

func (t *fakeTranscoder) ToOgg(context.Context, []byte) ([]byte, error) {
	return t.out, t.err
}

var startedAt = time.Date(2026, 10, 15, 9, 5, 7, 0, time.Local)

func TestFilename(t *testing.T) {
	assert.Equal(t, "Voice Recording 2026-10-15 at 09.05.07.wav", Filename(startedAt, FormatWAV))
	assert.Equal(t, "Voice Recording 2026-10-15 at 09.05.07.ogg", Filename(startedAt, FormatOgg))
}

func TestDeliver_SavesNotifiesAndAttaches(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	notifier := &fakeNotifier{}
	attacher := &fakeAttacher{}
	d := &DeliverArtifact{OutputDir: dir, Format: FormatWAV, Notifier: notifier, Attacher: attacher}

	artifact, err := d.Deliver(context.Background(), []byte("wav-bytes"), startedAt)
	require.NoError(t, err)

	assert.Equal(t, "Voice Recording 2026-10-15 at 09.05.07.wav", artifact.Filename)
	assert.Equal(t, "audio/wav", artifact.MIMEType)
	assert.Equal(t, filepath.Join(dir, artifact.Filename), artifact.Path)

	data, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, "wav-bytes", string(data))

	assert.Equal(t, []string{"Upload your recording"}, notifier.titles)
	require.Len(t, attacher.attached, 1)
	assert.Same(t, artifact, attacher.attached[0])
}

func TestDeliver_DoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	d := &DeliverArtifact{OutputDir: dir}

	first, err := d.Deliver(context.Background(), []byte("one"), startedAt)
	require.NoError(t, err)
	second, err := d.Deliver(context.Background(), []byte("two"), startedAt)
	require.NoError(t, err)

	assert.Equal(t, "Voice Recording 2026-10-15 at 09.05.07 (1).wav", second.Filename)
	data, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestDeliver_Ogg(t *testing.T) {
	d := &DeliverArtifact{
		OutputDir:  t.TempDir(),
		Format:     FormatOgg,
		Transcoder: &fakeTranscoder{out: []byte("OggS")},
	}

	artifact, err := d.Deliver(context.Background(), []byte("wav"), startedAt)
	require.NoError(t, err)
	assert.Equal(t, "audio/ogg", artifact.MIMEType)
	assert.Equal(t, []byte("OggS"), artifact.Bytes)
	assert.Equal(t, ".ogg", filepath.Ext(artifact.Filename))
}

func TestDeliver_TranscodeFailure(t *testing.T) {
	dir := t.TempDir()
	d := &DeliverArtifact{
		OutputDir:  dir,
		Format:     FormatOgg,
		Transcoder: &fakeTranscoder{err: errors.New("ffmpeg exited 1")},
	}

	_, err := d.Deliver(context.Background(), []byte("wav"), startedAt)
	assert.ErrorIs(t, err, voice.ErrDeliveryFailure)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeliver_UnwritableOutput(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	notifier := &fakeNotifier{}
	d := &DeliverArtifact{OutputDir: filepath.Join(blocker, "sub"), Notifier: notifier}

	_, err := d.Deliver(context.Background(), []byte("wav"), startedAt)
	assert.ErrorIs(t, err, voice.ErrDeliveryFailure)
	assert.Empty(t, notifier.titles)
}

func TestDeliver_AttachAndNotifyFailuresAreNotFatal(t *testing.T) {
	d := &DeliverArtifact{
		OutputDir: t.TempDir(),
		Notifier:  &fakeNotifier{err: errors.New("no notification daemon")},
		Attacher:  &fakeAttacher{err: errors.New("upload rejected")},
	}

	artifact, err := d.Deliver(context.Background(), []byte("wav"), startedAt)
	require.NoError(t, err)
	assert.FileExists(t, artifact.Path)
}

func TestDeliver_UnsupportedFormat(t *testing.T) {
	d := &DeliverArtifact{OutputDir: t.TempDir(), Format: "mp3"}
	_, err := d.Deliver(context.Background(), []byte("wav"), startedAt)
	assert.ErrorIs(t, err, voice.ErrDeliveryFailure)
}

package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// OggMIMEType is the MIME type of transcoded recordings.
const OggMIMEType = "audio/ogg"

// Transcoder converts finalized WAV recordings with ffmpeg.
type Transcoder struct {
	// Binary defaults to "ffmpeg" on PATH.
	Binary string
}

func NewTranscoder() *Transcoder {
	return &Transcoder{Binary: "ffmpeg"}
}

func (t *Transcoder) binary() string {
	if t.Binary == "" {
		return "ffmpeg"
	}
	return t.Binary
}

func (t *Transcoder) CheckFFmpeg() error {
	if _, err := exec.LookPath(t.binary()); err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}
	return nil
}

// ToOgg encodes a WAV payload as Ogg/Opus, piping through ffmpeg.
func (t *Transcoder) ToOgg(ctx context.Context, wav []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, t.binary(),
		"-hide_banner",
		"-loglevel", "error",
		"-f", "wav",
		"-i", "pipe:0",
		"-c:a", "libopus",
		"-b:a", "32k",
		"-f", "ogg",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(wav)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("transcoding audio: %w\n%s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

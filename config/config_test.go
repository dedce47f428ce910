package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, ".state"))
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := load("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Downloads"), cfg.OutputDir)
	assert.Equal(t, filepath.Join(home, ".state", "voicemsg"), cfg.StateDir)
	assert.DirExists(t, cfg.StateDir)
	assert.Equal(t, "wav", cfg.Format)
	assert.Equal(t, 48000, cfg.SampleRate)
	assert.Equal(t, 1, cfg.Channels)
	assert.Equal(t, 1024, cfg.FramesPerBuffer)
	assert.True(t, cfg.Notifications)
	assert.Equal(t, 10*time.Second, cfg.ReadinessWindow)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Mattermost.Enabled())
}

func TestLoad_File(t *testing.T) {
	home := isolate(t)
	path := writeConfig(t, `
output_dir = "~/voice"
format = "ogg"
sample_rate = 16000
channels = 2
notifications = false
readiness_window = "3s"

[mattermost]
url = "https://chat.example.com"
token = "tok"
team = "eng"
channel = "town-square"
`)

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "voice"), cfg.OutputDir)
	assert.Equal(t, "ogg", cfg.Format)
	assert.Equal(t, 16000, cfg.SampleRate)
	assert.Equal(t, 2, cfg.Channels)
	assert.False(t, cfg.Notifications)
	assert.Equal(t, 3*time.Second, cfg.ReadinessWindow)
	assert.True(t, cfg.Mattermost.Enabled())
	assert.Equal(t, "town-square", cfg.Mattermost.Channel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
format = "ogg"

[mattermost]
team = "eng"
`)
	t.Setenv("VOICEMSG_FORMAT", "wav")
	t.Setenv("VOICEMSG_READINESS_WINDOW", "250ms")
	t.Setenv("VOICEMSG_NOTIFICATIONS", "false")
	t.Setenv("VOICEMSG_MATTERMOST_TEAM", "ops")

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, "wav", cfg.Format)
	assert.Equal(t, 250*time.Millisecond, cfg.ReadinessWindow)
	assert.False(t, cfg.Notifications)
	assert.Equal(t, "ops", cfg.Mattermost.Team)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"format":           `format = "mp3"`,
		"channels":         `channels = 6`,
		"readiness window": `readiness_window = "soon"`,
		"syntax":           `format = `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			_, err := load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	isolate(t)
	t.Setenv("VOICEMSG_SAMPLE_RATE", "fast")

	_, err := load("")
	assert.Error(t, err)
}

func TestMattermostEnabled(t *testing.T) {
	m := Mattermost{URL: "https://chat.example.com", Token: "tok", Team: "eng"}
	assert.False(t, m.Enabled())
	m.Channel = "town-square"
	assert.True(t, m.Enabled())
}

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbydaniel/voicemsg/config"
)

func runList(t *testing.T, dir string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewListCmd(&Dependencies{Config: &config.Config{OutputDir: dir}})
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestList_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"Voice Recording 2026-10-14 at 08.00.00.wav",
		"Voice Recording 2026-10-15 at 09.05.07.ogg",
		"holiday.jpg",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Voice Recording folder"), 0o755))

	out := runList(t, dir)

	assert.Contains(t, out, "Recordings in "+dir)
	assert.NotContains(t, out, "holiday.jpg")
	assert.NotContains(t, out, "folder")
	newer := bytes.Index([]byte(out), []byte("2026-10-15"))
	older := bytes.Index([]byte(out), []byte("2026-10-14"))
	require.NotEqual(t, -1, newer)
	require.NotEqual(t, -1, older)
	assert.Less(t, newer, older)
	assert.Contains(t, out, "(4 B)")
}

func TestList_Empty(t *testing.T) {
	assert.Contains(t, runList(t, t.TempDir()), "No recordings found")
	assert.Contains(t, runList(t, filepath.Join(t.TempDir(), "missing")), "No recordings found")
}

package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFull(t *testing.T) {
	assert.Equal(t, "voicemsg dev ("+runtime.GOOS+"/"+runtime.GOARCH+"), commit none, built at unknown", Full())

	BuiltBy = "goreleaser"
	t.Cleanup(func() { BuiltBy = "" })
	assert.Contains(t, Full(), " by goreleaser")
}

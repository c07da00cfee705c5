package cli

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	original := version
	version = v
	t.Cleanup(func() {
		version = original
		resetFlags()
		rootCmd.SetArgs(nil)
	})
}

func TestVersionCmd_Full(t *testing.T) {
	withVersion(t, "1.4.0")

	out, err := run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "alexandria version 1.4.0")
	assert.Contains(t, out, "go: "+runtime.Version())
}

func TestVersionCmd_Short(t *testing.T) {
	withVersion(t, "1.4.0")

	out, err := run("version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", strings.TrimSpace(out))
}

func TestVersionCmd_DevByDefault(t *testing.T) {
	withVersion(t, "dev")

	out, err := run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "alexandria version dev")
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	withVersion(t, "dev")

	_, err := run("version", "extra")
	assert.Error(t, err)
}

func TestVersionCmd_SkipsServices(t *testing.T) {
	assert.Equal(t, "true", versionCmd.Annotations[skipServices])
}

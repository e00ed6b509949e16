package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestGridCommand(t *testing.T) {
	out, _, err := run(t, "grid", "--finite-elements", "4")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2+5)
	assert.Contains(t, lines[0], "BACKWARD")
	assert.Contains(t, lines[1], "nfe 4")
	assert.Equal(t, "0\t0", lines[2])
	assert.Equal(t, "4\t1", lines[6])

	out, _, err = run(t, "grid", "--method", "dae.collocation", "--finite-elements", "2", "--collocation-points", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "LAGRANGE-RADAU")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2+7)
}

func TestBuildCommand(t *testing.T) {
	out, stderr, err := run(t, "build", "--finite-elements", "4", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "MembraneChannel1D feed_side")
	assert.Contains(t, out, "Degrees of freedom: 17")
	assert.Contains(t, stderr, "membrane channel built")
	assert.Contains(t, stderr, "apply_transformation")

	out, stderr, err = run(t, "build", "--finite-elements", "4")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "apply_transformation")
}

func TestBuildCommandRejectsBadOptions(t *testing.T) {
	_, _, err := run(t, "build", "--finite-elements", "0")
	assert.Error(t, err)

	_, _, err = run(t, "build", "--method", "dae.collocation", "--scheme", "BACKWARD")
	assert.Error(t, err)

	_, _, err = run(t, "build", "extra")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channel.toml")
	require.NoError(t, os.WriteFile(path, []byte("finite_elements = 7\n"), 0o644))

	out, _, err := run(t, "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "finite_elements = 7")
	assert.Contains(t, out, `name = "feed_side"`)

	out, _, err = run(t, "grid", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "nfe 7")

	_, _, err = run(t, "config", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seppy/config"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", formatDuration(250*time.Millisecond))
	assert.Equal(t, "2.5s", formatDuration(2500*time.Millisecond))
	assert.Equal(t, "3m5s", formatDuration(3*time.Minute+5*time.Second))
	assert.Equal(t, "1h2m", formatDuration(time.Hour+2*time.Minute))
}

func TestInspect_PrintsUnits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(path, []byte(`import json

LIMIT = 3


def dump(x):
    return json.dumps(x)[:LIMIT]


class Dumper:
    def run(self, x):
        return dump(x)
`), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"inspect", path, "--dir", dir})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	var got inspection
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))

	assert.Equal(t, []string{"import json"}, got.Imports)
	assert.Equal(t, []string{"LIMIT"}, got.Globals)
	require.Len(t, got.Units, 2)

	assert.Equal(t, "dump", got.Units[0].Module)
	assert.Equal(t, []string{"import json"}, got.Units[0].Imports)
	assert.Equal(t, []string{"LIMIT"}, got.Units[0].Globals)
	assert.Empty(t, got.Units[0].Dependencies)

	assert.Equal(t, "dumper", got.Units[1].Module)
	assert.Equal(t, "Dumper", got.Units[1].Record.Name)
	assert.Equal(t, []string{"dump"}, got.Units[1].Dependencies)
}

func TestInit_WritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"init", "--dir", dir})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		initForce = false
	})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "seppy.yaml")

	loaded, err := config.LoadFromDir(dir)
	require.NoError(t, err)
	defaults := config.DefaultConfig()
	assert.Equal(t, defaults.Limits, loaded.Limits)
	assert.Equal(t, defaults.Input, loaded.Input)
	assert.Equal(t, defaults.Split.ResidualModule, loaded.Split.ResidualModule)
	assert.NoError(t, loaded.Validate())

	rootCmd.SetArgs([]string{"init", "--dir", dir})
	assert.Error(t, rootCmd.Execute(), "existing config is kept without --force")

	rootCmd.SetArgs([]string{"init", "--dir", dir, "--force"})
	assert.NoError(t, rootCmd.Execute())
}

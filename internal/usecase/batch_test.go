package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seppy/internal/adapter/fs"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newBatch() *BatchUseCase {
	return NewBatchUseCase(
		fs.NewWalker(nil, nil),
		fs.NewWriter(),
		newSplitter(nil, defaultOptions()),
		quietLogger(),
	)
}

func TestBatch_Directory(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(root, "calc.py"), calculatorSource)
	writeFile(t, filepath.Join(root, "pkg", "broken.py"), "def broken(:\n")
	writeFile(t, filepath.Join(root, "notes.txt"), "not python")

	res, err := newBatch().Run(context.Background(), root, out)
	require.NoError(t, err)

	require.Len(t, res.Files, 2)
	assert.Equal(t, "calc.py", res.Files[0].Rel)
	assert.Equal(t, "pkg/broken.py", res.Files[1].Rel)
	assert.Equal(t, 1, res.FailedFiles())

	for _, name := range []string{"calculator", "multiply", "divide"} {
		assert.FileExists(t, filepath.Join(out, "calc", name+".py"))
		assert.FileExists(t, filepath.Join(out, "calc", "docs", name+".md"))
	}
	assert.FileExists(t, filepath.Join(out, "calc", "dependencies.json"))
	assert.NoDirExists(t, filepath.Join(out, "pkg", "broken"))

	assert.Equal(t, 3, res.Stats.ProcessedModules)
	require.Len(t, res.Stats.Errors, 1)
	assert.Contains(t, res.Stats.Errors[0], "broken.py")

	report := Report(res)
	assert.Contains(t, report, "# Performance Report")
	assert.Contains(t, report, "Modules processed: 3")
	assert.Contains(t, report, "| `calc.py` | 3 | 0 | 0 | ok |")
	assert.Contains(t, report, "| `pkg/broken.py` | 0 | 0 | 0 | error |")
	assert.Contains(t, report, "## Errors")
}

func TestBatch_SingleFile(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	path := filepath.Join(root, "calc.py")
	writeFile(t, path, calculatorSource)

	res, err := newBatch().Run(context.Background(), path, out)
	require.NoError(t, err)

	require.Len(t, res.Files, 1)
	assert.Equal(t, out, res.Files[0].OutputDir)
	assert.FileExists(t, filepath.Join(out, "calculator.py"))
	assert.Equal(t, 0, res.FailedFiles())

	code, err := os.ReadFile(filepath.Join(out, "multiply.py"))
	require.NoError(t, err)
	assert.Equal(t, "def multiply(a, b):\n    return a * b\n", string(code))
}

func TestBatch_MissingInput(t *testing.T) {
	_, err := newBatch().Run(context.Background(), filepath.Join(t.TempDir(), "missing.py"), t.TempDir())
	assert.Error(t, err)
}

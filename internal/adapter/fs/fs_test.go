package fs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seppy/internal/domain"
)

func touch(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0644))
}

func TestWalker_IncludesAndExcludes(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "main.py")
	touch(t, root, "pkg/util.py")
	touch(t, root, "pkg/__pycache__/util.cpython-311.pyc")
	touch(t, root, ".venv/lib/site.py")
	touch(t, root, "README.md")

	w := NewWalker([]string{"**/*.py"}, []string{"**/__pycache__/**", "**/.*/**", "**/*.pyc"})
	files, err := w.Walk(root)
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rels = append(rels, f.Rel)
		assert.True(t, filepath.IsAbs(f.Path))
	}
	assert.Equal(t, []string{"main.py", "pkg/util.py"}, rels)
}

func TestWalker_SingleFile(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "script.txt")

	files, err := NewWalker(nil, nil).Walk(filepath.Join(root, "script.txt"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "script.txt", files[0].Rel)
	assert.Equal(t, int64(6), files[0].Size)
}

func TestWalker_Missing(t *testing.T) {
	_, err := NewWalker(nil, nil).Walk(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

type fakeGraph map[string][]string

func (g fakeGraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string(g))
}

func TestWriteTree(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	modules := []domain.ModuleInfo{
		{Name: "calculator", Code: "class Calculator:\n    pass\n", Docs: "# Module: `calculator`\n"},
		{Name: "globals", Code: "X = 1\n"},
	}

	err := NewWriter().WriteTree(dir, modules, fakeGraph{"calculator": {}, "globals": {}})
	require.NoError(t, err)

	code, err := os.ReadFile(filepath.Join(dir, "calculator.py"))
	require.NoError(t, err)
	assert.Equal(t, modules[0].Code, string(code))

	docs, err := os.ReadFile(filepath.Join(dir, "docs", "calculator.md"))
	require.NoError(t, err)
	assert.Equal(t, modules[0].Docs, string(docs))

	_, err = os.Stat(filepath.Join(dir, "docs", "globals.md"))
	assert.True(t, os.IsNotExist(err))

	graph, err := os.ReadFile(filepath.Join(dir, "dependencies.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"calculator": [], "globals": []}`, string(graph))
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteReport(dir, "report.md", "# Report\n"))

	data, err := os.ReadFile(filepath.Join(dir, "report.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Report\n", string(data))
}

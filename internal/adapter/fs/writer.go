package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"seppy/internal/domain"
)

const (
	docsDir   = "docs"
	graphFile = "dependencies.json"
)

// Writer writes split results to disk.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// WriteTree writes <name>.py for every module, docs/<name>.md for modules
// with documentation and dependencies.json holding the graph.
func (w *Writer) WriteTree(dir string, modules []domain.ModuleInfo, graph json.Marshaler) error {
	if err := os.MkdirAll(filepath.Join(dir, docsDir), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, m := range modules {
		path := filepath.Join(dir, m.Name+".py")
		if err := os.WriteFile(path, []byte(m.Code), 0644); err != nil {
			return fmt.Errorf("failed to write module %s: %w", m.Name, err)
		}
		if m.Docs == "" {
			continue
		}
		path = filepath.Join(dir, docsDir, m.Name+".md")
		if err := os.WriteFile(path, []byte(m.Docs), 0644); err != nil {
			return fmt.Errorf("failed to write docs for %s: %w", m.Name, err)
		}
	}

	data, err := json.MarshalIndent(graph, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dependency graph: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(dir, graphFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write dependency graph: %w", err)
	}
	return nil
}

// WriteReport writes the run report next to the emitted modules.
func WriteReport(dir, name, report string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, name), []byte(report), 0644)
}

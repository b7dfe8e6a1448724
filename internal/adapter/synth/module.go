package synth

import (
	"errors"
	"strings"

	"seppy/internal/domain"
)

// Request is everything needed to emit one module.
type Request struct {
	ModuleDocstring string
	Imports         []domain.Import
	LocalPackages   []string
	Globals         []string // verbatim defining statements in source order
	Body            string   // verbatim unit text
}

// Synthesize emits a standalone module: docstring, organized imports, global
// definitions and the unit body, each section separated by blank lines. The
// body is copied verbatim apart from trailing whitespace.
func Synthesize(req Request) (string, error) {
	body := strings.TrimRight(req.Body, " \t\r\n")
	if strings.TrimSpace(body) == "" {
		return "", errors.New("empty module body")
	}

	var header []string
	if req.ModuleDocstring != "" {
		header = append(header, req.ModuleDocstring)
	}
	if imports := OrganizeImports(req.Imports, req.LocalPackages); imports != "" {
		header = append(header, imports)
	}
	if len(req.Globals) > 0 {
		header = append(header, strings.Join(req.Globals, "\n"))
	}

	var b strings.Builder
	if len(header) > 0 {
		b.WriteString(strings.Join(header, "\n\n"))
		b.WriteString("\n\n\n")
	}
	b.WriteString(body)
	b.WriteByte('\n')
	return b.String(), nil
}

// Residual emits the module holding top-level statements that belong to no
// unit. Statements keep their source order and text; imports are organized.
func Residual(docstring string, imports []domain.Import, localPackages []string, statements []string) (string, error) {
	var parts []string
	if docstring != "" {
		parts = append(parts, docstring)
	}
	if s := OrganizeImports(imports, localPackages); s != "" {
		parts = append(parts, s)
	}
	if len(statements) > 0 {
		parts = append(parts, strings.Join(statements, "\n"))
	}
	if len(parts) == 0 {
		return "", errors.New("empty residual module")
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}

package analyzer

import (
	"strings"

	"seppy/internal/adapter/syntax"
	"seppy/internal/domain"
)

// ExtractImports splits an import statement node into single-binding imports.
// Nodes of any other kind yield nil.
func ExtractImports(f *syntax.File, n *syntax.Node) []domain.Import {
	switch n.Kind {
	case syntax.KindImport:
		return importStatement(f, n)
	case syntax.KindImportFrom, syntax.KindFutureImport:
		return importFromStatement(f, n)
	}
	return nil
}

// import a, b.c as d
func importStatement(f *syntax.File, n *syntax.Node) []domain.Import {
	var out []domain.Import
	for _, c := range n.ChildrenOf("name") {
		imp := domain.Import{Line: n.Line}
		switch c.Type {
		case "dotted_name":
			imp.Module = f.Text(c)
		case "aliased_import":
			imp.Module = f.Text(c.Child("name"))
			imp.Alias = f.Text(c.Child("alias"))
		default:
			continue
		}
		out = append(out, imp)
	}
	return out
}

// from m import x, y as z / from . import x / from m import *
func importFromStatement(f *syntax.File, n *syntax.Node) []domain.Import {
	module, level := "__future__", 0
	if n.Kind == syntax.KindImportFrom {
		module, level = splitRelative(f.Text(n.Child("module_name")))
	}

	if n.FirstOfType("wildcard_import") != nil {
		return []domain.Import{{Module: module, Level: level, Name: "*", Line: n.Line}}
	}

	var out []domain.Import
	for _, c := range n.ChildrenOf("name") {
		imp := domain.Import{Module: module, Level: level, Line: n.Line}
		switch c.Type {
		case "dotted_name":
			imp.Name = f.Text(c)
		case "aliased_import":
			imp.Name = f.Text(c.Child("name"))
			imp.Alias = f.Text(c.Child("alias"))
		default:
			continue
		}
		out = append(out, imp)
	}
	return out
}

func splitRelative(s string) (string, int) {
	trimmed := strings.TrimLeft(s, ".")
	return strings.TrimSpace(trimmed), len(s) - len(trimmed)
}

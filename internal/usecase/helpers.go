package usecase

import (
	"seppy/internal/adapter/analyzer"
	"seppy/internal/domain"
)

func statementTexts(ext *analyzer.Extraction, stmts []analyzer.Statement) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = ext.File.Text(s.Node)
	}
	return out
}

func importStatements(imports []domain.Import) []string {
	out := make([]string, 0, len(imports))
	for _, imp := range imports {
		out = append(out, imp.Statement())
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

package analyzer

import (
	"seppy/internal/adapter/syntax"
	"seppy/internal/domain"
)

// References returns the set of names referenced anywhere under body,
// including nested bodies, decorators and annotations. Attribute access
// x.y counts as a reference to x. Local bindings do not hide a name.
func References(body *syntax.Node) map[string]bool {
	refs := make(map[string]bool)
	syntax.Inspect(body, func(n *syntax.Node) bool {
		if n.Kind == syntax.KindName {
			refs[n.Name] = true
		}
		return true
	})
	return refs
}

// FindUsedImports returns the imports from all whose bound name is
// referenced under body. Star and __future__ imports are always kept since
// their bindings cannot be checked syntactically. Order follows all.
func FindUsedImports(body *syntax.Node, all []domain.Import) []domain.Import {
	return MatchImports(References(body), all)
}

// MatchImports is FindUsedImports over an already collected reference set.
func MatchImports(refs map[string]bool, all []domain.Import) []domain.Import {
	var used []domain.Import
	seen := make(map[string]bool)
	for _, imp := range all {
		if !imp.IsStar() && !imp.IsFuture() && !refs[imp.Bound()] {
			continue
		}
		key := imp.Statement()
		if seen[key] {
			continue
		}
		seen[key] = true
		used = append(used, imp)
	}
	return used
}

// FindUsedGlobals returns the globals from all referenced under body, in
// the order of all.
func FindUsedGlobals(body *syntax.Node, all []string) []string {
	return FindReferences(body, all)
}

// FindReferences returns the names from candidates referenced under body,
// deduplicated, in the order of candidates.
func FindReferences(body *syntax.Node, candidates []string) []string {
	return filterNames(References(body), candidates)
}

func filterNames(refs map[string]bool, candidates []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, name := range candidates {
		if refs[name] && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// Usage is what one unit needs from module scope.
type Usage struct {
	Imports     []domain.Import
	Globals     []string
	Definitions []Statement // residual statements defining Globals, source order
	References  map[string]bool
}

// Resolve computes the usage closure of body: the globals it references,
// the globals their defining statements reference in turn, and every
// import referenced by body or by those statements.
func (e *Extraction) Resolve(body *syntax.Node) Usage {
	refs := References(body)
	globals := filterNames(refs, e.Globals)

	for {
		grown := false
		for _, stmt := range e.Definitions(globals) {
			for name := range References(stmt.Node) {
				if !refs[name] {
					refs[name] = true
					grown = true
				}
			}
		}
		if !grown {
			break
		}
		globals = filterNames(refs, e.Globals)
	}

	return Usage{
		Imports:     MatchImports(refs, e.Imports),
		Globals:     globals,
		Definitions: e.Definitions(globals),
		References:  refs,
	}
}

package analyzer

import (
	"sort"
)

// DependencyBuilder turns name references into edges between emitted modules.
type DependencyBuilder struct {
	modules map[string]string // unit name -> module name
}

// NewDependencyBuilder creates a new dependency builder.
func NewDependencyBuilder() *DependencyBuilder {
	return &DependencyBuilder{
		modules: make(map[string]string),
	}
}

// Register records the module a top-level unit is emitted into.
func (b *DependencyBuilder) Register(unit, module string) {
	b.modules[unit] = module
}

// Build returns the sorted, deduplicated modules whose units appear in refs.
// A unit referencing itself yields a self edge.
func (b *DependencyBuilder) Build(refs map[string]bool) []string {
	set := make(map[string]bool)
	for name := range refs {
		if module, ok := b.modules[name]; ok {
			set[module] = true
		}
	}
	deps := make([]string, 0, len(set))
	for m := range set {
		deps = append(deps, m)
	}
	sort.Strings(deps)
	return deps
}

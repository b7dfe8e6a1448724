package analyzer

import (
	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreFilter matches residual statement names against glob patterns.
type IgnoreFilter struct {
	patterns []string
}

func NewIgnoreFilter(patterns []string) *IgnoreFilter {
	return &IgnoreFilter{patterns: patterns}
}

// Match reports whether name matches any pattern. Malformed patterns never match.
func (f *IgnoreFilter) Match(name string) bool {
	if f == nil || name == "" {
		return false
	}
	for _, pattern := range f.patterns {
		matched, err := doublestar.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// MatchAny reports whether any of the names is ignored.
func (f *IgnoreFilter) MatchAny(names []string) bool {
	for _, n := range names {
		if f.Match(n) {
			return true
		}
	}
	return false
}

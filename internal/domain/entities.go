package domain

import "time"

// UnitKind tags what sort of definition a UnitRecord was extracted from.
type UnitKind string

const (
	KindFunction       UnitKind = "plain_function"
	KindAsyncFunction  UnitKind = "async_function"
	KindClass          UnitKind = "class"
	KindNestedFunction UnitKind = "nested_function"
	KindNestedClass    UnitKind = "nested_class"
)

// IsClass reports whether the kind describes a class definition.
func (k UnitKind) IsClass() bool {
	return k == KindClass || k == KindNestedClass
}

// Span is a half-open byte range [Start, End) into the original source.
type Span struct {
	Start     int `json:"start"`
	End       int `json:"end"`
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Contains reports whether o lies entirely inside s.
func (s Span) Contains(o Span) bool {
	return o.Start >= s.Start && o.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Text returns the slice of src covered by the span.
func (s Span) Text(src []byte) string {
	return string(src[s.Start:s.End])
}

type Decorator struct {
	Name string `json:"name"`
	Args string `json:"args,omitempty"` // "(...)" including parentheses, empty if bare
	Text string `json:"text"`           // full expression after '@'
}

type Param struct {
	Name       string `json:"name"`
	Annotation string `json:"annotation,omitempty"`
	Default    string `json:"default,omitempty"`
	Prefix     string `json:"prefix,omitempty"` // "*", "**", or a bare "*" / "/" separator
}

// UnitRecord is an immutable snapshot of one class or function definition.
type UnitRecord struct {
	Name            string            `json:"name"`
	Kind            UnitKind          `json:"kind"`
	Span            Span              `json:"span"`
	Decorators      []Decorator       `json:"decorators,omitempty"`
	Docstring       string            `json:"docstring,omitempty"`
	Params          []Param           `json:"params,omitempty"`
	Returns         string            `json:"returns,omitempty"`
	TypeAnnotations map[string]string `json:"type_annotations,omitempty"`
	Bases           []string          `json:"bases,omitempty"`
	Members         []UnitRecord      `json:"members,omitempty"`
	Parent          string            `json:"parent,omitempty"`
	IsAsync         bool              `json:"is_async"`
}

// QualifiedName prefixes the name with its enclosing class, if any.
func (u UnitRecord) QualifiedName() string {
	if u.Parent == "" {
		return u.Name
	}
	return u.Parent + "." + u.Name
}

// Import is a single-binding import statement.
type Import struct {
	Module string `json:"module"`          // dotted module path without leading dots
	Level  int    `json:"level,omitempty"` // number of leading dots for relative imports
	Name   string `json:"name,omitempty"`  // imported member for "from" imports, "*" for star
	Alias  string `json:"alias,omitempty"`
	Line   int    `json:"line"`
}

// IsFrom reports whether the import uses the "from m import x" form.
func (i Import) IsFrom() bool {
	return i.Name != ""
}

// IsStar reports whether the import is "from m import *".
func (i Import) IsStar() bool {
	return i.Name == "*"
}

// IsFuture reports whether the import is a "from __future__" directive.
func (i Import) IsFuture() bool {
	return i.Level == 0 && i.Module == "__future__"
}

// Bound returns the name the statement introduces into module scope.
func (i Import) Bound() string {
	if i.Alias != "" {
		return i.Alias
	}
	if i.IsFrom() {
		return i.Name
	}
	for j := 0; j < len(i.Module); j++ {
		if i.Module[j] == '.' {
			return i.Module[:j]
		}
	}
	return i.Module
}

// From returns the module part of a from-import including leading dots.
func (i Import) From() string {
	dots := make([]byte, i.Level)
	for j := range dots {
		dots[j] = '.'
	}
	return string(dots) + i.Module
}

// Statement renders the import as Python source.
func (i Import) Statement() string {
	var s string
	if i.IsFrom() {
		s = "from " + i.From() + " import " + i.Name
	} else {
		s = "import " + i.Module
	}
	if i.Alias != "" {
		s += " as " + i.Alias
	}
	return s
}

// ModuleInfo is one emitted module.
type ModuleInfo struct {
	Name         string   `json:"name"`
	Unit         string   `json:"unit,omitempty"` // empty for the residual module
	Kind         UnitKind `json:"kind,omitempty"`
	Imports      []string `json:"imports"`
	GlobalVars   []string `json:"global_vars"`
	Dependencies []string `json:"dependencies"`
	ContentHash  string   `json:"content_hash,omitempty"`
	Code         string   `json:"-"`
	Docs         string   `json:"-"`
}

// CacheEntry holds documentation generated for one unit text.
type CacheEntry struct {
	Hash      string    `json:"hash"`
	Docs      string    `json:"docs"`
	CreatedAt time.Time `json:"created_at"`
}

// ProcessingStats is a snapshot of counters for one run.
type ProcessingStats struct {
	RunID            string        `json:"run_id"`
	TotalModules     int           `json:"total_modules"`
	ProcessedModules int           `json:"processed_modules"`
	FailedModules    int           `json:"failed_modules"`
	CachedModules    int           `json:"cached_modules"`
	Elapsed          time.Duration `json:"elapsed"`
	PeakHeapBytes    uint64        `json:"peak_heap_bytes"`
	Errors           []string      `json:"errors,omitempty"`
}

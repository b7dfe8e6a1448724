package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"seppy/internal/adapter/syntax"
	"seppy/internal/domain"
)

// ExtractOptions configures structure extraction.
type ExtractOptions struct {
	IgnorePatterns []string
}

// Unit pairs an extracted record with the subtree it was read from.
type Unit struct {
	Record domain.UnitRecord
	Node   *syntax.Node // decorated_definition when decorated, else the def itself
}

// Statement is a residual top-level statement.
type Statement struct {
	Node    *syntax.Node
	Span    domain.Span
	Binds   []string        // module-level names the statement introduces
	Imports []domain.Import // non-ignored bindings of a top-level import statement
	Ignored bool
}

// IsImport reports whether the statement is a plain top-level import.
func (s Statement) IsImport() bool {
	switch s.Node.Kind {
	case syntax.KindImport, syntax.KindImportFrom, syntax.KindFutureImport:
		return true
	}
	return false
}

// Extraction is everything the later stages need from one parsed file.
type Extraction struct {
	File            *syntax.File
	ModuleDocstring string // verbatim literal, quotes included
	Units           []Unit
	Residual        []Statement
	Imports         []domain.Import  // candidate imports in source order
	Globals         []string         // candidate globals in first-binding order
	definitions     map[string][]int // global -> indexes into Residual
}

// UnitNames returns the top-level unit names in source order.
func (e *Extraction) UnitNames() []string {
	names := make([]string, len(e.Units))
	for i, u := range e.Units {
		names[i] = u.Record.Name
	}
	return names
}

// Definitions returns the residual statements binding any of the given
// globals, deduplicated and in source order.
func (e *Extraction) Definitions(globals []string) []Statement {
	seen := make(map[int]bool)
	var idx []int
	for _, g := range globals {
		for _, i := range e.definitions[g] {
			if !seen[i] {
				seen[i] = true
				idx = append(idx, i)
			}
		}
	}
	sort.Ints(idx)
	out := make([]Statement, len(idx))
	for j, i := range idx {
		out[j] = e.Residual[i]
	}
	return out
}

// Extract walks the module's top-level statements and produces one UnitRecord
// per class or function definition plus the residual statement bucket.
// A unit whose extent cannot be delimited fails the whole file.
func Extract(f *syntax.File, opts ExtractOptions) (*Extraction, error) {
	if f == nil || f.Root == nil {
		return nil, &domain.ParseError{Msg: "no syntax tree"}
	}

	filter := NewIgnoreFilter(opts.IgnorePatterns)
	ext := &Extraction{
		File:        f,
		definitions: make(map[string][]int),
	}

	first := true
	for _, n := range f.Root.Children {
		if n.Kind == syntax.KindComment {
			continue
		}
		if first && isDocstring(n) {
			ext.ModuleDocstring = f.Text(n)
			first = false
			continue
		}
		first = false

		if def := definitionOf(n); def != nil {
			ext.Units = append(ext.Units, Unit{
				Record: buildUnit(f, n, def, "", false),
				Node:   n,
			})
			continue
		}

		stmt := Statement{Node: n, Span: spanOf(n)}
		if stmt.IsImport() {
			for _, imp := range ExtractImports(f, n) {
				stmt.Binds = append(stmt.Binds, imp.Bound())
				if !imp.IsStar() && filter.Match(imp.Bound()) {
					continue
				}
				stmt.Imports = append(stmt.Imports, imp)
			}
			stmt.Ignored = len(stmt.Imports) == 0
			ext.Imports = append(ext.Imports, stmt.Imports...)
		} else {
			stmt.Binds = boundNames(f, n)
			if len(stmt.Binds) > 0 {
				stmt.Ignored = filter.MatchAny(stmt.Binds)
			} else {
				stmt.Ignored = filter.Match(firstLine(f.Text(n)))
			}
		}
		ext.Residual = append(ext.Residual, stmt)

		if stmt.Ignored || stmt.IsImport() {
			continue
		}
		idx := len(ext.Residual) - 1
		for _, name := range stmt.Binds {
			if _, ok := ext.definitions[name]; !ok {
				ext.Globals = append(ext.Globals, name)
			}
			ext.definitions[name] = append(ext.definitions[name], idx)
		}
	}

	if err := validateSpans(f, ext.Units); err != nil {
		return nil, err
	}
	return ext, nil
}

func definitionOf(n *syntax.Node) *syntax.Node {
	if n.Kind.IsDef() {
		return n
	}
	if n.Kind == syntax.KindDecorated {
		if def := n.Child("definition"); def != nil && def.Kind.IsDef() {
			return def
		}
	}
	return nil
}

func buildUnit(f *syntax.File, outer, def *syntax.Node, parent string, nested bool) domain.UnitRecord {
	rec := domain.UnitRecord{
		Name:   f.Text(def.Child("name")),
		Parent: parent,
		Span:   spanOf(outer),
	}

	switch {
	case def.Kind == syntax.KindClassDef && nested:
		rec.Kind = domain.KindNestedClass
	case def.Kind == syntax.KindClassDef:
		rec.Kind = domain.KindClass
	case nested:
		rec.Kind = domain.KindNestedFunction
	case def.Kind == syntax.KindAsyncFunctionDef:
		rec.Kind = domain.KindAsyncFunction
	default:
		rec.Kind = domain.KindFunction
	}

	if outer.Kind == syntax.KindDecorated {
		for _, c := range outer.Children {
			if c.Kind == syntax.KindDecorator {
				rec.Decorators = append(rec.Decorators, decoratorOf(f, c))
			}
		}
	}

	body := def.Child("body")
	rec.Docstring = docstringOf(f, body)
	annotations := make(map[string]string)

	if def.Kind == syntax.KindClassDef {
		if supers := def.Child("superclasses"); supers != nil {
			for _, c := range supers.Children {
				if c.Kind != syntax.KindComment {
					rec.Bases = append(rec.Bases, f.Text(c))
				}
			}
		}
		classAnnotations(f, body, annotations)
	} else {
		rec.Params = paramsOf(f, def.Child("parameters"))
		for _, p := range rec.Params {
			if p.Annotation != "" {
				annotations[p.Name] = p.Annotation
			}
		}
		if ret := def.Child("return_type"); ret != nil {
			rec.Returns = f.Text(ret)
			annotations["return"] = rec.Returns
		}
	}
	if len(annotations) > 0 {
		rec.TypeAnnotations = annotations
	}

	rec.IsAsync = containsAsync(def)

	if body != nil {
		for _, m := range nestedDefs(body) {
			rec.Members = append(rec.Members, buildUnit(f, m, definitionOf(m), rec.Name, true))
		}
	}
	return rec
}

// nestedDefs collects definitions under n without descending into them.
func nestedDefs(n *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, c := range n.Children {
		if definitionOf(c) != nil {
			out = append(out, c)
			continue
		}
		if c.Type == "lambda" {
			continue
		}
		out = append(out, nestedDefs(c)...)
	}
	return out
}

func decoratorOf(f *syntax.File, n *syntax.Node) domain.Decorator {
	var expr *syntax.Node
	for _, c := range n.Children {
		if c.Kind != syntax.KindComment {
			expr = c
			break
		}
	}
	if expr == nil {
		return domain.Decorator{}
	}
	d := domain.Decorator{Name: f.Text(expr), Text: f.Text(expr)}
	if expr.Type == "call" {
		d.Name = f.Text(expr.Child("function"))
		d.Args = f.Text(expr.Child("arguments"))
	}
	return d
}

func paramsOf(f *syntax.File, n *syntax.Node) []domain.Param {
	if n == nil {
		return nil
	}
	var params []domain.Param
	for _, c := range n.Children {
		var p domain.Param
		switch c.Type {
		case "identifier", "list_splat_pattern", "dictionary_splat_pattern":
			p.Name, p.Prefix = paramName(f, c)
		case "typed_parameter":
			for _, gc := range c.Children {
				if gc.Field == "" {
					p.Name, p.Prefix = paramName(f, gc)
					break
				}
			}
			p.Annotation = f.Text(c.Child("type"))
		case "default_parameter", "typed_default_parameter":
			p.Name, p.Prefix = paramName(f, c.Child("name"))
			p.Annotation = f.Text(c.Child("type"))
			p.Default = f.Text(c.Child("value"))
		case "keyword_separator":
			p.Prefix = "*"
		case "positional_separator":
			p.Prefix = "/"
		default:
			continue
		}
		params = append(params, p)
	}
	return params
}

func paramName(f *syntax.File, n *syntax.Node) (name, prefix string) {
	if n == nil {
		return "", ""
	}
	switch n.Type {
	case "list_splat_pattern":
		prefix = "*"
	case "dictionary_splat_pattern":
		prefix = "**"
	default:
		return f.Text(n), ""
	}
	if id := n.FirstOfType("identifier"); id != nil {
		name = f.Text(id)
	}
	return name, prefix
}

func classAnnotations(f *syntax.File, body *syntax.Node, into map[string]string) {
	if body == nil {
		return
	}
	for _, c := range body.Children {
		if c.Type != "expression_statement" || len(c.Children) != 1 {
			continue
		}
		assign := c.Children[0]
		if assign.Kind != syntax.KindAssign {
			continue
		}
		left, typ := assign.Child("left"), assign.Child("type")
		if left != nil && typ != nil && left.Type == "identifier" {
			into[f.Text(left)] = f.Text(typ)
		}
	}
}

func isDocstring(n *syntax.Node) bool {
	return n.Type == "expression_statement" && len(n.Children) == 1 && n.Children[0].Kind == syntax.KindString
}

func docstringOf(f *syntax.File, body *syntax.Node) string {
	if body == nil {
		return ""
	}
	for _, c := range body.Children {
		if c.Kind == syntax.KindComment {
			continue
		}
		if isDocstring(c) {
			return Unquote(f.Text(c.Children[0]))
		}
		return ""
	}
	return ""
}

// Unquote strips string prefixes and the surrounding quotes, leaving the
// literal's content untouched.
func Unquote(lit string) string {
	s := strings.TrimLeft(lit, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(s) >= 2*len(q) && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}

// containsAsync reports async syntax in the def itself or in its own
// statements. Nested definitions carry their own flag.
func containsAsync(def *syntax.Node) bool {
	found := false
	syntax.Inspect(def, func(n *syntax.Node) bool {
		if found {
			return false
		}
		if n != def && (n.Kind.IsDef() || n.Type == "lambda") {
			return false
		}
		if n.Async || n.Type == "await" {
			found = true
		}
		return !found
	})
	return found
}

// boundNames lists the module-level names a residual statement introduces.
func boundNames(f *syntax.File, stmt *syntax.Node) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(ns ...string) {
		for _, n := range ns {
			if n != "" && !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}

	syntax.Inspect(stmt, func(n *syntax.Node) bool {
		switch {
		case n.Kind.IsDef():
			add(f.Text(n.Child("name")))
			return false
		case n.Type == "lambda":
			return false
		case n.Kind == syntax.KindImport, n.Kind == syntax.KindImportFrom, n.Kind == syntax.KindFutureImport:
			for _, imp := range ExtractImports(f, n) {
				if !imp.IsStar() {
					add(imp.Bound())
				}
			}
			return false
		case n.Kind == syntax.KindAssign:
			add(targetNames(f, n.Child("left"))...)
		case n.Type == "for_statement":
			add(targetNames(f, n.Child("left"))...)
		case n.Type == "as_pattern":
			add(targetNames(f, n.Child("alias"))...)
		case n.Type == "named_expression":
			add(f.Text(n.Child("name")))
		}
		return true
	})
	return names
}

func targetNames(f *syntax.File, n *syntax.Node) []string {
	if n == nil {
		return nil
	}
	switch n.Type {
	case "identifier":
		return []string{f.Text(n)}
	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list",
		"parenthesized_expression", "list_splat_pattern", "list_splat", "as_pattern_target", "expression_list":
		var out []string
		for _, c := range n.Children {
			out = append(out, targetNames(f, c)...)
		}
		return out
	}
	return nil
}

func spanOf(n *syntax.Node) domain.Span {
	return domain.Span{Start: n.Start, End: n.End, StartLine: n.Line, EndLine: n.EndLine}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func validateSpans(f *syntax.File, units []Unit) error {
	records := make([]domain.UnitRecord, len(units))
	for i, u := range units {
		records[i] = u.Record
	}
	return checkSpans(f, records, domain.Span{Start: 0, End: len(f.Src)})
}

func checkSpans(f *syntax.File, units []domain.UnitRecord, parent domain.Span) error {
	for i, u := range units {
		if u.Span.Start >= u.Span.End || !parent.Contains(u.Span) {
			return &domain.ParseError{
				File: f.Path,
				Line: u.Span.StartLine,
				Msg:  fmt.Sprintf("cannot delimit %s %q", u.Kind, u.QualifiedName()),
			}
		}
		if i > 0 && units[i-1].Span.Overlaps(u.Span) {
			return &domain.ParseError{
				File: f.Path,
				Line: u.Span.StartLine,
				Msg:  fmt.Sprintf("%q overlaps %q", u.QualifiedName(), units[i-1].QualifiedName()),
			}
		}
		if err := checkSpans(f, u.Members, u.Span); err != nil {
			return err
		}
	}
	return nil
}

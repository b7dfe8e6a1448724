// Package docs renders markdown documentation for emitted modules.
package docs

import (
	"fmt"
	"sort"
	"strings"

	"seppy/internal/domain"
)

const noDocs = "No documentation available."

// Page prefixes rendered unit sections with the module header.
func Page(moduleName, sections string) string {
	return fmt.Sprintf("# Module: `%s`\n\n%s", moduleName, sections)
}

// Unit renders everything derived from the unit itself: heading, kind,
// decorators, signature, docstring, annotations, members and the source
// block. The output depends only on its arguments.
func Unit(unit domain.UnitRecord, body string) string {
	var b strings.Builder
	writeUnit(&b, unit, 2, false)
	b.WriteString("## Source\n\n```python\n")
	b.WriteString(strings.TrimRight(body, "\n"))
	b.WriteString("\n```\n")
	return b.String()
}

// Residual renders the page for the module holding leftover statements.
func Residual(moduleName, docstring string, imports, globals []string, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Module: `%s`\n\n", moduleName)
	b.WriteString("## Description\n\n")
	if doc := Clean(docstring); doc != "" {
		b.WriteString(doc)
	} else {
		b.WriteString("Module-level statements that belong to no class or function.")
	}
	b.WriteString("\n\n")
	writeList(&b, "Imports", imports)
	writeList(&b, "Globals", globals)
	b.WriteString("## Source\n\n```python\n")
	b.WriteString(strings.TrimRight(body, "\n"))
	b.WriteString("\n```\n")
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- `%s`\n", it)
	}
	b.WriteString("\n")
}

func writeUnit(b *strings.Builder, u domain.UnitRecord, level int, inClass bool) {
	hashes := strings.Repeat("#", level)
	fmt.Fprintf(b, "%s %s: `%s`", hashes, label(u, inClass), u.Name)
	if len(u.Bases) > 0 {
		quoted := make([]string, len(u.Bases))
		for i, base := range u.Bases {
			quoted[i] = "`" + base + "`"
		}
		fmt.Fprintf(b, "(%s)", strings.Join(quoted, ", "))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(b, "**Kind:** `%s`\n\n", u.Kind)

	if len(u.Decorators) > 0 {
		b.WriteString("**Decorators:**\n")
		for _, d := range u.Decorators {
			fmt.Fprintf(b, "- `@%s`\n", d.Text)
		}
		b.WriteString("\n")
	}

	b.WriteString("**Signature:**\n```python\n")
	b.WriteString(Signature(u))
	b.WriteString("\n```\n\n")

	b.WriteString("**Documentation:**\n")
	if doc := Clean(u.Docstring); doc != "" {
		b.WriteString(doc)
	} else {
		b.WriteString(noDocs)
	}
	b.WriteString("\n\n")

	if len(u.TypeAnnotations) > 0 {
		b.WriteString("**Type Annotations:**\n")
		names := make([]string, 0, len(u.TypeAnnotations))
		for name := range u.TypeAnnotations {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(b, "- `%s`: `%s`\n", name, u.TypeAnnotations[name])
		}
		b.WriteString("\n")
	}

	next := level + 1
	if next > 6 {
		next = 6
	}
	for _, m := range u.Members {
		writeUnit(b, m, next, u.Kind.IsClass())
	}
}

func label(u domain.UnitRecord, inClass bool) string {
	switch {
	case u.Kind.IsClass():
		return "Class"
	case inClass && u.IsAsync:
		return "Async Method"
	case inClass:
		return "Method"
	case u.Kind == domain.KindNestedFunction && u.IsAsync:
		return "Async Nested Function"
	case u.Kind == domain.KindNestedFunction:
		return "Nested Function"
	case u.IsAsync:
		return "Async Function"
	}
	return "Function"
}

// Signature renders a Python-style signature line for the unit.
func Signature(u domain.UnitRecord) string {
	var sig strings.Builder
	if u.Kind.IsClass() {
		sig.WriteString("class ")
		sig.WriteString(u.Name)
		if len(u.Bases) > 0 {
			sig.WriteString("(")
			sig.WriteString(strings.Join(u.Bases, ", "))
			sig.WriteString(")")
		}
		return sig.String()
	}

	if u.Kind == domain.KindAsyncFunction || u.Kind == domain.KindNestedFunction && u.IsAsync {
		sig.WriteString("async ")
	}
	sig.WriteString("def ")
	sig.WriteString(u.Name)
	sig.WriteString("(")
	for i, p := range u.Params {
		if i > 0 {
			sig.WriteString(", ")
		}
		sig.WriteString(formatParam(p))
	}
	sig.WriteString(")")
	if u.Returns != "" {
		sig.WriteString(" -> ")
		sig.WriteString(u.Returns)
	}
	return sig.String()
}

func formatParam(p domain.Param) string {
	s := p.Prefix + p.Name
	if p.Annotation != "" {
		s += ": " + p.Annotation
	}
	if p.Default != "" {
		if p.Annotation != "" {
			s += " = " + p.Default
		} else {
			s += "=" + p.Default
		}
	}
	return s
}

// Clean removes a docstring's common indentation and surrounding blank lines.
func Clean(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "    "), "\n")
	if len(lines) == 0 {
		return ""
	}

	indent := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		if n := len(line) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}

	lines[0] = strings.TrimSpace(lines[0])
	for i := 1; i < len(lines); i++ {
		if indent > 0 && len(lines[i]) >= indent {
			lines[i] = lines[i][indent:]
		}
		lines[i] = strings.TrimRight(lines[i], " ")
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

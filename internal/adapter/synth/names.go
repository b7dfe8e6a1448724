// Package synth assembles standalone Python modules from extracted units.
package synth

import (
	"strconv"
	"strings"
)

var keywords = map[string]bool{
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "false": true, "finally": true,
	"for": true, "from": true, "global": true, "if": true, "import": true,
	"in": true, "is": true, "lambda": true, "none": true, "nonlocal": true,
	"not": true, "or": true, "pass": true, "raise": true, "return": true,
	"true": true, "try": true, "while": true, "with": true, "yield": true,
}

// Sanitize lowercases name and makes it a valid, non-keyword Python
// identifier.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	switch {
	case s == "":
		return "module"
	case s[0] >= '0' && s[0] <= '9':
		s = "_" + s
	}
	if keywords[s] {
		s += "_"
	}
	return s
}

// ModuleName derives a unique module name for a unit and marks it taken.
// Collisions get a numeric suffix starting at 2, so callers assigning names
// in source order get stable results.
func ModuleName(unit string, taken map[string]bool) string {
	base := Sanitize(unit)
	name := base
	for i := 2; taken[name]; i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	taken[name] = true
	return name
}

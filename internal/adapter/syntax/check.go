package syntax

import (
	"bytes"

	"seppy/internal/domain"
)

// check rejects constructs the grammar accepts but the Python compiler
// does not. The offending node nearest the start of the file is reported.
func check(f *File) error {
	var (
		first  *domain.ParseError
		offset int
	)
	report := func(n *Node, msg string) {
		if first != nil && n.Start >= offset {
			return
		}
		first = &domain.ParseError{File: f.Path, Line: n.Line, Column: n.Column, Msg: msg}
		offset = n.Start
	}

	Inspect(f.Root, func(n *Node) bool {
		switch n.Type {
		case "print_statement":
			report(n, "Missing parentheses in call to 'print'")
		case "exec_statement":
			report(n, "Missing parentheses in call to 'exec'")
		case "module":
			bom := 0
			if bytes.HasPrefix(f.Src, []byte("\xef\xbb\xbf")) {
				bom = 3
			}
			checkIndent(n, 0, bom, report)
		case "block":
			if stmts := statementsOf(n); len(stmts) > 0 {
				checkIndent(n, stmts[0].Column, 0, report)
			}
		case "parameters", "lambda_parameters":
			checkDefaults(n, report)
		case "generator_expression", "list_comprehension", "set_comprehension", "dictionary_comprehension":
			checkComprehension(n, report)
		}
		return true
	})
	if first == nil {
		return nil
	}
	return first
}

func statementsOf(n *Node) []*Node {
	var out []*Node
	for _, c := range n.Children {
		switch c.Type {
		case "comment", "line_continuation":
			continue
		}
		out = append(out, c)
	}
	return out
}

// checkIndent requires every statement that starts a line to start at col,
// shifted by bom on line one. Statements after ';' share a line and are not
// checked.
func checkIndent(n *Node, col, bom int, report func(*Node, string)) {
	prevEnd := 0
	for _, s := range statementsOf(n) {
		want := col
		if s.Line == 1 {
			want += bom
		}
		if s.Line > prevEnd {
			switch {
			case s.Column > want:
				report(s, "unexpected indent")
			case s.Column < want:
				report(s, "unindent does not match any outer indentation level")
			}
		}
		prevEnd = s.EndLine
	}
}

// checkDefaults rejects a positional parameter without a default after one
// with a default. Parameters after '*' or '*args' are keyword-only.
func checkDefaults(n *Node, report func(*Node, string)) {
	seenDefault := false
	for _, p := range n.Children {
		switch p.Type {
		case "default_parameter", "typed_default_parameter":
			seenDefault = true
		case "keyword_separator", "list_splat_pattern", "dictionary_splat_pattern":
			return
		case "typed_parameter":
			if p.FirstOfType("list_splat_pattern") != nil || p.FirstOfType("dictionary_splat_pattern") != nil {
				return
			}
			if seenDefault {
				report(p, "parameter without a default follows parameter with a default")
			}
		case "identifier", "tuple_pattern":
			if seenDefault {
				report(p, "parameter without a default follows parameter with a default")
			}
		}
	}
}

// checkComprehension rejects an unparenthesized tuple after "in", which
// the grammar folds into the clause: g(x for x in y, 1) parses as one
// generator over y, 1.
func checkComprehension(n *Node, report func(*Node, string)) {
	for _, c := range n.Children {
		if c.Type != "for_in_clause" || len(c.ChildrenOf("right")) < 2 {
			continue
		}
		body := n.Child("body")
		if body == nil {
			body = n
		}
		if n.Type == "generator_expression" && n.Field == "arguments" {
			report(body, "Generator expression must be parenthesized")
		} else {
			report(c.ChildrenOf("right")[1], "invalid syntax")
		}
		return
	}
}

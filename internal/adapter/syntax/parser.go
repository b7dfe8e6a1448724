package syntax

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"seppy/internal/domain"
)

// File is a parsed source file. Root is detached from tree-sitter.
type File struct {
	Path string
	Src  []byte
	Root *Node
}

// Text returns the verbatim source covered by n.
func (f *File) Text(n *Node) string {
	if n == nil {
		return ""
	}
	return string(f.Src[n.Start:n.End])
}

// Parser parses Python source with tree-sitter.
type Parser struct{}

// NewParser creates a new Python parser.
func NewParser() *Parser {
	return &Parser{}
}

// Language returns the language this parser handles.
func (p *Parser) Language() string {
	return "python"
}

// Parse parses src and copies the syntax tree out of tree-sitter. Any
// syntax error, including constructs the grammar tolerates but the Python
// compiler rejects, fails the whole file with a *domain.ParseError.
func (p *Parser) Parse(ctx context.Context, path string, src []byte) (*File, error) {
	if !utf8.Valid(src) {
		return nil, &domain.ParseError{File: path, Msg: "source is not valid UTF-8"}
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, &domain.ParseError{File: path, Msg: "empty syntax tree"}
	}
	if root.HasError() {
		perr := &domain.ParseError{File: path, Msg: "invalid syntax"}
		if bad := firstError(root); bad != nil {
			pt := bad.StartPoint()
			perr.Line = int(pt.Row) + 1
			perr.Column = int(pt.Column)
			if bad.IsMissing() {
				perr.Msg = fmt.Sprintf("missing %q", bad.Type())
			}
		}
		return nil, perr
	}

	f := &File{
		Path: path,
		Src:  src,
		Root: convert(root, "", false, false, src),
	}
	if err := check(f); err != nil {
		return nil, err
	}
	return f, nil
}

// firstError returns the first ERROR or MISSING node in source order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if bad := firstError(child); bad != nil {
			return bad
		}
	}
	return nil
}

// convert copies sn and its named descendants. annot is set below a type
// annotation, where string literals are forward references.
func convert(sn *sitter.Node, field string, binding, annot bool, src []byte) *Node {
	start, end := sn.StartPoint(), sn.EndPoint()
	n := &Node{
		Type:    sn.Type(),
		Field:   field,
		Start:   int(sn.StartByte()),
		End:     int(sn.EndByte()),
		Line:    int(start.Row) + 1,
		Column:  int(start.Column),
		EndLine: int(end.Row) + 1,
	}

	annot = annot || n.Type == "type"
	for i := 0; i < int(sn.ChildCount()); i++ {
		child := sn.Child(i)
		if child == nil {
			continue
		}
		if !child.IsNamed() {
			if child.Type() == "async" {
				n.Async = true
			}
			continue
		}
		childField := sn.FieldNameForChild(i)
		childBinding := bindsChild(n.Type, childField, child.Type(), binding)
		n.Children = append(n.Children, convert(child, childField, childBinding, annot, src))
	}
	if annot && n.Type == "string" {
		if ref := forwardRef(n, src); ref != nil {
			n.Children = append(n.Children, ref)
		}
	}

	n.Kind = classify(n, binding)
	if n.Kind == KindName {
		n.Name = string(src[n.Start:n.End])
	}
	return n
}

// forwardRef parses the text of an annotation string such as "List[Foo]"
// as an expression. The result is positioned inside the literal. Strings
// that are not a single plain expression yield nil.
func forwardRef(str *Node, src []byte) *Node {
	start, end, ok := stringContent(str, src)
	if !ok {
		return nil
	}

	text := src[start:end]
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, text)
	if err != nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() || root.NamedChildCount() != 1 {
		return nil
	}
	stmt := root.NamedChild(0)
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return nil
	}

	col := str.Column + (start - str.Start)
	expr := convert(stmt.NamedChild(0), "", false, false, text)
	Inspect(expr, func(n *Node) bool {
		if n.Line == 1 {
			n.Column += col
		}
		n.Start += start
		n.End += start
		n.Line += str.Line - 1
		n.EndLine += str.Line - 1
		return true
	})
	return expr
}

// stringContent returns the byte range between the quotes of a plain
// single-part string literal.
func stringContent(str *Node, src []byte) (int, int, bool) {
	for _, c := range str.Children {
		switch c.Type {
		case "string_start", "string_end", "string_content":
			if len(c.Children) > 0 {
				return 0, 0, false
			}
		default:
			return 0, 0, false
		}
	}

	lit := src[str.Start:str.End]
	i := 0
	for i < len(lit) && lit[i] != '"' && lit[i] != '\'' {
		switch lit[i] {
		case 'f', 'F', 'b', 'B':
			return 0, 0, false
		}
		i++
	}
	if i == len(lit) {
		return 0, 0, false
	}
	quote := 1
	if i+3 <= len(lit) && lit[i+1] == lit[i] && lit[i+2] == lit[i] && len(lit)-i >= 6 {
		quote = 3
	}
	start, end := str.Start+i+quote, str.End-quote
	if start >= end || bytes.IndexByte(src[start:end], '\\') >= 0 {
		return 0, 0, false
	}
	return start, end, true
}

func classify(n *Node, binding bool) Kind {
	switch n.Type {
	case "module":
		return KindModule
	case "function_definition":
		if n.Async {
			return KindAsyncFunctionDef
		}
		return KindFunctionDef
	case "class_definition":
		return KindClassDef
	case "decorated_definition":
		return KindDecorated
	case "decorator":
		return KindDecorator
	case "import_statement":
		return KindImport
	case "import_from_statement":
		return KindImportFrom
	case "future_import_statement":
		return KindFutureImport
	case "assignment", "augmented_assignment":
		return KindAssign
	case "attribute":
		return KindAttribute
	case "string", "concatenated_string":
		return KindString
	case "block":
		return KindBlock
	case "comment":
		return KindComment
	case "identifier":
		if binding {
			return KindOther
		}
		return KindName
	}
	return KindOther
}

// bindsChild reports whether identifiers under the child sit in a
// declaration position (parameter names, def names, attribute members,
// keyword names, import paths) rather than referencing a name.
func bindsChild(parentType, field, childType string, parentBinding bool) bool {
	switch parentType {
	case "function_definition", "class_definition", "keyword_argument", "default_parameter", "typed_default_parameter":
		return field == "name"
	case "attribute":
		return field == "attribute"
	case "parameters", "lambda_parameters":
		switch childType {
		case "identifier", "list_splat_pattern", "dictionary_splat_pattern", "tuple_pattern":
			return true
		}
		return false
	case "typed_parameter":
		return field != "type"
	case "import_statement", "import_from_statement", "future_import_statement":
		return true
	case "aliased_import", "dotted_name", "relative_import",
		"list_splat_pattern", "dictionary_splat_pattern", "tuple_pattern":
		return parentBinding
	}
	return false
}

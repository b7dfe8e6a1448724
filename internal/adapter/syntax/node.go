// Package syntax turns Python source into a small owned tree of tagged nodes.
package syntax

// Kind is the closed set of constructs the analyzer dispatches on.
type Kind uint8

const (
	KindOther Kind = iota
	KindModule
	KindFunctionDef
	KindAsyncFunctionDef
	KindClassDef
	KindDecorated
	KindDecorator
	KindImport
	KindImportFrom
	KindFutureImport
	KindAssign
	KindName
	KindAttribute
	KindString
	KindBlock
	KindComment
)

var kindNames = [...]string{
	KindOther:            "other",
	KindModule:           "module",
	KindFunctionDef:      "function_def",
	KindAsyncFunctionDef: "async_function_def",
	KindClassDef:         "class_def",
	KindDecorated:        "decorated",
	KindDecorator:        "decorator",
	KindImport:           "import",
	KindImportFrom:       "import_from",
	KindFutureImport:     "future_import",
	KindAssign:           "assign",
	KindName:             "name",
	KindAttribute:        "attribute",
	KindString:           "string",
	KindBlock:            "block",
	KindComment:          "comment",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsDef reports whether the kind is a function or class definition.
func (k Kind) IsDef() bool {
	return k == KindFunctionDef || k == KindAsyncFunctionDef || k == KindClassDef
}

// Node is a copy of one named grammar node. It holds no parser state.
type Node struct {
	Kind     Kind
	Type     string // grammar node type, e.g. "for_statement"
	Field    string // field name in the parent, if any
	Start    int
	End      int
	Line     int // 1-based
	Column   int // 0-based, in bytes
	EndLine  int
	Async    bool   // an "async" keyword is a direct child
	Name     string // identifier text for KindName
	Children []*Node
}

// Child returns the first child carrying the given field name.
func (n *Node) Child(field string) *Node {
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildrenOf returns every child carrying the given field name.
func (n *Node) ChildrenOf(field string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// FirstOfType returns the first direct child with the given grammar type.
func (n *Node) FirstOfType(typ string) *Node {
	for _, c := range n.Children {
		if c.Type == typ {
			return c
		}
	}
	return nil
}

// Visitor is called for each node by Walk. If the returned visitor is nil,
// the children of the node are skipped.
type Visitor interface {
	Visit(n *Node) Visitor
}

// Walk traverses the tree in depth-first source order.
func Walk(v Visitor, n *Node) {
	if n == nil {
		return
	}
	if v = v.Visit(n); v == nil {
		return
	}
	for _, c := range n.Children {
		Walk(v, c)
	}
}

type inspector func(*Node) bool

func (f inspector) Visit(n *Node) Visitor {
	if f(n) {
		return f
	}
	return nil
}

// Inspect calls f for every node; returning false prunes the subtree.
func Inspect(n *Node, f func(*Node) bool) {
	Walk(inspector(f), n)
}

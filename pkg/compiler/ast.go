package compiler

// NodeType identifies the kind of an AST node.
type NodeType uint8

const (
	NodeRoot NodeType = iota
	NodeElement
	NodeText
	NodeInterpolation
	NodeCompound
)

func (t NodeType) String() string {
	switch t {
	case NodeRoot:
		return "root"
	case NodeElement:
		return "element"
	case NodeText:
		return "text"
	case NodeInterpolation:
		return "interpolation"
	case NodeCompound:
		return "compound"
	}
	return "unknown"
}

// AttrKind distinguishes static attributes from bindings.
type AttrKind uint8

const (
	AttrStatic AttrKind = iota
	AttrBind            // :name="path"
	AttrOn              // @event="path"
)

// Attr is a parsed element attribute.
type Attr struct {
	Kind  AttrKind
	Name  string
	Value string
}

// Pos is a 1-based line and column in the template source.
type Pos struct {
	Line   int
	Column int
}

// Node is a template AST node.
//
// Element nodes use Tag, Attrs and Children. Text nodes hold their literal
// in Content and interpolations hold the trimmed expression. Compound nodes
// list their text and interpolation parts in Children.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    []Attr
	Content  string
	Children []*Node
	Pos      Pos

	// Source is the template text, set on the root by Parse.
	Source  string
	// Helpers is set on the root by Transform.
	Helpers []string
}

// Runtime helper names recorded by Transform.
const (
	HelperToDisplayString = "toDisplayString"
	HelperCreateVNode     = "createElementVNode"
	HelperFragment        = "Fragment"
)

// isTextLike reports whether n renders as a string.
func isTextLike(n *Node) bool {
	return n.Type == NodeText || n.Type == NodeInterpolation || n.Type == NodeCompound
}

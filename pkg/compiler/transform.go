package compiler

import (
	"strings"

	"github.com/vango-dev/reactor/internal/errors"
)

// Transform rewrites a parsed tree in place: runs of adjacent text and
// interpolation children collapse into a single compound node, and the
// root records the runtime helpers the template uses. It fails with C004
// when an expression is not a dotted path.
func Transform(root *Node) error {
	helpers := map[string]bool{}
	if err := transformNode(root, root.Source, helpers); err != nil {
		return err
	}
	if root.Type == NodeRoot && len(root.Children) > 1 {
		helpers[HelperFragment] = true
	}

	root.Helpers = root.Helpers[:0]
	for _, h := range []string{HelperToDisplayString, HelperCreateVNode, HelperFragment} {
		if helpers[h] {
			root.Helpers = append(root.Helpers, h)
		}
	}
	return nil
}

func transformNode(n *Node, src string, helpers map[string]bool) error {
	switch n.Type {
	case NodeInterpolation:
		helpers[HelperToDisplayString] = true
		if !isPath(n.Content) {
			return invalidExpression(src, n.Content, n.Pos)
		}
	case NodeElement:
		helpers[HelperCreateVNode] = true
		for _, a := range n.Attrs {
			if a.Kind != AttrStatic && !isPath(a.Value) {
				return invalidExpression(src, a.Value, n.Pos)
			}
		}
	}

	for _, c := range n.Children {
		if err := transformNode(c, src, helpers); err != nil {
			return err
		}
	}
	if n.Type == NodeRoot || n.Type == NodeElement {
		n.Children = mergeText(n.Children)
	}
	return nil
}

// mergeText folds consecutive text-like children into compound nodes.
func mergeText(children []*Node) []*Node {
	var (
		out      []*Node
		compound *Node
	)
	for i, c := range children {
		if !isTextLike(c) {
			compound = nil
			out = append(out, c)
			continue
		}
		if compound != nil {
			compound.Children = append(compound.Children, c)
			continue
		}
		if i+1 < len(children) && isTextLike(children[i+1]) {
			compound = &Node{Type: NodeCompound, Children: []*Node{c}, Pos: c.Pos}
			out = append(out, compound)
			continue
		}
		out = append(out, c)
	}
	return out
}

// isPath reports whether expr is a dotted identifier path such as
// "user.name" or "items.0".
func isPath(expr string) bool {
	if expr == "" {
		return false
	}
	for i, seg := range strings.Split(expr, ".") {
		if seg == "" {
			return false
		}
		for j := 0; j < len(seg); j++ {
			c := seg[j]
			switch {
			case c == '_' || c == '$' || isTagStart(c):
			case c >= '0' && c <= '9':
				if i == 0 && j == 0 {
					return false
				}
			default:
				return false
			}
		}
	}
	return true
}

func invalidExpression(src, expr string, pos Pos) *errors.Error {
	return errors.New("C004").
		WithSource(src, pos.Line, pos.Column).
		WithDetailf("%q is not a property path", expr)
}

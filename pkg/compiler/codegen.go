package compiler

import (
	"strconv"
	"strings"
)

// Generate returns Go source for the render function a transformed root
// compiles to. The output is for reading and debugging; Compile does not
// use it.
//
//	func render(ctx vdom.RenderContext) *vdom.VNode {
//		return vdom.H("div", nil, "hi, "+vdom.ToDisplayString(ctx.Get("message")))
//	}
func Generate(root *Node) string {
	g := &generator{}
	if len(root.Helpers) > 0 {
		g.push("// helpers: ")
		g.push(strings.Join(root.Helpers, ", "))
		g.push("\n")
	}
	g.push("func render(ctx vdom.RenderContext) *vdom.VNode {\n\treturn ")
	switch len(root.Children) {
	case 0:
		g.push("nil")
	case 1:
		g.genNode(root.Children[0])
	default:
		g.push("vdom.H(vdom.Fragment, nil, ")
		g.genNodeList(root.Children)
		g.push(")")
	}
	g.push("\n}\n")
	return g.b.String()
}

type generator struct {
	b strings.Builder
}

func (g *generator) push(s string) {
	g.b.WriteString(s)
}

func (g *generator) genNode(n *Node) {
	if n.Type == NodeElement {
		g.genElement(n)
		return
	}
	g.push("vdom.Text(")
	g.genText(n)
	g.push(")")
}

func (g *generator) genNodeList(nodes []*Node) {
	g.push("[]*vdom.VNode{")
	for i, n := range nodes {
		if i > 0 {
			g.push(", ")
		}
		g.genNode(n)
	}
	g.push("}")
}

func (g *generator) genElement(n *Node) {
	g.push("vdom.H(")
	g.push(strconv.Quote(n.Tag))
	g.push(", ")
	g.genProps(n.Attrs)
	g.push(", ")
	switch {
	case len(n.Children) == 1 && isTextLike(n.Children[0]):
		g.genText(n.Children[0])
	case len(n.Children) > 0:
		g.genNodeList(n.Children)
	default:
		g.push("nil")
	}
	g.push(")")
}

func (g *generator) genProps(attrs []Attr) {
	if len(attrs) == 0 {
		g.push("nil")
		return
	}
	g.push("vdom.Props{")
	for i, a := range attrs {
		if i > 0 {
			g.push(", ")
		}
		switch a.Kind {
		case AttrStatic:
			g.push(strconv.Quote(a.Name) + ": " + strconv.Quote(a.Value))
		case AttrBind:
			g.push(strconv.Quote(a.Name) + ": ")
			g.genPath(a.Value)
		case AttrOn:
			g.push(strconv.Quote(handlerProp(a.Name)) + ": ")
			g.genPath(a.Value)
		}
	}
	g.push("}")
}

func (g *generator) genText(n *Node) {
	switch n.Type {
	case NodeText:
		g.push(strconv.Quote(n.Content))
	case NodeInterpolation:
		g.push("vdom.ToDisplayString(")
		g.genPath(n.Content)
		g.push(")")
	case NodeCompound:
		for i, c := range n.Children {
			if i > 0 {
				g.push("+")
			}
			g.genText(c)
		}
	}
}

func (g *generator) genPath(expr string) {
	if strings.Contains(expr, ".") {
		g.push("lookup(ctx, " + strconv.Quote(expr) + ")")
		return
	}
	g.push("ctx.Get(" + strconv.Quote(expr) + ")")
}

package compiler

import (
	"strconv"
	"strings"

	"github.com/vango-dev/reactor/pkg/reactivity"
	"github.com/vango-dev/reactor/pkg/renderer"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Compile parses and transforms template and returns a render function
// for it. A template with one root node renders that node; several roots
// render as a Fragment.
func Compile(template string) (vdom.RenderFunc, error) {
	root, err := Parse(template)
	if err != nil {
		return nil, err
	}
	if err := Transform(root); err != nil {
		return nil, err
	}
	return Build(root), nil
}

// Register installs Compile as the renderer's template compiler.
func Register() {
	renderer.RegisterCompiler(Compile)
}

type (
	nodeFunc  func(ctx vdom.RenderContext) *vdom.VNode
	textFunc  func(ctx vdom.RenderContext) string
	valueFunc func(ctx vdom.RenderContext) any
)

// Build returns a render function for a transformed root.
func Build(root *Node) vdom.RenderFunc {
	switch len(root.Children) {
	case 0:
		return func(vdom.RenderContext) *vdom.VNode { return nil }
	case 1:
		return vdom.RenderFunc(buildNode(root.Children[0]))
	}
	children := buildNodes(root.Children)
	return func(ctx vdom.RenderContext) *vdom.VNode {
		return vdom.H(vdom.Fragment, nil, children(ctx))
	}
}

func buildNodes(nodes []*Node) func(ctx vdom.RenderContext) []*vdom.VNode {
	fns := make([]nodeFunc, len(nodes))
	for i, n := range nodes {
		fns[i] = buildNode(n)
	}
	return func(ctx vdom.RenderContext) []*vdom.VNode {
		out := make([]*vdom.VNode, len(fns))
		for i, fn := range fns {
			out[i] = fn(ctx)
		}
		return out
	}
}

func buildNode(n *Node) nodeFunc {
	if n.Type == NodeElement {
		return buildElement(n)
	}
	text := buildText(n)
	return func(ctx vdom.RenderContext) *vdom.VNode {
		return vdom.Text(text(ctx))
	}
}

func buildElement(n *Node) nodeFunc {
	props := buildProps(n.Attrs)

	var children func(ctx vdom.RenderContext) any
	switch {
	case len(n.Children) == 1 && isTextLike(n.Children[0]):
		text := buildText(n.Children[0])
		children = func(ctx vdom.RenderContext) any { return text(ctx) }
	case len(n.Children) > 0:
		nodes := buildNodes(n.Children)
		children = func(ctx vdom.RenderContext) any { return nodes(ctx) }
	default:
		children = func(vdom.RenderContext) any { return nil }
	}

	tag := n.Tag
	return func(ctx vdom.RenderContext) *vdom.VNode {
		return vdom.H(tag, props(ctx), children(ctx))
	}
}

// buildProps returns a function producing a fresh props map per render.
func buildProps(attrs []Attr) func(ctx vdom.RenderContext) vdom.Props {
	if len(attrs) == 0 {
		return func(vdom.RenderContext) vdom.Props { return nil }
	}
	names := make([]string, len(attrs))
	values := make([]valueFunc, len(attrs))
	for i, a := range attrs {
		switch a.Kind {
		case AttrStatic:
			names[i] = a.Name
			v := a.Value
			values[i] = func(vdom.RenderContext) any { return v }
		case AttrBind:
			names[i] = a.Name
			values[i] = buildPath(a.Value)
		case AttrOn:
			names[i] = handlerProp(a.Name)
			values[i] = buildPath(a.Value)
		}
	}
	return func(ctx vdom.RenderContext) vdom.Props {
		props := make(vdom.Props, len(names))
		for i, name := range names {
			props[name] = values[i](ctx)
		}
		return props
	}
}

func buildText(n *Node) textFunc {
	switch n.Type {
	case NodeText:
		s := n.Content
		return func(vdom.RenderContext) string { return s }
	case NodeInterpolation:
		value := buildPath(n.Content)
		return func(ctx vdom.RenderContext) string {
			return vdom.ToDisplayString(value(ctx))
		}
	case NodeCompound:
		parts := make([]textFunc, len(n.Children))
		for i, c := range n.Children {
			parts[i] = buildText(c)
		}
		return func(ctx vdom.RenderContext) string {
			var b strings.Builder
			for _, part := range parts {
				b.WriteString(part(ctx))
			}
			return b.String()
		}
	}
	return func(vdom.RenderContext) string { return "" }
}

// buildPath resolves a dotted path: the first segment through the render
// context, the rest through reactive objects, arrays, ref proxies, maps and
// slices. Refs are unwrapped at every step; a missing segment yields nil.
func buildPath(expr string) valueFunc {
	segs := strings.Split(expr, ".")
	return func(ctx vdom.RenderContext) any {
		v := ctx.Get(segs[0])
		for _, seg := range segs[1:] {
			v = member(reactivity.UnRef(v), seg)
			if v == nil {
				return nil
			}
		}
		return reactivity.UnRef(v)
	}
}

func member(v any, key string) any {
	switch t := v.(type) {
	case *reactivity.Object:
		return t.Get(key)
	case *reactivity.RefProxy:
		return t.Get(key)
	case *reactivity.Array:
		if key == "length" {
			return t.Len()
		}
		if i, err := strconv.Atoi(key); err == nil {
			return t.At(i)
		}
	case map[string]any:
		return t[key]
	case vdom.Props:
		return t[key]
	case []any:
		if key == "length" {
			return len(t)
		}
		if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(t) {
			return t[i]
		}
	case vdom.RenderContext:
		return t.Get(key)
	}
	return nil
}

// handlerProp maps an event name to its handler prop: click -> onClick.
func handlerProp(event string) string {
	return "on" + strings.ToUpper(event[:1]) + event[1:]
}

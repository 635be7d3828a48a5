package vdom

import "github.com/vango-dev/reactor/internal/errors"

// VKind is the node type discriminator derived from a VNode's Type.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindFragment               // Grouping without a host node
	KindComponent              // Nested component
	KindInvalid
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// ShapeFlag is a bitmask describing a VNode's type and children.
type ShapeFlag uint8

const (
	ShapeElement ShapeFlag = 1 << iota
	ShapeComponent
	ShapeTextChildren
	ShapeArrayChildren
	ShapeSlotChildren
)

// Has reports whether all bits of flag are set.
func (f ShapeFlag) Has(flag ShapeFlag) bool {
	return f&flag == flag
}

// Symbol is a unique sentinel used as a VNode type.
type Symbol struct {
	name string
}

func (s *Symbol) String() string {
	return s.name
}

var (
	// Fragment groups children without a host node.
	Fragment = &Symbol{name: "Fragment"}

	// TextType marks a text VNode; its Children is the text.
	TextType = &Symbol{name: "Text"}
)

// Props holds attributes, event handlers and component props.
type Props map[string]any

// VNode is a virtual node.
type VNode struct {
	// Type is an element tag (string), *Component, Fragment or TextType.
	Type any

	// Props are the node's attributes or component props. "key" is removed
	// into Key when building with H.
	Props Props

	// Children is a string, []*VNode or Slots.
	Children any

	// Key identifies the node among its siblings during reconciliation.
	Key any

	ShapeFlag ShapeFlag

	// El is the host node once mounted. For fragments it is the start anchor.
	El any

	// Anchor is the end anchor of a mounted fragment.
	Anchor any

	// Component is the renderer's instance for a mounted component vnode.
	Component any
}

// Kind returns the node's kind.
func (v *VNode) Kind() VKind {
	switch t := v.Type.(type) {
	case string:
		return KindElement
	case *Component:
		return KindComponent
	case *Symbol:
		switch t {
		case Fragment:
			return KindFragment
		case TextType:
			return KindText
		}
	}
	return KindInvalid
}

// Tag returns the element tag, or "" for non-elements.
func (v *VNode) Tag() string {
	tag, _ := v.Type.(string)
	return tag
}

// Text returns the text of a text node or text-children element.
func (v *VNode) Text() string {
	s, _ := v.Children.(string)
	return s
}

// ChildNodes returns the node's array children, or nil.
func (v *VNode) ChildNodes() []*VNode {
	c, _ := v.Children.([]*VNode)
	return c
}

// H creates a VNode.
//
// typ is an element tag, a *Component, Fragment or TextType. children may
// be nil, a string, a *VNode, a []*VNode, a []any of strings and vnodes,
// or, for components, Slots. Other scalar values are rendered as text.
// H panics with R003 when typ is not a valid type.
func H(typ any, props Props, children any) *VNode {
	v := &VNode{Type: typ, Props: props}
	switch v.Kind() {
	case KindElement:
		v.ShapeFlag = ShapeElement
	case KindComponent:
		v.ShapeFlag = ShapeComponent
	case KindText:
		v.Children = ToDisplayString(children)
		return v
	case KindInvalid:
		panic(errors.New("R003").WithDetailf("got %T", typ))
	}

	if props != nil {
		if key, ok := props["key"]; ok {
			v.Key = key
		}
	}

	switch c := children.(type) {
	case nil:
	case string:
		if v.Kind() == KindFragment {
			v.Children = []*VNode{Text(c)}
			v.ShapeFlag |= ShapeArrayChildren
		} else {
			v.Children = c
			v.ShapeFlag |= ShapeTextChildren
		}
	case Slots:
		v.Children = c
		v.ShapeFlag |= ShapeSlotChildren
	case map[string]Slot:
		v.Children = Slots(c)
		v.ShapeFlag |= ShapeSlotChildren
	default:
		nodes := NormalizeChildren(c)
		if v.Kind() == KindComponent {
			// Plain children of a component become its default slot.
			v.Children = Slots{"default": func(Props) any { return nodes }}
			v.ShapeFlag |= ShapeSlotChildren
		} else {
			v.Children = nodes
			v.ShapeFlag |= ShapeArrayChildren
		}
	}
	return v
}

// Text creates a text VNode.
func Text(s string) *VNode {
	return &VNode{Type: TextType, Children: s}
}

// NormalizeChildren converts a children value to a []*VNode. Strings and
// scalars become text nodes; nil entries are dropped.
func NormalizeChildren(children any) []*VNode {
	switch c := children.(type) {
	case nil:
		return nil
	case []*VNode:
		for _, n := range c {
			if n == nil {
				return compact(c)
			}
		}
		return c
	case *VNode:
		if c == nil {
			return nil
		}
		return []*VNode{c}
	case string:
		return []*VNode{Text(c)}
	case []any:
		out := make([]*VNode, 0, len(c))
		for _, item := range c {
			out = append(out, NormalizeChildren(item)...)
		}
		return out
	}
	return []*VNode{Text(ToDisplayString(children))}
}

func compact(nodes []*VNode) []*VNode {
	out := make([]*VNode, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// SameType reports whether two vnodes can be patched in place: same type
// and same key. Keys must be comparable values.
func SameType(a, b *VNode) bool {
	return a.Type == b.Type && a.Key == b.Key
}

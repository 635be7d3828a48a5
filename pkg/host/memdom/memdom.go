// Package memdom is an in-memory document that implements renderer.Host.
//
// It keeps a plain node tree with attributes and event listeners, can
// serialize itself to HTML, and can dispatch events to listeners. It is the
// host used for server-side snapshots and for tests.
package memdom

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// NodeType distinguishes element and text nodes.
type NodeType uint8

const (
	ElementNode NodeType = iota
	TextNode
)

// Node is a document node.
type Node struct {
	Type      NodeType
	Tag       string
	Text      string
	Attrs     map[string]string
	Listeners map[string]any
	Parent    *Node
	Children  []*Node
}

// Document implements renderer.Host over Node trees.
type Document struct{}

// New returns an empty document.
func New() *Document {
	return &Document{}
}

// CreateContainer returns a detached element to mount into.
func (d *Document) CreateContainer(tag string) *Node {
	return newElement(tag)
}

func newElement(tag string) *Node {
	return &Node{
		Type:      ElementNode,
		Tag:       tag,
		Attrs:     make(map[string]string),
		Listeners: make(map[string]any),
	}
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) any {
	return newElement(tag)
}

// CreateText creates a detached text node.
func (d *Document) CreateText(text string) any {
	return &Node{Type: TextNode, Text: text}
}

// SetText replaces a text node's content.
func (d *Document) SetText(node any, text string) {
	node.(*Node).Text = text
}

// SetElementText replaces every child of el with one text node. An empty
// text leaves el without children.
func (d *Document) SetElementText(el any, text string) {
	n := el.(*Node)
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = nil
	if text != "" {
		t := &Node{Type: TextNode, Text: text, Parent: n}
		n.Children = []*Node{t}
	}
}

// PatchProp sets or removes an attribute or event listener.
func (d *Document) PatchProp(el any, key string, prev, next any) {
	n := el.(*Node)
	if event := vdom.EventName(key); event != "" {
		if next == nil {
			delete(n.Listeners, event)
			return
		}
		n.Listeners[event] = next
		return
	}
	if next == nil {
		delete(n.Attrs, key)
		return
	}
	n.Attrs[key] = vdom.ToDisplayString(next)
}

// Insert inserts child into parent before anchor, or appends it.
func (d *Document) Insert(child, parent, anchor any) {
	c, p := child.(*Node), parent.(*Node)
	if c.Parent != nil {
		c.Parent.removeChild(c)
	}
	idx := len(p.Children)
	if a, ok := anchor.(*Node); ok && a != nil {
		if i := p.indexOf(a); i >= 0 {
			idx = i
		}
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[idx+1:], p.Children[idx:])
	p.Children[idx] = c
	c.Parent = p
}

// Remove detaches child from its parent.
func (d *Document) Remove(child any) {
	c, ok := child.(*Node)
	if !ok || c == nil || c.Parent == nil {
		return
	}
	c.Parent.removeChild(c)
}

// ParentNode returns the node's parent.
func (d *Document) ParentNode(node any) any {
	n, ok := node.(*Node)
	if !ok || n == nil || n.Parent == nil {
		return nil
	}
	return n.Parent
}

// NextSibling returns the node's next sibling.
func (d *Document) NextSibling(node any) any {
	n, ok := node.(*Node)
	if !ok || n == nil || n.Parent == nil {
		return nil
	}
	i := n.Parent.indexOf(n)
	if i < 0 || i+1 >= len(n.Parent.Children) {
		return nil
	}
	return n.Parent.Children[i+1]
}

// Dispatch calls the listener for event on node with args. It reports
// whether a listener was found.
func (d *Document) Dispatch(node *Node, event string, args ...any) bool {
	h, ok := node.Listeners[event]
	if !ok {
		return false
	}
	return vdom.CallHandler(h, args...)
}

func (n *Node) indexOf(c *Node) int {
	for i, x := range n.Children {
		if x == c {
			return i
		}
	}
	return -1
}

func (n *Node) removeChild(c *Node) {
	if i := n.indexOf(c); i >= 0 {
		n.Children = append(n.Children[:i], n.Children[i+1:]...)
	}
	c.Parent = nil
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// ByTag returns every descendant element with tag, in document order.
func (n *Node) ByTag(tag string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(x *Node) {
		for _, c := range x.Children {
			if c.Type == ElementNode {
				if c.Tag == tag {
					out = append(out, c)
				}
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// First returns the first descendant element with tag, or nil.
func (n *Node) First(tag string) *Node {
	if all := n.ByTag(tag); len(all) > 0 {
		return all[0]
	}
	return nil
}

// String describes the node for debugging.
func (n *Node) String() string {
	if n.Type == TextNode {
		return fmt.Sprintf("#text(%q)", n.Text)
	}
	return "<" + n.Tag + ">"
}

// InnerHTML serializes n's children.
func (n *Node) InnerHTML() string {
	var b strings.Builder
	for _, c := range n.Children {
		writeHTML(&b, c)
	}
	return b.String()
}

// OuterHTML serializes n including its own tag.
func (n *Node) OuterHTML() string {
	var b strings.Builder
	writeHTML(&b, n)
	return b.String()
}

// voidElements cannot have children and have no closing tag.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

func writeHTML(b *strings.Builder, n *Node) {
	if n.Type == TextNode {
		writeText(b, n.Text)
		return
	}
	b.WriteByte('<')
	b.WriteString(n.Tag)
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		writeAttrValue(b, n.Attrs[k])
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if voidElements[n.Tag] {
		return
	}
	for _, c := range n.Children {
		writeHTML(b, c)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

package renderer

// Host is the set of primitive operations the renderer needs from the
// environment it renders into. Nodes are opaque to the renderer.
//
// Methods that return a node must return an untyped nil when there is no
// node, so the renderer can compare against nil.
type Host interface {
	// CreateElement creates a detached element node.
	CreateElement(tag string) any

	// CreateText creates a detached text node.
	CreateText(text string) any

	// SetText replaces the content of a text node.
	SetText(node any, text string)

	// SetElementText replaces all children of el with a single text.
	SetElementText(el any, text string)

	// PatchProp applies one prop change. A nil next removes the prop. Keys
	// matching on[A-Z]... are event listeners.
	PatchProp(el any, key string, prev, next any)

	// Insert inserts child into parent before anchor, or at the end when
	// anchor is nil. Inserting an attached node moves it.
	Insert(child, parent, anchor any)

	// Remove detaches child from its parent.
	Remove(child any)

	// ParentNode returns the parent of node, or nil.
	ParentNode(node any) any

	// NextSibling returns the next sibling of node, or nil.
	NextSibling(node any) any
}

// Package vdom provides the virtual node model for reactor.
//
// A VNode describes one rendering unit: a host element, a component, a text
// node or a fragment. The renderer mounts VNodes onto a host and diffs
// successive trees to apply minimal host mutations.
//
// # Core Types
//
// VNode carries the node type, props, children, an optional key and a
// shape-flag bitmask. Component is a component definition. RenderContext is
// what a render function receives: the component's state, props and slots.
//
// # Building Trees
//
// H builds a VNode from a type, props and children:
//
//	vdom.H("ul", vdom.Props{"class": "list"}, []*vdom.VNode{
//	    vdom.H("li", vdom.Props{"key": "a"}, "first"),
//	    vdom.H("li", vdom.Props{"key": "b"}, "second"),
//	})
//
// Children may be a string (text content), a []*VNode, a single *VNode, or
// for components a Slots mapping.
//
// # Keys
//
// Children of the same parent with a Key are matched by key during
// reconciliation, so reordering a keyed list moves existing host nodes
// instead of recreating them.
package vdom

package renderer

import (
	"log/slog"
	"sort"

	"github.com/vango-dev/reactor/pkg/reactivity"
	"github.com/vango-dev/reactor/pkg/scheduler"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithScheduler sets the scheduler component updates are queued on.
// The default is scheduler.Default().
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(r *Renderer) {
		if s != nil {
			r.scheduler = s
		}
	}
}

// WithLogger sets the renderer's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// Renderer mounts and patches vnode trees on a Host. A Renderer is not safe
// for concurrent use; all rendering for one renderer must happen on one
// goroutine at a time.
type Renderer struct {
	host      Host
	scheduler *scheduler.Scheduler
	logger    *slog.Logger

	// roots tracks the tree last rendered into each container by Render.
	roots map[any]*vdom.VNode

	// mountingApp is the app whose root is being mounted. Instances without
	// a parent inherit it.
	mountingApp *App
}

// New creates a renderer for host.
func New(host Host, opts ...Option) *Renderer {
	r := &Renderer{
		host:      host,
		scheduler: scheduler.Default(),
		logger:    slog.Default(),
		roots:     make(map[any]*vdom.VNode),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Host returns the renderer's host.
func (r *Renderer) Host() Host {
	return r.host
}

// Scheduler returns the scheduler component updates are queued on.
func (r *Renderer) Scheduler() *scheduler.Scheduler {
	return r.scheduler
}

// Render patches vnode into container against whatever was previously
// rendered there. A nil vnode unmounts the previous tree.
func (r *Renderer) Render(vnode *vdom.VNode, container any) {
	prev := r.roots[container]
	if vnode == nil {
		if prev != nil {
			r.unmount(prev, true)
			delete(r.roots, container)
		}
		return
	}
	r.patch(prev, vnode, container, nil, nil)
	r.roots[container] = vnode
}

// patch brings the host in line with n2. A nil n1 mounts n2 before anchor.
func (r *Renderer) patch(n1, n2 *vdom.VNode, container, anchor any, parent *Instance) {
	if n1 == n2 {
		return
	}
	if n1 != nil && !vdom.SameType(n1, n2) {
		anchor = r.nextHostNode(n1)
		r.unmount(n1, true)
		n1 = nil
	}

	switch n2.Kind() {
	case vdom.KindText:
		r.processText(n1, n2, container, anchor)
	case vdom.KindFragment:
		r.processFragment(n1, n2, container, anchor, parent)
	case vdom.KindElement:
		r.processElement(n1, n2, container, anchor, parent)
	case vdom.KindComponent:
		r.processComponent(n1, n2, container, anchor, parent)
	}
}

func (r *Renderer) processText(n1, n2 *vdom.VNode, container, anchor any) {
	if n1 == nil {
		n2.El = r.host.CreateText(n2.Text())
		r.host.Insert(n2.El, container, anchor)
		return
	}
	n2.El = n1.El
	if n2.Text() != n1.Text() {
		r.host.SetText(n2.El, n2.Text())
	}
}

// processFragment mounts a fragment's children between two empty text
// anchors so the group can be located, moved and removed as a unit.
func (r *Renderer) processFragment(n1, n2 *vdom.VNode, container, anchor any, parent *Instance) {
	if n1 == nil {
		n2.El = r.host.CreateText("")
		n2.Anchor = r.host.CreateText("")
		r.host.Insert(n2.El, container, anchor)
		r.host.Insert(n2.Anchor, container, anchor)
		r.mountChildren(n2.ChildNodes(), container, n2.Anchor, parent)
		return
	}
	n2.El = n1.El
	n2.Anchor = n1.Anchor
	r.patchChildren(n1, n2, container, n2.Anchor, parent)
}

func (r *Renderer) processElement(n1, n2 *vdom.VNode, container, anchor any, parent *Instance) {
	if n1 == nil {
		r.mountElement(n2, container, anchor, parent)
		return
	}
	el := n1.El
	n2.El = el
	r.patchProps(el, n1.Props, n2.Props)
	r.patchChildren(n1, n2, el, nil, parent)
}

func (r *Renderer) mountElement(vnode *vdom.VNode, container, anchor any, parent *Instance) {
	el := r.host.CreateElement(vnode.Tag())
	vnode.El = el

	for _, key := range sortedKeys(vnode.Props) {
		if key == "key" {
			continue
		}
		if v := vnode.Props[key]; v != nil {
			r.host.PatchProp(el, key, nil, v)
		}
	}

	switch {
	case vnode.ShapeFlag.Has(vdom.ShapeTextChildren):
		r.host.SetElementText(el, vnode.Text())
	case vnode.ShapeFlag.Has(vdom.ShapeArrayChildren):
		r.mountChildren(vnode.ChildNodes(), el, nil, parent)
	}

	r.host.Insert(el, container, anchor)
}

// patchProps applies changed and added props, then removes props absent from
// next. Props are visited in key order so host call logs are stable.
func (r *Renderer) patchProps(el any, prev, next vdom.Props) {
	for _, key := range sortedKeys(next) {
		if key == "key" {
			continue
		}
		old, nv := prev[key], next[key]
		if !reactivity.SameValue(old, nv) {
			r.host.PatchProp(el, key, old, nv)
		}
	}
	for _, key := range sortedKeys(prev) {
		if key == "key" {
			continue
		}
		if _, ok := next[key]; !ok {
			r.host.PatchProp(el, key, prev[key], nil)
		}
	}
}

// patchChildren reconciles the children of n1 and n2 inside container.
// anchor bounds the children of a fragment; it is nil for elements.
func (r *Renderer) patchChildren(n1, n2 *vdom.VNode, container, anchor any, parent *Instance) {
	prevFlag, nextFlag := n1.ShapeFlag, n2.ShapeFlag

	if nextFlag.Has(vdom.ShapeTextChildren) {
		if prevFlag.Has(vdom.ShapeArrayChildren) {
			r.unmountChildren(n1.ChildNodes())
		}
		if !prevFlag.Has(vdom.ShapeTextChildren) || n1.Text() != n2.Text() {
			r.host.SetElementText(container, n2.Text())
		}
		return
	}

	switch {
	case prevFlag.Has(vdom.ShapeArrayChildren):
		if nextFlag.Has(vdom.ShapeArrayChildren) {
			r.patchKeyedChildren(n1.ChildNodes(), n2.ChildNodes(), container, anchor, parent)
		} else {
			r.unmountChildren(n1.ChildNodes())
		}
	case prevFlag.Has(vdom.ShapeTextChildren):
		r.host.SetElementText(container, "")
		if nextFlag.Has(vdom.ShapeArrayChildren) {
			r.mountChildren(n2.ChildNodes(), container, anchor, parent)
		}
	default:
		if nextFlag.Has(vdom.ShapeArrayChildren) {
			r.mountChildren(n2.ChildNodes(), container, anchor, parent)
		}
	}
}

func (r *Renderer) mountChildren(children []*vdom.VNode, container, anchor any, parent *Instance) {
	for _, child := range children {
		r.patch(nil, child, container, anchor, parent)
	}
}

func (r *Renderer) unmountChildren(children []*vdom.VNode) {
	for _, child := range children {
		r.unmount(child, true)
	}
}

// unmount tears down vnode. Component effects in the subtree are stopped;
// host nodes are removed only at the top level when doRemove is set, since
// removing an element removes its descendants with it.
func (r *Renderer) unmount(vnode *vdom.VNode, doRemove bool) {
	switch vnode.Kind() {
	case vdom.KindComponent:
		if inst, ok := vnode.Component.(*Instance); ok {
			r.unmountComponent(inst, doRemove)
		}
	case vdom.KindFragment:
		for _, child := range vnode.ChildNodes() {
			r.unmount(child, doRemove)
		}
		if doRemove {
			r.host.Remove(vnode.El)
			r.host.Remove(vnode.Anchor)
		}
	case vdom.KindElement:
		for _, child := range vnode.ChildNodes() {
			r.unmount(child, false)
		}
		if doRemove {
			r.host.Remove(vnode.El)
		}
	default:
		if doRemove {
			r.host.Remove(vnode.El)
		}
	}
}

// move re-inserts the host nodes of an already mounted vnode before anchor.
func (r *Renderer) move(vnode *vdom.VNode, container, anchor any) {
	switch vnode.Kind() {
	case vdom.KindComponent:
		if inst, ok := vnode.Component.(*Instance); ok && inst.subTree != nil {
			r.move(inst.subTree, container, anchor)
		}
	case vdom.KindFragment:
		r.host.Insert(vnode.El, container, anchor)
		for _, child := range vnode.ChildNodes() {
			r.move(child, container, anchor)
		}
		r.host.Insert(vnode.Anchor, container, anchor)
	default:
		r.host.Insert(vnode.El, container, anchor)
	}
}

// nextHostNode returns the host node following everything vnode rendered.
func (r *Renderer) nextHostNode(vnode *vdom.VNode) any {
	switch vnode.Kind() {
	case vdom.KindComponent:
		if inst, ok := vnode.Component.(*Instance); ok && inst.subTree != nil {
			return r.nextHostNode(inst.subTree)
		}
		return nil
	case vdom.KindFragment:
		return r.host.NextSibling(vnode.Anchor)
	default:
		return r.host.NextSibling(vnode.El)
	}
}

func sortedKeys(props vdom.Props) []string {
	if len(props) == 0 {
		return nil
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

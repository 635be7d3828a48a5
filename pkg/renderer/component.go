package renderer

import (
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactivity"
	"github.com/vango-dev/reactor/pkg/scheduler"
	"github.com/vango-dev/reactor/pkg/vdom"
)

var instanceID atomic.Uint64

// Instance is a mounted component. It implements vdom.RenderContext and is
// what render functions receive.
type Instance struct {
	uid      uint64
	typ      *vdom.Component
	vnode    *vdom.VNode
	next     *vdom.VNode
	parent   *Instance
	app      *App
	renderer *Renderer

	props      map[string]any
	propsProxy *reactivity.Object
	slots      vdom.NormalizedSlots
	setupState *reactivity.RefProxy
	render     vdom.RenderFunc

	subTree   *vdom.VNode
	container any
	effect    *reactivity.ReactiveEffect
	job       *scheduler.Job
	provides  map[any]any

	isMounted   bool
	isUnmounted bool
}

func (r *Renderer) newInstance(vnode *vdom.VNode, parent *Instance) *Instance {
	inst := &Instance{
		uid:      instanceID.Add(1),
		typ:      vnode.Type.(*vdom.Component),
		vnode:    vnode,
		parent:   parent,
		renderer: r,
		props:    make(map[string]any),
		slots:    make(vdom.NormalizedSlots),
		provides: make(map[any]any),
	}
	if parent != nil {
		inst.app = parent.app
	} else {
		inst.app = r.mountingApp
	}
	vnode.Component = inst
	return inst
}

// ID returns the instance's unique id.
func (i *Instance) ID() uint64 { return i.uid }

// Name returns the component's name.
func (i *Instance) Name() string {
	if i.typ.Name != "" {
		return i.typ.Name
	}
	return "Anonymous"
}

// Parent returns the parent instance, or nil for a root.
func (i *Instance) Parent() *Instance { return i.parent }

// SubTree returns the vnode tree produced by the last render.
func (i *Instance) SubTree() *vdom.VNode { return i.subTree }

// IsMounted reports whether the first render has completed.
func (i *Instance) IsMounted() bool { return i.isMounted && !i.isUnmounted }

// Update runs the render effect synchronously, bypassing the scheduler.
func (i *Instance) Update() {
	if i.isUnmounted || i.effect == nil {
		return
	}
	i.effect.Run()
}

// Get resolves key against setup state, then props, then "$el", "$slots"
// and "$props".
func (i *Instance) Get(key string) any {
	if i.setupState != nil {
		if v, ok := i.setupState.Lookup(key); ok {
			return v
		}
	}
	if v, ok := i.propsProxy.Lookup(key); ok {
		return v
	}
	switch key {
	case "$el":
		return i.vnode.El
	case "$slots":
		return i.slots
	case "$props":
		return i.propsProxy
	}
	return nil
}

// Set writes key into setup state. Writing a prop is rejected with a
// warning.
func (i *Instance) Set(key string, value any) {
	if i.setupState != nil && i.setupState.Has(key) {
		i.setupState.Set(key, value)
		return
	}
	if _, ok := i.props[key]; ok {
		// Warns: props are readonly.
		i.propsProxy.Set(key, value)
		return
	}
	if i.setupState == nil {
		i.setupState = reactivity.ProxyRefs(reactivity.Reactive(map[string]any{}))
	}
	i.setupState.Set(key, value)
}

// Props returns the component's readonly props.
func (i *Instance) Props() *reactivity.Object { return i.propsProxy }

// Slots returns the component's normalized slots.
func (i *Instance) Slots() vdom.NormalizedSlots { return i.slots }

// El returns the first host node of the component's subtree.
func (i *Instance) El() any { return i.vnode.El }

// Emit calls the handler prop for event, if any. "add-todo" resolves to
// "onAddTodo".
func (i *Instance) Emit(event string, args ...any) {
	handler, ok := i.props[toHandlerKey(event)]
	if !ok {
		return
	}
	vdom.CallHandler(handler, args...)
}

// toHandlerKey converts an event name to its handler prop name.
func toHandlerKey(event string) string {
	var b strings.Builder
	b.WriteString("on")
	upper := true
	for _, r := range event {
		if r == '-' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (r *Renderer) processComponent(n1, n2 *vdom.VNode, container, anchor any, parent *Instance) {
	if n1 == nil {
		r.mountComponent(n2, container, anchor, parent)
		return
	}
	r.updateComponent(n1, n2)
}

func (r *Renderer) mountComponent(vnode *vdom.VNode, container, anchor any, parent *Instance) {
	inst := r.newInstance(vnode, parent)
	r.setupComponent(inst)
	r.setupRenderEffect(inst, container, anchor)
	r.logger.Debug("component mounted", "component", inst.Name(), "id", inst.uid)
}

// setupComponent resolves props and slots and runs Setup with inst as the
// current instance.
func (r *Renderer) setupComponent(inst *Instance) {
	inst.assignProps(inst.vnode.Props)
	inst.assignSlots(inst.vnode.Children)
	inst.propsProxy = reactivity.ShallowReadonly(inst.props).(*reactivity.Object)

	if setup := inst.typ.Setup; setup != nil {
		result := withCurrentInstance(inst, func() any {
			return setup(inst.propsProxy, &vdom.SetupContext{
				Emit:  inst.Emit,
				Slots: inst.slots,
			})
		})
		r.handleSetupResult(inst, result)
	}
	r.finishComponentSetup(inst)
}

func (r *Renderer) handleSetupResult(inst *Instance, result any) {
	switch res := result.(type) {
	case nil:
	case vdom.RenderFunc:
		inst.render = res
	case func(vdom.RenderContext) *vdom.VNode:
		inst.render = res
	case map[string]any, *reactivity.Object, *reactivity.RefProxy:
		inst.setupState = reactivity.ProxyRefs(res)
	case vdom.Props:
		inst.setupState = reactivity.ProxyRefs(map[string]any(res))
	default:
		r.logger.Warn("setup returned unsupported value",
			"component", inst.Name(), "type", fmt.Sprintf("%T", result))
	}
}

func (r *Renderer) finishComponentSetup(inst *Instance) {
	if inst.render != nil {
		return
	}
	comp := inst.typ
	if comp.Render != nil {
		inst.render = comp.Render
		return
	}
	if comp.Template != "" {
		fn, err := compileTemplate(comp)
		if err != nil {
			panic(errors.New("R002").
				WithDetailf("component %q: %v", inst.Name(), err).
				Wrap(err))
		}
		inst.render = fn
		return
	}
	panic(errors.New("R001").WithDetailf("component %q has no render function or template", inst.Name()))
}

// setupRenderEffect wraps the component's render in an effect whose
// triggers queue the instance's update job.
func (r *Renderer) setupRenderEffect(inst *Instance, container, anchor any) {
	inst.container = container
	inst.job = scheduler.NewJob(inst.Name(), inst.Update)
	inst.effect = reactivity.NewReactiveEffect(func() any {
		r.componentUpdate(inst, anchor)
		return nil
	}, func() {
		r.scheduler.QueueJob(inst.job)
	})
	inst.effect.Run()
}

func (r *Renderer) componentUpdate(inst *Instance, anchor any) {
	if !inst.isMounted {
		subTree := inst.renderRoot()
		inst.subTree = subTree
		r.patch(nil, subTree, inst.container, anchor, inst)
		inst.vnode.El = subTree.El
		inst.isMounted = true
		return
	}

	if next := inst.next; next != nil {
		next.El = inst.vnode.El
		inst.updatePreRender(next)
	}

	prev := inst.subTree
	subTree := inst.renderRoot()
	inst.subTree = subTree

	container := r.host.ParentNode(prev.El)
	if container == nil {
		container = inst.container
	}
	r.patch(prev, subTree, container, nil, inst)
	inst.vnode.El = subTree.El
}

// renderRoot calls the render function. A nil result renders as empty text.
func (i *Instance) renderRoot() *vdom.VNode {
	v := i.render(i)
	if v == nil {
		return vdom.Text("")
	}
	return v
}

// updatePreRender adopts a new vnode from the parent. Props and slots are
// updated in place so values captured during setup stay current.
func (i *Instance) updatePreRender(next *vdom.VNode) {
	next.Component = i
	i.vnode = next
	i.next = nil
	i.assignProps(next.Props)
	i.assignSlots(next.Children)
}

func (i *Instance) assignProps(props vdom.Props) {
	for k := range i.props {
		delete(i.props, k)
	}
	for k, v := range props {
		if k == "key" {
			continue
		}
		i.props[k] = v
	}
}

func (i *Instance) assignSlots(children any) {
	for k := range i.slots {
		delete(i.slots, k)
	}
	if slots, ok := children.(vdom.Slots); ok {
		for k, v := range vdom.NormalizeSlots(slots) {
			i.slots[k] = v
		}
	}
}

// updateComponent patches a component vnode. The child re-renders only when
// its props or slots changed.
func (r *Renderer) updateComponent(n1, n2 *vdom.VNode) {
	inst := n1.Component.(*Instance)
	n2.Component = inst
	if shouldUpdateComponent(n1, n2) {
		inst.next = n2
		inst.Update()
		return
	}
	n2.El = n1.El
	inst.vnode = n2
}

func shouldUpdateComponent(prev, next *vdom.VNode) bool {
	if prev.ShapeFlag.Has(vdom.ShapeSlotChildren) || next.ShapeFlag.Has(vdom.ShapeSlotChildren) {
		return true
	}
	for k, v := range next.Props {
		if k == "key" {
			continue
		}
		old, ok := prev.Props[k]
		if !ok || !reactivity.SameValue(old, v) {
			return true
		}
	}
	for k := range prev.Props {
		if _, ok := next.Props[k]; !ok {
			return true
		}
	}
	return false
}

func (r *Renderer) unmountComponent(inst *Instance, doRemove bool) {
	inst.isUnmounted = true
	if inst.effect != nil {
		inst.effect.Stop()
	}
	if inst.subTree != nil {
		r.unmount(inst.subTree, doRemove)
	}
	r.logger.Debug("component unmounted", "component", inst.Name(), "id", inst.uid)
}

// ErrNoCompiler is returned when a component needs its template compiled but
// no compiler has been registered.
var ErrNoCompiler = stderrors.New("reactor: no template compiler registered")

// CompileFunc compiles a template into a render function.
type CompileFunc func(template string) (vdom.RenderFunc, error)

var (
	compilerMu sync.RWMutex
	compiler   CompileFunc

	// compiled caches render functions per component definition.
	compiled sync.Map
)

// RegisterCompiler installs the template compiler used for components that
// declare a Template instead of a Render function. It must be called before
// such a component mounts.
func RegisterCompiler(fn CompileFunc) {
	compilerMu.Lock()
	compiler = fn
	compilerMu.Unlock()
}

func compileTemplate(comp *vdom.Component) (vdom.RenderFunc, error) {
	if fn, ok := compiled.Load(comp); ok {
		return fn.(vdom.RenderFunc), nil
	}
	compilerMu.RLock()
	compile := compiler
	compilerMu.RUnlock()
	if compile == nil {
		return nil, ErrNoCompiler
	}
	fn, err := compile(comp.Template)
	if err != nil {
		return nil, err
	}
	compiled.Store(comp, fn)
	return fn, nil
}

package renderer

import (
	stderrors "errors"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// ErrAlreadyMounted is returned by Mount when the app is already mounted.
var ErrAlreadyMounted = stderrors.New("reactor: app already mounted")

// App is a root component bound to a renderer.
type App struct {
	renderer  *Renderer
	root      *vdom.Component
	props     vdom.Props
	provides  map[any]any
	vnode     *vdom.VNode
	container any
}

// CreateApp creates an app rendering root with the given root props.
func (r *Renderer) CreateApp(root *vdom.Component, props vdom.Props) *App {
	return &App{
		renderer: r,
		root:     root,
		props:    props,
		provides: make(map[any]any),
	}
}

// Provide makes value injectable under key by every component in the app.
func (a *App) Provide(key, value any) *App {
	a.provides[key] = value
	return a
}

// Mount renders the root component into container. Coded renderer errors
// (a component without a render function, a template that fails to
// compile) abort the mount and are returned. Panics raised by component
// code propagate.
func (a *App) Mount(container any) (err error) {
	if a.vnode != nil {
		return ErrAlreadyMounted
	}

	vnode := vdom.H(a.root, a.props, nil)
	r := a.renderer
	r.mountingApp = a
	defer func() {
		r.mountingApp = nil
		if rec := recover(); rec != nil {
			coded, ok := rec.(*errors.Error)
			if !ok {
				panic(rec)
			}
			err = coded
		}
	}()

	r.Render(vnode, container)
	a.vnode = vnode
	a.container = container
	return nil
}

// Unmount tears down the app, stopping every component's render effect and
// removing its host nodes.
func (a *App) Unmount() {
	if a.vnode == nil {
		return
	}
	a.renderer.Render(nil, a.container)
	a.vnode = nil
	a.container = nil
}

// Instance returns the root component instance, or nil before Mount.
func (a *App) Instance() *Instance {
	if a.vnode == nil {
		return nil
	}
	inst, _ := a.vnode.Component.(*Instance)
	return inst
}

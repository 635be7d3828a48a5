package renderer_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	rerrors "github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/host/recorder"
	"github.com/vango-dev/reactor/pkg/reactivity"
	"github.com/vango-dev/reactor/pkg/renderer"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func mount(t *testing.T, h *harness, root *vdom.Component, props vdom.Props) *renderer.App {
	t.Helper()
	app := h.r.CreateApp(root, props)
	if err := app.Mount(h.container); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return app
}

func TestComponentUpdateIsBatched(t *testing.T) {
	h := newHarness(t)
	count := reactivity.NewRef(0)
	renders := 0

	counter := &vdom.Component{
		Name: "Counter",
		Setup: func(props *reactivity.Object, ctx *vdom.SetupContext) any {
			return map[string]any{"count": count}
		},
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			renders++
			return vdom.H("p", nil, vdom.ToDisplayString(ctx.Get("count")))
		},
	}
	mount(t, h, counter, nil)

	if got := h.html(); got != "<p>0</p>" {
		t.Fatalf("html = %q, want %q", got, "<p>0</p>")
	}

	count.Set(1)
	if renders != 1 {
		t.Errorf("renders after Set = %d, want 1 (update must be deferred)", renders)
	}
	if got := h.html(); got != "<p>0</p>" {
		t.Errorf("html before flush = %q, want %q", got, "<p>0</p>")
	}

	count.Set(2)
	count.Set(3)
	done := h.sched.NextTick(nil)
	h.sched.Drain()
	<-done

	if renders != 2 {
		t.Errorf("renders = %d, want 2", renders)
	}
	if got := h.html(); got != "<p>3</p>" {
		t.Errorf("html = %q, want %q", got, "<p>3</p>")
	}
}

func TestNextTickCallbackSeesUpdatedTree(t *testing.T) {
	h := newHarness(t)
	msg := reactivity.NewRef("a")
	comp := &vdom.Component{
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			return vdom.H("span", nil, msg.Value())
		},
	}
	mount(t, h, comp, nil)

	var seen string
	h.sched.RunTask(func() {
		msg.Set("b")
		h.sched.NextTick(func() { seen = h.html() })
	})
	if seen != "<span>b</span>" {
		t.Errorf("html in NextTick = %q, want %q", seen, "<span>b</span>")
	}
}

func TestChildSkipsRenderWhenPropsUnchanged(t *testing.T) {
	h := newHarness(t)
	state := reactivity.Reactive(map[string]any{"msg": "hi", "other": 0}).(*reactivity.Object)
	parentRenders, childRenders := 0, 0

	child := &vdom.Component{
		Name: "Child",
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			childRenders++
			return vdom.H("b", nil, ctx.Get("msg"))
		},
	}
	parent := &vdom.Component{
		Name: "Parent",
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			parentRenders++
			return vdom.H("div", nil, []*vdom.VNode{
				vdom.H("span", nil, vdom.ToDisplayString(state.Get("other"))),
				vdom.H(child, vdom.Props{"msg": state.Get("msg")}, nil),
			})
		},
	}
	mount(t, h, parent, nil)

	state.Set("other", 1)
	h.sched.Drain()
	if parentRenders != 2 || childRenders != 1 {
		t.Errorf("renders parent=%d child=%d, want parent=2 child=1", parentRenders, childRenders)
	}
	if got := h.html(); got != "<div><span>1</span><b>hi</b></div>" {
		t.Errorf("html = %q", got)
	}

	state.Set("msg", "yo")
	h.sched.Drain()
	if childRenders != 2 {
		t.Errorf("child renders = %d, want 2", childRenders)
	}
	if got := h.html(); got != "<div><span>1</span><b>yo</b></div>" {
		t.Errorf("html = %q", got)
	}
}

func TestChildWithStableHandlerSkipsRender(t *testing.T) {
	h := newHarness(t)
	other := reactivity.NewRef(0)
	childRenders := 0
	onPick := func(v string) { t.Log("picked", v) }
	handler := reactivity.NewRef[any](onPick)

	child := &vdom.Component{
		Name: "Picker",
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			childRenders++
			return vdom.H("b", nil, ctx.Get("msg"))
		},
	}
	parent := &vdom.Component{
		Name: "Parent",
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			return vdom.H("div", nil, []*vdom.VNode{
				vdom.H("span", nil, vdom.ToDisplayString(other.Value())),
				vdom.H(child, vdom.Props{"msg": "hi", "onPick": handler.Value()}, nil),
			})
		},
	}
	mount(t, h, parent, nil)

	other.Set(1)
	h.sched.Drain()
	if childRenders != 1 {
		t.Errorf("child renders with same handler = %d, want 1", childRenders)
	}

	handler.Set(func(v string) { t.Log("picked other", v) })
	h.sched.Drain()
	if childRenders != 2 {
		t.Errorf("child renders with new handler = %d, want 2", childRenders)
	}
}

func TestPropsAreReadonly(t *testing.T) {
	var buf bytes.Buffer
	reactivity.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer reactivity.SetLogger(nil)

	h := newHarness(t)
	var gotProps *reactivity.Object
	child := &vdom.Component{
		Setup: func(props *reactivity.Object, ctx *vdom.SetupContext) any {
			gotProps = props
			props.Set("msg", "changed")
			return nil
		},
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			ctx.Set("msg", "changed again")
			return vdom.H("i", nil, ctx.Get("msg"))
		},
	}
	mount(t, h, child, vdom.Props{"msg": "orig"})

	if !reactivity.IsReadonly(gotProps) {
		t.Error("props should be readonly")
	}
	if got := h.html(); got != "<i>orig</i>" {
		t.Errorf("html = %q, want %q", got, "<i>orig</i>")
	}
	if !strings.Contains(buf.String(), "target is readonly") {
		t.Errorf("expected readonly warning, log = %q", buf.String())
	}
}

func TestEmit(t *testing.T) {
	h := newHarness(t)
	var got []any
	var emit func(string, ...any)

	child := &vdom.Component{
		Setup: func(props *reactivity.Object, ctx *vdom.SetupContext) any {
			emit = ctx.Emit
			return nil
		},
		Render: func(ctx vdom.RenderContext) *vdom.VNode { return vdom.H("i", nil, nil) },
	}
	parent := &vdom.Component{
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			return vdom.H(child, vdom.Props{
				"onAddFoo": func(args ...any) { got = args },
			}, nil)
		},
	}
	mount(t, h, parent, nil)

	emit("add-foo", 1, 2)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("handler args = %v, want [1 2]", got)
	}

	// Unknown events are ignored.
	emit("nothing")
}

func TestSlots(t *testing.T) {
	h := newHarness(t)
	child := &vdom.Component{
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			return vdom.H("div", nil, []*vdom.VNode{
				vdom.RenderSlot(ctx.Slots(), "header", vdom.Props{"n": 1}),
				vdom.RenderSlot(ctx.Slots(), "default", nil),
				vdom.RenderSlot(ctx.Slots(), "footer", nil),
			})
		},
	}
	parent := &vdom.Component{
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			return vdom.H(child, nil, vdom.Slots{
				"header": func(p vdom.Props) any {
					return vdom.H("h1", nil, fmt.Sprint(p["n"]))
				},
				"default": func(vdom.Props) any { return "body" },
			})
		},
	}
	mount(t, h, parent, nil)

	if got := h.html(); got != "<div><h1>1</h1>body</div>" {
		t.Errorf("html = %q, want %q", got, "<div><h1>1</h1>body</div>")
	}
}

func TestProvideInject(t *testing.T) {
	h := newHarness(t)
	got := map[string]any{}

	leaf := &vdom.Component{
		Name: "Leaf",
		Setup: func(props *reactivity.Object, ctx *vdom.SetupContext) any {
			got["theme"] = renderer.Inject("theme")
			got["size"] = renderer.Inject("size")
			got["lang"] = renderer.Inject("lang")
			got["missing"] = renderer.Inject("missing", func() any { return "fallback" })
			got["static"] = renderer.Inject("missing", "plain")
			got["none"] = renderer.Inject("missing")
			return nil
		},
		Render: func(ctx vdom.RenderContext) *vdom.VNode { return vdom.Text("leaf") },
	}
	mid := &vdom.Component{
		Setup: func(props *reactivity.Object, ctx *vdom.SetupContext) any {
			renderer.Provide("size", 2)
			return nil
		},
		Render: func(ctx vdom.RenderContext) *vdom.VNode { return vdom.H(leaf, nil, nil) },
	}
	root := &vdom.Component{
		Setup: func(props *reactivity.Object, ctx *vdom.SetupContext) any {
			renderer.Provide("theme", "dark")
			// A component does not see its own provides.
			got["self"] = renderer.Inject("theme")
			return nil
		},
		Render: func(ctx vdom.RenderContext) *vdom.VNode { return vdom.H(mid, nil, nil) },
	}

	app := h.r.CreateApp(root, nil).Provide("lang", "en")
	if err := app.Mount(h.container); err != nil {
		t.Fatal(err)
	}

	want := map[string]any{
		"theme":   "dark",
		"size":    2,
		"lang":    "en",
		"missing": "fallback",
		"static":  "plain",
		"none":    nil,
		"self":    nil,
	}
	for k, w := range want {
		if got[k] != w {
			t.Errorf("inject %s = %v, want %v", k, got[k], w)
		}
	}
	if renderer.Inject("theme") != nil {
		t.Error("Inject outside setup should return nil")
	}
}

func TestGetCurrentInstance(t *testing.T) {
	h := newHarness(t)
	var inSetup *renderer.Instance
	comp := &vdom.Component{
		Name: "Probe",
		Setup: func(props *reactivity.Object, ctx *vdom.SetupContext) any {
			inSetup = renderer.GetCurrentInstance()
			return nil
		},
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			if renderer.GetCurrentInstance() != nil {
				t.Error("current instance should be cleared after setup")
			}
			return vdom.Text("")
		},
	}
	app := mount(t, h, comp, nil)

	if inSetup == nil || inSetup.Name() != "Probe" {
		t.Fatalf("GetCurrentInstance in setup = %v", inSetup)
	}
	if inSetup != app.Instance() {
		t.Error("current instance should be the root instance")
	}
	if renderer.GetCurrentInstance() != nil {
		t.Error("GetCurrentInstance outside setup should be nil")
	}
}

func TestSetupReturnsRenderFunc(t *testing.T) {
	h := newHarness(t)
	comp := &vdom.Component{
		Setup: func(props *reactivity.Object, ctx *vdom.SetupContext) any {
			n := reactivity.NewRef(5)
			return vdom.RenderFunc(func(ctx vdom.RenderContext) *vdom.VNode {
				return vdom.H("b", nil, vdom.ToDisplayString(n.Value()))
			})
		},
	}
	mount(t, h, comp, nil)
	if got := h.html(); got != "<b>5</b>" {
		t.Errorf("html = %q, want %q", got, "<b>5</b>")
	}
}

func TestRenderContextResolution(t *testing.T) {
	h := newHarness(t)
	var ctxEl any
	comp := &vdom.Component{
		Setup: func(props *reactivity.Object, ctx *vdom.SetupContext) any {
			return map[string]any{"shadow": "state"}
		},
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			ctxEl = ctx.Get("$el")
			return vdom.H("p", nil, []any{ctx.Get("shadow"), "/", ctx.Get("fromProps")})
		},
	}
	app := mount(t, h, comp, vdom.Props{"shadow": "prop", "fromProps": "p"})

	if got := h.html(); got != "<p>state/p</p>" {
		t.Errorf("html = %q, want %q", got, "<p>state/p</p>")
	}
	// $el is read during the first render, before the root is mounted.
	if ctxEl != nil {
		t.Errorf("$el during first render = %v, want nil", ctxEl)
	}
	if app.Instance().El() != h.container.First("p") {
		t.Error("El() should be the root host node after mount")
	}
}

func TestRootTypeChange(t *testing.T) {
	h := newHarness(t)
	toggle := reactivity.NewRef(false)
	comp := &vdom.Component{
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			if toggle.Value() {
				return vdom.H("span", nil, "on")
			}
			return vdom.H("div", nil, "off")
		},
	}
	app := mount(t, h, comp, nil)

	toggle.Set(true)
	h.sched.Drain()

	if got := h.html(); got != "<span>on</span>" {
		t.Errorf("html = %q, want %q", got, "<span>on</span>")
	}
	if app.Instance().El() != h.container.First("span") {
		t.Error("instance El should follow the new root")
	}
}

func TestFragmentRoot(t *testing.T) {
	h := newHarness(t)
	items := reactivity.NewRef([]string{"a", "b"})
	comp := &vdom.Component{
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			var kids []*vdom.VNode
			for _, s := range items.Value() {
				kids = append(kids, vdom.H("i", vdom.Props{"key": s}, s))
			}
			return vdom.H(vdom.Fragment, nil, kids)
		},
	}
	mount(t, h, comp, nil)

	items.Set([]string{"b", "c", "a"})
	h.sched.Drain()

	if got := h.container.TextContent(); got != "bca" {
		t.Errorf("text = %q, want %q", got, "bca")
	}
}

func TestKeyedComponentsMoveWithoutRemount(t *testing.T) {
	h := newHarness(t)
	order := reactivity.NewRef([]string{"a", "b", "c"})
	setups := 0

	item := &vdom.Component{
		Name: "Item",
		Setup: func(props *reactivity.Object, ctx *vdom.SetupContext) any {
			setups++
			return nil
		},
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			return vdom.H("li", nil, ctx.Get("label"))
		},
	}
	list := &vdom.Component{
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			var kids []*vdom.VNode
			for _, k := range order.Value() {
				kids = append(kids, vdom.H(item, vdom.Props{"key": k, "label": k}, nil))
			}
			return vdom.H("ul", nil, kids)
		},
	}
	mount(t, h, list, nil)
	h.rec.Reset()

	order.Set([]string{"c", "a", "b"})
	h.sched.Drain()

	if setups != 3 {
		t.Errorf("setups = %d, want 3", setups)
	}
	if n := h.rec.Count(recorder.OpCreateElement); n != 0 {
		t.Errorf("createElement calls = %d, want 0", n)
	}
	if got := h.container.TextContent(); got != "cab" {
		t.Errorf("text = %q, want %q", got, "cab")
	}
}

func TestUnmountStopsEffects(t *testing.T) {
	h := newHarness(t)
	state := reactivity.Reactive(map[string]any{"n": 0}).(*reactivity.Object)
	renders := 0
	child := &vdom.Component{
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			renders++
			return vdom.H("i", nil, vdom.ToDisplayString(state.Get("n")))
		},
	}
	root := &vdom.Component{
		Render: func(ctx vdom.RenderContext) *vdom.VNode {
			return vdom.H("div", nil, vdom.H(child, nil, nil))
		},
	}
	app := mount(t, h, root, nil)
	if reactivity.SubscriberCount(state, "n") != 1 {
		t.Fatalf("subscribers = %d, want 1", reactivity.SubscriberCount(state, "n"))
	}

	app.Unmount()

	if len(h.container.Children) != 0 {
		t.Errorf("container children = %v, want none", h.container.Children)
	}
	if reactivity.SubscriberCount(state, "n") != 0 {
		t.Errorf("subscribers after unmount = %d, want 0", reactivity.SubscriberCount(state, "n"))
	}
	state.Set("n", 1)
	if h.sched.Pending() {
		t.Error("no update should be queued after unmount")
	}
	if renders != 1 {
		t.Errorf("renders = %d, want 1", renders)
	}
}

func TestMountErrors(t *testing.T) {
	t.Run("missing render", func(t *testing.T) {
		h := newHarness(t)
		err := h.r.CreateApp(&vdom.Component{Name: "Empty"}, nil).Mount(h.container)
		if !rerrors.HasCode(err, "R001") {
			t.Errorf("Mount() error = %v, want R001", err)
		}
	})

	t.Run("template without compiler", func(t *testing.T) {
		renderer.RegisterCompiler(nil)
		h := newHarness(t)
		err := h.r.CreateApp(&vdom.Component{Template: "<p>x</p>"}, nil).Mount(h.container)
		if !rerrors.HasCode(err, "R002") {
			t.Errorf("Mount() error = %v, want R002", err)
		}
		if !errors.Is(err, renderer.ErrNoCompiler) {
			t.Errorf("Mount() error = %v, want ErrNoCompiler in chain", err)
		}
	})

	t.Run("already mounted", func(t *testing.T) {
		h := newHarness(t)
		app := mount(t, h, &vdom.Component{
			Render: func(vdom.RenderContext) *vdom.VNode { return nil },
		}, nil)
		if err := app.Mount(h.container); !errors.Is(err, renderer.ErrAlreadyMounted) {
			t.Errorf("second Mount() error = %v, want ErrAlreadyMounted", err)
		}
	})

	t.Run("user panics propagate", func(t *testing.T) {
		h := newHarness(t)
		defer func() {
			if r := recover(); r != "boom" {
				t.Errorf("recover() = %v, want boom", r)
			}
		}()
		_ = h.r.CreateApp(&vdom.Component{
			Render: func(vdom.RenderContext) *vdom.VNode { panic("boom") },
		}, nil).Mount(h.container)
	})
}

func TestTemplateCompilerIsCachedPerComponent(t *testing.T) {
	calls := 0
	renderer.RegisterCompiler(func(template string) (vdom.RenderFunc, error) {
		calls++
		return func(ctx vdom.RenderContext) *vdom.VNode {
			return vdom.H("p", nil, template)
		}, nil
	})
	defer renderer.RegisterCompiler(nil)

	comp := &vdom.Component{Template: "tpl"}
	for i := 0; i < 2; i++ {
		h := newHarness(t)
		mount(t, h, comp, nil)
		if got := h.html(); got != "<p>tpl</p>" {
			t.Errorf("html = %q, want %q", got, "<p>tpl</p>")
		}
	}
	if calls != 1 {
		t.Errorf("compile calls = %d, want 1", calls)
	}
}

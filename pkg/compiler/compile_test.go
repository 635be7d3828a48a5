package compiler_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/compiler"
	"github.com/vango-dev/reactor/pkg/host/memdom"
	"github.com/vango-dev/reactor/pkg/reactivity"
	"github.com/vango-dev/reactor/pkg/renderer"
	"github.com/vango-dev/reactor/pkg/scheduler"
	"github.com/vango-dev/reactor/pkg/vdom"
)

type fakeContext map[string]any

func (c fakeContext) Get(key string) any { return c[key] }
func (c fakeContext) Set(key string, value any) { c[key] = value }
func (c fakeContext) Props() *reactivity.Object { return nil }
func (c fakeContext) Slots() vdom.NormalizedSlots { return nil }
func (c fakeContext) El() any { return nil }
func (c fakeContext) Emit(event string, args ...any) {}

func render(t *testing.T, template string, ctx fakeContext) *vdom.VNode {
	t.Helper()
	fn, err := compiler.Compile(template)
	if err != nil {
		t.Fatalf("Compile(%q) error = %v", template, err)
	}
	return fn(ctx)
}

func TestTransformMergesText(t *testing.T) {
	root, err := compiler.Parse("<div>hi, {{message}}<b>!</b>{{a}}{{b}}</div>")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := compiler.Transform(root); err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	div := root.Children[0]
	var types []compiler.NodeType
	for _, c := range div.Children {
		types = append(types, c.Type)
	}
	want := []compiler.NodeType{compiler.NodeCompound, compiler.NodeElement, compiler.NodeCompound}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("children types mismatch (-want +got):\n%s", diff)
	}
	if n := len(div.Children[0].Children); n != 2 {
		t.Errorf("first compound has %d parts, want 2", n)
	}

	wantHelpers := []string{compiler.HelperToDisplayString, compiler.HelperCreateVNode}
	if diff := cmp.Diff(wantHelpers, root.Helpers); diff != "" {
		t.Errorf("Helpers mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformRejectsExpressions(t *testing.T) {
	for _, tmpl := range []string{
		"{{ a + b }}",
		"{{ call() }}",
		"{{ a..b }}",
		"{{ 1abc }}",
		`<p :title="x || y"></p>`,
	} {
		_, err := compiler.Compile(tmpl)
		if !errors.HasCode(err, "C004") {
			t.Errorf("Compile(%q) error = %v, want C004", tmpl, err)
		}
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		template string
		want     string
	}{
		{
			template: "<div>hi, {{message}}</div>",
			want: "// helpers: toDisplayString, createElementVNode\n" +
				"func render(ctx vdom.RenderContext) *vdom.VNode {\n" +
				"\treturn vdom.H(\"div\", nil, \"hi, \"+vdom.ToDisplayString(ctx.Get(\"message\")))\n" +
				"}\n",
		},
		{
			template: `<a href="/x" :title="link.title" @click="go"></a><br/>`,
			want: "// helpers: createElementVNode, Fragment\n" +
				"func render(ctx vdom.RenderContext) *vdom.VNode {\n" +
				"\treturn vdom.H(vdom.Fragment, nil, []*vdom.VNode{" +
				"vdom.H(\"a\", vdom.Props{\"href\": \"/x\", \"title\": lookup(ctx, \"link.title\"), \"onClick\": ctx.Get(\"go\")}, nil), " +
				"vdom.H(\"br\", nil, nil)})\n" +
				"}\n",
		},
	}

	for _, tt := range tests {
		root, err := compiler.Parse(tt.template)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.template, err)
		}
		if err := compiler.Transform(root); err != nil {
			t.Fatalf("Transform(%q) error = %v", tt.template, err)
		}
		if diff := cmp.Diff(tt.want, compiler.Generate(root)); diff != "" {
			t.Errorf("Generate(%q) mismatch (-want +got):\n%s", tt.template, diff)
		}
	}
}

func TestCompileRender(t *testing.T) {
	vnode := render(t, "<div>hi, {{message}}</div>", fakeContext{"message": "mini-vue"})

	if vnode.Tag() != "div" {
		t.Fatalf("Tag() = %q, want div", vnode.Tag())
	}
	if got := vnode.Text(); got != "hi, mini-vue" {
		t.Errorf("Text() = %q, want %q", got, "hi, mini-vue")
	}
	if !vnode.ShapeFlag.Has(vdom.ShapeTextChildren) {
		t.Errorf("ShapeFlag = %b, want text children", vnode.ShapeFlag)
	}
}

func TestCompilePaths(t *testing.T) {
	state := reactivity.Reactive(map[string]any{
		"user":  map[string]any{"name": "ada"},
		"items": []any{"a", "b"},
	})
	ctx := fakeContext{
		"state": state,
		"count": reactivity.NewRef(3),
		"plain": map[string]any{"list": []any{"x"}},
	}

	tests := []struct {
		template string
		want     string
	}{
		{"<p>{{ state.user.name }} {{count}}</p>", "ada 3"},
		{"<p>{{ state.items.1 }}</p>", "b"},
		{"<p>{{ state.items.length }}</p>", "2"},
		{"<p>{{ plain.list.0 }}</p>", "x"},
		{"<p>[{{ state.missing.deep }}]</p>", "[]"},
		{"<p>[{{ nothing }}]</p>", "[]"},
	}
	for _, tt := range tests {
		if got := render(t, tt.template, ctx).Text(); got != tt.want {
			t.Errorf("%s rendered %q, want %q", tt.template, got, tt.want)
		}
	}
}

func TestCompileRoots(t *testing.T) {
	if v := render(t, "", fakeContext{}); v != nil {
		t.Errorf("empty template rendered %v, want nil", v)
	}

	text := render(t, "just {{ word }}", fakeContext{"word": "text"})
	if text.Kind() != vdom.KindText || text.Text() != "just text" {
		t.Errorf("text root = %v %q, want text %q", text.Kind(), text.Text(), "just text")
	}

	frag := render(t, "<h1>a</h1><p>b</p>", fakeContext{})
	if frag.Kind() != vdom.KindFragment {
		t.Fatalf("Kind() = %v, want fragment", frag.Kind())
	}
	var tags []string
	for _, c := range frag.ChildNodes() {
		tags = append(tags, c.Tag())
	}
	if diff := cmp.Diff([]string{"h1", "p"}, tags); diff != "" {
		t.Errorf("fragment children mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileProps(t *testing.T) {
	clicked := false
	ctx := fakeContext{
		"label": reactivity.NewRef("go"),
		"onGo":  func() { clicked = true },
	}
	fn, err := compiler.Compile(`<button type="button" :title="label" @click="onGo">x</button>`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	first := fn(ctx)
	if first.Props["type"] != "button" || first.Props["title"] != "go" {
		t.Errorf("Props = %v", first.Props)
	}
	if !vdom.CallHandler(first.Props["onClick"]) || !clicked {
		t.Errorf("onClick handler was not bound")
	}

	second := fn(ctx)
	second.Props["type"] = "submit"
	if first.Props["type"] != "button" {
		t.Errorf("renders share a props map")
	}
}

func TestTemplateComponent(t *testing.T) {
	compiler.Register()

	doc := memdom.New()
	sched := scheduler.New()
	r := renderer.New(doc, renderer.WithScheduler(sched))
	container := doc.CreateContainer("div")

	count := reactivity.NewRef(0)
	counter := &vdom.Component{
		Name: "Counter",
		Template: `<div class="counter">
			<span>count: {{ count }}</span>
			<button @click="inc">+</button>
		</div>`,
		Setup: func(props *reactivity.Object, ctx *vdom.SetupContext) any {
			return map[string]any{
				"count": count,
				"inc":   func() { count.Set(count.Peek() + 1) },
			}
		},
	}

	if err := r.CreateApp(counter, nil).Mount(container); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	want := `<div class="counter"><span>count: 0</span><button>+</button></div>`
	if got := container.InnerHTML(); got != want {
		t.Fatalf("html = %q, want %q", got, want)
	}

	if !doc.Dispatch(container.First("button"), "click") {
		t.Fatal("button has no click listener")
	}
	sched.Drain()

	want = `<div class="counter"><span>count: 1</span><button>+</button></div>`
	if got := container.InnerHTML(); got != want {
		t.Errorf("html after click = %q, want %q", got, want)
	}
}

func TestTemplateCompileErrorFailsMount(t *testing.T) {
	compiler.Register()

	doc := memdom.New()
	r := renderer.New(doc, renderer.WithScheduler(scheduler.New()))
	broken := &vdom.Component{Name: "Broken", Template: "<div>{{ oops"}

	err := r.CreateApp(broken, nil).Mount(doc.CreateContainer("div"))
	if !errors.HasCode(err, "R002") {
		t.Fatalf("Mount() error = %v, want R002", err)
	}
	if !errors.HasCode(err, "C001") {
		t.Errorf("Mount() error = %v, want it to wrap C001", err)
	}
}

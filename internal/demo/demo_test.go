package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/reactor/pkg/compiler"
	"github.com/vango-dev/reactor/pkg/host/memdom"
	"github.com/vango-dev/reactor/pkg/renderer"
	"github.com/vango-dev/reactor/pkg/scheduler"
	"github.com/vango-dev/reactor/pkg/vdom"
)

type page struct {
	doc   *memdom.Document
	sched *scheduler.Scheduler
	root  *memdom.Node
}

func mountApp(t *testing.T, props vdom.Props) *page {
	t.Helper()
	compiler.Register()
	doc := memdom.New()
	sched := scheduler.New()
	r := renderer.New(doc, renderer.WithScheduler(sched))
	root := doc.CreateContainer("body")
	require.NoError(t, r.CreateApp(TodoApp, props).Mount(root))
	return &page{doc: doc, sched: sched, root: root}
}

func (p *page) fire(t *testing.T, n *memdom.Node, event string, args ...any) {
	t.Helper()
	require.NotNil(t, n)
	require.True(t, p.doc.Dispatch(n, event, args...), "no %s listener on %s", event, n)
	p.sched.Drain()
}

func (p *page) add(t *testing.T, title string) {
	t.Helper()
	input := p.root.First("input")
	p.fire(t, input, "input", title)
	assert.Equal(t, title, input.Attrs["value"])
	p.fire(t, p.root.First("div").First("button"), "click")
}

func (p *page) titles() []string {
	var out []string
	for _, li := range p.root.ByTag("li") {
		out = append(out, li.First("span").TextContent())
	}
	return out
}

func TestTodoAppMount(t *testing.T) {
	p := mountApp(t, nil)

	assert.Equal(t, "Todos", p.root.First("h1").TextContent())
	assert.Equal(t, "0 left", p.root.First("footer").TextContent())
	assert.Empty(t, p.root.ByTag("li"))

	main := p.root.First("main")
	require.Len(t, main.Children, 2)
	counter := main.Children[1]
	assert.Equal(t, "counter", counter.Attrs["class"])
	assert.Equal(t, "count: 0", counter.First("span").TextContent())
}

func TestTodoAppAddToggleRemove(t *testing.T) {
	p := mountApp(t, nil)

	p.add(t, "milk")
	require.Equal(t, []string{"milk"}, p.titles())
	assert.Equal(t, "1 left", p.root.First("footer").TextContent())
	assert.Equal(t, "", p.root.First("input").Attrs["value"], "draft is cleared after adding")

	li := p.root.First("li")
	assert.Equal(t, "todo light", li.Attrs["class"])

	p.fire(t, li.First("span"), "click")
	assert.Equal(t, "todo light done", li.Attrs["class"])
	assert.Equal(t, "0 left", p.root.First("footer").TextContent())

	p.fire(t, li.First("button"), "click")
	assert.Empty(t, p.titles())
}

func TestTodoAppIgnoresBlankDraft(t *testing.T) {
	p := mountApp(t, nil)
	p.add(t, "   ")
	assert.Empty(t, p.titles())
}

func TestTodoAppKeyedRemovalKeepsNodes(t *testing.T) {
	p := mountApp(t, nil)
	for _, title := range []string{"a", "b", "c"} {
		p.add(t, title)
	}
	require.Equal(t, []string{"a", "b", "c"}, p.titles())
	items := p.root.ByTag("li")
	first, last := items[0], items[2]

	p.fire(t, items[1].First("button"), "click")
	assert.Equal(t, []string{"a", "c"}, p.titles())

	after := p.root.ByTag("li")
	assert.Same(t, first, after[0])
	assert.Same(t, last, after[1])
	assert.Equal(t, "2 left", p.root.First("footer").TextContent())
}

func TestTodoAppThemeAndTitleProps(t *testing.T) {
	p := mountApp(t, vdom.Props{"title": "Groceries", ThemeKey: "dark"})
	assert.Equal(t, "Groceries", p.root.First("h1").TextContent())

	p.add(t, "eggs")
	assert.Equal(t, "todo dark", p.root.First("li").Attrs["class"])
}

func TestCounterTemplate(t *testing.T) {
	compiler.Register()
	doc := memdom.New()
	sched := scheduler.New()
	r := renderer.New(doc, renderer.WithScheduler(sched))
	root := doc.CreateContainer("div")
	require.NoError(t, r.CreateApp(Counter, nil).Mount(root))

	assert.Equal(t, `<div class="counter"><span>count: 0</span><button>+</button></div>`, root.InnerHTML())
	require.True(t, doc.Dispatch(root.First("button"), "click"))
	sched.Drain()
	assert.Equal(t, `<div class="counter"><span>count: 1</span><button>+</button></div>`, root.InnerHTML())
}

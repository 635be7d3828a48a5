// Package demo holds the counter and todo components served by
// `reactor serve`. They cover the component features end to end: a
// compiled template, setup state, computed values, provide/inject, slots,
// emitted events and a keyed list.
package demo

import (
	"fmt"
	"strings"

	"github.com/vango-dev/reactor/pkg/reactivity"
	"github.com/vango-dev/reactor/pkg/renderer"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// ThemeKey is the injection key for the page theme.
const ThemeKey = "theme"

// Todo is one todo list entry.
type Todo struct {
	ID    int
	Title string
	Done  bool
}

// Counter is a template component. Mounting it requires a registered
// template compiler.
var Counter = &vdom.Component{
	Name: "Counter",
	Template: `<div class="counter">
  <span>count: {{ count }}</span>
  <button @click="inc">+</button>
</div>`,
	Setup: func(props *reactivity.Object, ctx *vdom.SetupContext) any {
		count := reactivity.NewRef(0)
		return map[string]any{
			"count": count,
			"inc":   func() { count.Set(count.Peek() + 1) },
		}
	},
}

// Panel frames its default slot under a header slot.
var Panel = &vdom.Component{
	Name: "Panel",
	Render: func(ctx vdom.RenderContext) *vdom.VNode {
		return vdom.H("section", vdom.Props{"class": "panel"}, []*vdom.VNode{
			vdom.H("header", nil, []*vdom.VNode{vdom.RenderSlot(ctx.Slots(), "header", nil)}),
			vdom.RenderSlot(ctx.Slots(), "default", nil),
		})
	},
}

// TodoInput owns the draft text and emits "add-todo" with it.
var TodoInput = &vdom.Component{
	Name: "TodoInput",
	Setup: func(props *reactivity.Object, ctx *vdom.SetupContext) any {
		draft := reactivity.NewRef("")
		return map[string]any{
			"draft":    draft,
			"setDraft": func(v string) { draft.Set(v) },
			"submit": func() {
				title := strings.TrimSpace(draft.Peek())
				if title == "" {
					return
				}
				ctx.Emit("add-todo", title)
				draft.Set("")
			},
		}
	},
	Render: func(ctx vdom.RenderContext) *vdom.VNode {
		return vdom.H("div", vdom.Props{"class": "todo-input"}, []*vdom.VNode{
			vdom.H("input", vdom.Props{
				"placeholder": "What needs doing?",
				"value":       ctx.Get("draft"),
				"onInput":     ctx.Get("setDraft"),
			}, nil),
			vdom.H("button", vdom.Props{"onClick": ctx.Get("submit")}, "Add"),
		})
	},
}

// TodoItem renders one todo and emits "toggle" and "remove" with its id.
var TodoItem = &vdom.Component{
	Name: "TodoItem",
	Setup: func(props *reactivity.Object, ctx *vdom.SetupContext) any {
		theme := renderer.Inject(ThemeKey, "light")
		return map[string]any{
			"theme":  theme,
			"toggle": func() { ctx.Emit("toggle", props.Get("id")) },
			"remove": func() { ctx.Emit("remove", props.Get("id")) },
		}
	},
	Render: func(ctx vdom.RenderContext) *vdom.VNode {
		class := "todo " + vdom.ToDisplayString(ctx.Get("theme"))
		if done, _ := ctx.Get("done").(bool); done {
			class += " done"
		}
		return vdom.H("li", vdom.Props{"class": class}, []*vdom.VNode{
			vdom.H("span", vdom.Props{"onClick": ctx.Get("toggle")}, vdom.ToDisplayString(ctx.Get("title"))),
			vdom.H("button", vdom.Props{"class": "remove", "onClick": ctx.Get("remove")}, "x"),
		})
	},
}

// TodoApp is the root component served by the live server. The "title"
// prop heads the page and "theme" is provided to every TodoItem.
var TodoApp = &vdom.Component{
	Name: "TodoApp",
	Setup: func(props *reactivity.Object, ctx *vdom.SetupContext) any {
		theme := "light"
		if t, ok := props.Get(ThemeKey).(string); ok && t != "" {
			theme = t
		}
		renderer.Provide(ThemeKey, theme)

		todos := reactivity.NewRef([]Todo(nil))
		nextID := 1
		remaining := reactivity.NewComputed(func() int {
			n := 0
			for _, t := range todos.Value() {
				if !t.Done {
					n++
				}
			}
			return n
		})

		update := func(id any, fn func([]Todo, int) []Todo) {
			list := todos.Peek()
			for i, t := range list {
				if t.ID == id {
					todos.Set(fn(append([]Todo(nil), list...), i))
					return
				}
			}
		}

		return map[string]any{
			"todos":     todos,
			"remaining": remaining,
			"add": func(title string) {
				list := append(append([]Todo(nil), todos.Peek()...), Todo{ID: nextID, Title: title})
				nextID++
				todos.Set(list)
			},
			"toggle": func(id any) {
				update(id, func(l []Todo, i int) []Todo {
					l[i].Done = !l[i].Done
					return l
				})
			},
			"remove": func(id any) {
				update(id, func(l []Todo, i int) []Todo {
					return append(l[:i], l[i+1:]...)
				})
			},
		}
	},
	Render: func(ctx vdom.RenderContext) *vdom.VNode {
		list, _ := ctx.Get("todos").([]Todo)
		items := make([]*vdom.VNode, 0, len(list))
		for _, t := range list {
			items = append(items, vdom.H(TodoItem, vdom.Props{
				"key":      t.ID,
				"id":       t.ID,
				"title":    t.Title,
				"done":     t.Done,
				"onToggle": ctx.Get("toggle"),
				"onRemove": ctx.Get("remove"),
			}, nil))
		}

		left, _ := ctx.Get("remaining").(int)
		title := vdom.ToDisplayString(ctx.Get("title"))
		if title == "" {
			title = "Todos"
		}

		return vdom.H("main", vdom.Props{"class": "todo-app"}, []*vdom.VNode{
			vdom.H(Panel, nil, vdom.Slots{
				"header": func(vdom.Props) any { return vdom.H("h1", nil, title) },
				"default": func(vdom.Props) any {
					return []*vdom.VNode{
						vdom.H(TodoInput, vdom.Props{"onAddTodo": ctx.Get("add")}, nil),
						vdom.H("ul", nil, items),
						vdom.H("footer", nil, fmt.Sprintf("%d left", left)),
					}
				},
			}),
			vdom.H(Counter, nil, nil),
		})
	},
}

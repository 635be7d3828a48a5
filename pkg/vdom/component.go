package vdom

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/vango-dev/reactor/pkg/reactivity"
)

// RenderFunc produces a component's vnode tree. It runs inside the
// component's render effect, so every reactive read it performs subscribes
// the component to updates.
type RenderFunc func(ctx RenderContext) *VNode

// Component is a component definition.
//
// Setup runs once per mounted instance. It may return a map[string]any or
// *reactivity.Object of state (refs inside are unwrapped on read), or a
// RenderFunc. When no render function results from setup, Render is used,
// and failing that Template is compiled by the registered compiler.
type Component struct {
	Name     string
	Setup    func(props *reactivity.Object, ctx *SetupContext) any
	Render   RenderFunc
	Template string
}

// SetupContext is passed to Setup.
type SetupContext struct {
	// Emit calls the parent's handler for event. "add-todo" resolves to the
	// "onAddTodo" prop. Unknown events are ignored.
	Emit func(event string, args ...any)

	// Slots are the component's normalized slots.
	Slots NormalizedSlots
}

// RenderContext is the view of a component instance available to its
// render function. Get resolves setup state first, then props, then the
// special keys "$el", "$slots" and "$props".
type RenderContext interface {
	Get(key string) any
	Set(key string, value any)
	Props() *reactivity.Object
	Slots() NormalizedSlots
	El() any
	Emit(event string, args ...any)
}

// Slot is a user-provided slot function. It may return a *VNode, a []*VNode,
// a string or nil.
type Slot func(props Props) any

// Slots maps slot names to slot functions. It is passed as component
// children.
type Slots map[string]Slot

// NormalizedSlots maps slot names to functions returning vnode arrays.
type NormalizedSlots map[string]func(props Props) []*VNode

// NormalizeSlots wraps every slot so it returns a []*VNode.
func NormalizeSlots(slots Slots) NormalizedSlots {
	if slots == nil {
		return nil
	}
	out := make(NormalizedSlots, len(slots))
	for name, slot := range slots {
		slot := slot
		out[name] = func(props Props) []*VNode {
			return NormalizeChildren(slot(props))
		}
	}
	return out
}

// RenderSlot renders the named slot into a Fragment. It returns nil when the
// slot does not exist.
func RenderSlot(slots NormalizedSlots, name string, props Props) *VNode {
	slot, ok := slots[name]
	if !ok || slot == nil {
		return nil
	}
	return H(Fragment, nil, slot(props))
}

// ToDisplayString converts an interpolated value to text. nil renders as "".
func ToDisplayString(v any) string {
	switch t := reactivity.UnRef(v).(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case *reactivity.Object, *reactivity.Array:
		return fmt.Sprint(reactivity.ToRaw(t))
	default:
		return fmt.Sprint(t)
	}
}

// CallHandler invokes an event handler value with args. It supports func(),
// func(any), func(...any) and func(string). It reports whether h was a
// callable handler.
func CallHandler(h any, args ...any) bool {
	switch fn := h.(type) {
	case func():
		fn()
	case func(any):
		var arg any
		if len(args) > 0 {
			arg = args[0]
		}
		fn(arg)
	case func(...any):
		fn(args...)
	case func(string):
		var arg string
		if len(args) > 0 {
			arg = ToDisplayString(args[0])
		}
		fn(arg)
	default:
		return false
	}
	return true
}

var eventProp = regexp.MustCompile(`^on[A-Z]`)

// EventName returns the event for a listener prop ("onClick" -> "click"),
// or "" when key is not a listener prop.
func EventName(key string) string {
	if !eventProp.MatchString(key) {
		return ""
	}
	rest := key[2:]
	r, size := utf8.DecodeRuneInString(rest)
	return string(unicode.ToLower(r)) + rest[size:]
}

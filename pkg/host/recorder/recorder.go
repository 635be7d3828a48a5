// Package recorder wraps a renderer.Host and logs every call made to it.
//
// Nodes are identified in the log by small integers assigned in order of
// first appearance, so a log can be compared against an expected sequence
// independent of the wrapped host's node representation.
package recorder

import (
	"fmt"
	"sync"

	"github.com/vango-dev/reactor/pkg/renderer"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Op names a host operation.
type Op string

const (
	OpCreateElement  Op = "createElement"
	OpCreateText     Op = "createText"
	OpSetText        Op = "setText"
	OpSetElementText Op = "setElementText"
	OpPatchProp      Op = "patchProp"
	OpInsert         Op = "insert"
	OpRemove         Op = "remove"
)

// Call is one logged host call. Unused fields are zero. Node ids are 1-based;
// 0 means no node.
type Call struct {
	Op     Op
	Node   int
	Parent int
	Anchor int
	Tag    string
	Text   string
	Key    string
	Value  string
}

func (c Call) String() string {
	switch c.Op {
	case OpCreateElement:
		return fmt.Sprintf("%s #%d <%s>", c.Op, c.Node, c.Tag)
	case OpCreateText, OpSetText, OpSetElementText:
		return fmt.Sprintf("%s #%d %q", c.Op, c.Node, c.Text)
	case OpPatchProp:
		return fmt.Sprintf("%s #%d %s=%s", c.Op, c.Node, c.Key, c.Value)
	case OpInsert:
		return fmt.Sprintf("%s #%d into #%d before #%d", c.Op, c.Node, c.Parent, c.Anchor)
	default:
		return fmt.Sprintf("%s #%d", c.Op, c.Node)
	}
}

// Recorder is a renderer.Host decorator.
type Recorder struct {
	host renderer.Host

	mu    sync.Mutex
	ids   map[any]int
	calls []Call
}

var _ renderer.Host = (*Recorder)(nil)

// New wraps host.
func New(host renderer.Host) *Recorder {
	return &Recorder{host: host, ids: make(map[any]int)}
}

// Unwrap returns the wrapped host.
func (r *Recorder) Unwrap() renderer.Host {
	return r.host
}

// Calls returns a copy of the log.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many logged calls have op.
func (r *Recorder) Count(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset clears the log. Node ids are kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

// ID returns the log id of node, assigning one if needed.
func (r *Recorder) ID(node any) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idLocked(node)
}

func (r *Recorder) idLocked(node any) int {
	if node == nil {
		return 0
	}
	if id, ok := r.ids[node]; ok {
		return id
	}
	id := len(r.ids) + 1
	r.ids[node] = id
	return id
}

func (r *Recorder) log(c Call, nodes ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 3)
	for i, n := range nodes {
		ids[i] = r.idLocked(n)
	}
	c.Node, c.Parent, c.Anchor = ids[0], ids[1], ids[2]
	r.calls = append(r.calls, c)
}

func display(v any) string {
	switch v.(type) {
	case nil:
		return "<nil>"
	case func(), func(any), func(...any), func(string):
		return "<func>"
	}
	return vdom.ToDisplayString(v)
}

func (r *Recorder) CreateElement(tag string) any {
	n := r.host.CreateElement(tag)
	r.log(Call{Op: OpCreateElement, Tag: tag}, n)
	return n
}

func (r *Recorder) CreateText(text string) any {
	n := r.host.CreateText(text)
	r.log(Call{Op: OpCreateText, Text: text}, n)
	return n
}

func (r *Recorder) SetText(node any, text string) {
	r.log(Call{Op: OpSetText, Text: text}, node)
	r.host.SetText(node, text)
}

func (r *Recorder) SetElementText(el any, text string) {
	r.log(Call{Op: OpSetElementText, Text: text}, el)
	r.host.SetElementText(el, text)
}

func (r *Recorder) PatchProp(el any, key string, prev, next any) {
	r.log(Call{Op: OpPatchProp, Key: key, Value: display(next)}, el)
	r.host.PatchProp(el, key, prev, next)
}

func (r *Recorder) Insert(child, parent, anchor any) {
	r.log(Call{Op: OpInsert}, child, parent, anchor)
	r.host.Insert(child, parent, anchor)
}

func (r *Recorder) Remove(child any) {
	r.log(Call{Op: OpRemove}, child)
	r.host.Remove(child)
}

func (r *Recorder) ParentNode(node any) any {
	return r.host.ParentNode(node)
}

func (r *Recorder) NextSibling(node any) any {
	return r.host.NextSibling(node)
}

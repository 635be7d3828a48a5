// Package remote implements renderer.Host for a document that lives in a
// browser on the other end of a live session.
//
// Every host call becomes a protocol.Op addressed by a numeric node id.
// Ops are buffered until Flush packs them into patch frames. The host
// keeps a mirror of the tree so the renderer's ParentNode and NextSibling
// queries are answered locally, and it keeps event handlers so client
// events can be dispatched by node id.
package remote

import (
	"log/slog"
	"sync"

	"github.com/vango-dev/reactor/pkg/protocol"
	"github.com/vango-dev/reactor/pkg/renderer"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// RootID is the id of the container the client mounts into.
const RootID uint64 = 1

// Node is a mirrored node.
type Node struct {
	id       uint64
	tag      string
	parent   *Node
	children []*Node
}

// ID returns the node's wire id.
func (n *Node) ID() uint64 { return n.id }

// Tag returns the element tag, or "" for text nodes.
func (n *Node) Tag() string { return n.tag }

func (n *Node) indexOf(c *Node) int {
	for i, x := range n.children {
		if x == c {
			return i
		}
	}
	return -1
}

func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	if i := n.parent.indexOf(n); i >= 0 {
		n.parent.children = append(n.parent.children[:i], n.parent.children[i+1:]...)
	}
	n.parent = nil
}

type handlerKey struct {
	id    uint64
	event string
}

// Option configures a Host.
type Option func(*Host)

// WithMaxPayload limits the payload size of frames returned by Flush.
func WithMaxPayload(n int) Option {
	return func(h *Host) { h.maxPayload = n }
}

// WithLogger sets the logger for dispatch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// Host is a renderer.Host that records operations for a remote client.
type Host struct {
	mu         sync.Mutex
	nextID     uint64
	nodes      map[uint64]*Node
	root       *Node
	ops        []protocol.Op
	handlers   map[handlerKey]any
	seq        uint64
	maxPayload int
	logger     *slog.Logger
}

var _ renderer.Host = (*Host)(nil)

// New returns a host whose root container has RootID.
func New(opts ...Option) *Host {
	h := &Host{
		nextID:     RootID,
		nodes:      make(map[uint64]*Node),
		handlers:   make(map[handlerKey]any),
		maxPayload: protocol.MaxPayloadSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.root = &Node{id: RootID, tag: "root"}
	h.nodes[RootID] = h.root
	return h
}

// Root returns the container to mount into.
func (h *Host) Root() *Node {
	return h.root
}

// Lookup returns the live node with id.
func (h *Host) Lookup(id uint64) (*Node, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := h.nodes[id]
	return n, ok
}

// Len returns the number of live nodes, the root included.
func (h *Host) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.nodes)
}

// Pending returns the number of buffered ops.
func (h *Host) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ops)
}

// Flush returns the buffered ops packed into patch frames and clears the
// buffer. It returns nil when nothing is pending.
func (h *Host) Flush() []*protocol.Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.ops) == 0 {
		return nil
	}
	frames, next := protocol.PatchFrames(h.seq, h.ops, h.maxPayload)
	h.seq = next
	h.ops = nil
	return frames
}

// Ops returns the buffered ops and clears the buffer without framing them.
func (h *Host) Ops() []protocol.Op {
	h.mu.Lock()
	defer h.mu.Unlock()
	ops := h.ops
	h.ops = nil
	return ops
}

// Dispatch calls the handler registered for event on node id with detail.
// It reports whether a handler ran. Unknown nodes and events are ignored.
func (h *Host) Dispatch(id uint64, event, detail string) bool {
	h.mu.Lock()
	handler, ok := h.handlers[handlerKey{id, event}]
	h.mu.Unlock()
	if !ok {
		h.logger.Debug("remote: no handler", "id", id, "event", event)
		return false
	}
	return vdom.CallHandler(handler, detail)
}

func (h *Host) newNode(tag string) *Node {
	h.nextID++
	n := &Node{id: h.nextID, tag: tag}
	h.nodes[n.id] = n
	return n
}

// free forgets n and its subtree.
func (h *Host) free(n *Node) {
	for _, c := range n.children {
		c.parent = nil
		h.free(c)
	}
	n.children = nil
	delete(h.nodes, n.id)
	for k := range h.handlers {
		if k.id == n.id {
			delete(h.handlers, k)
		}
	}
}

func (h *Host) emit(op protocol.Op) {
	h.ops = append(h.ops, op)
}

func (h *Host) CreateElement(tag string) any {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.newNode(tag)
	h.emit(protocol.Op{Code: protocol.OpCreateElement, ID: n.id, Tag: tag})
	return n
}

func (h *Host) CreateText(text string) any {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.newNode("")
	h.emit(protocol.Op{Code: protocol.OpCreateText, ID: n.id, Value: text})
	return n
}

func (h *Host) SetText(node any, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.emit(protocol.Op{Code: protocol.OpSetText, ID: node.(*Node).id, Value: text})
}

func (h *Host) SetElementText(el any, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := el.(*Node)
	for _, c := range n.children {
		c.parent = nil
		h.free(c)
	}
	n.children = nil
	h.emit(protocol.Op{Code: protocol.OpSetElementText, ID: n.id, Value: text})
}

// PatchProp sends listener props as Listen/Unlisten and keeps the handler
// locally. Other props are sent as strings; nil and false remove them.
func (h *Host) PatchProp(el any, key string, prev, next any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := el.(*Node)

	if event := vdom.EventName(key); event != "" {
		k := handlerKey{n.id, event}
		_, listening := h.handlers[k]
		switch {
		case next == nil && listening:
			delete(h.handlers, k)
			h.emit(protocol.Op{Code: protocol.OpUnlisten, ID: n.id, Key: event})
		case next != nil:
			h.handlers[k] = next
			if !listening {
				h.emit(protocol.Op{Code: protocol.OpListen, ID: n.id, Key: event})
			}
		}
		return
	}

	if next == nil || next == false {
		h.emit(protocol.Op{Code: protocol.OpRemoveProp, ID: n.id, Key: key})
		return
	}
	h.emit(protocol.Op{Code: protocol.OpSetProp, ID: n.id, Key: key, Value: vdom.ToDisplayString(next)})
}

func (h *Host) Insert(child, parent, anchor any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, p := child.(*Node), parent.(*Node)
	c.detach()

	idx := len(p.children)
	var anchorID uint64
	if a, ok := anchor.(*Node); ok && a != nil {
		if i := p.indexOf(a); i >= 0 {
			idx = i
			anchorID = a.id
		}
	}
	p.children = append(p.children, nil)
	copy(p.children[idx+1:], p.children[idx:])
	p.children[idx] = c
	c.parent = p

	h.emit(protocol.Op{Code: protocol.OpInsert, ID: c.id, Parent: p.id, Anchor: anchorID})
}

func (h *Host) Remove(child any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := child.(*Node)
	if !ok || c == nil || c == h.root {
		return
	}
	c.detach()
	h.free(c)
	h.emit(protocol.Op{Code: protocol.OpRemove, ID: c.id})
}

func (h *Host) ParentNode(node any) any {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := node.(*Node)
	if !ok || n == nil || n.parent == nil {
		return nil
	}
	return n.parent
}

func (h *Host) NextSibling(node any) any {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := node.(*Node)
	if !ok || n == nil || n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n)
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

package reactivity

import (
	"reflect"
	"sync"
	"unsafe"
)

// iterateKey is the key tracked by operations that observe a target's key
// set rather than an individual key.
type iterateKeyType struct{}

// IterateKey is triggered when a key is added to or deleted from a target.
var IterateKey any = iterateKeyType{}

// lengthKey is the key tracked by Array.Len.
const lengthKey = "length"

// graph maps target identity -> key -> subscribers.
var graph = struct {
	mu      sync.Mutex
	targets map[unsafe.Pointer]map[any]*Dep
}{targets: make(map[unsafe.Pointer]map[any]*Dep)}

// identity returns the identity of a raw map or slice target, or nil for
// values that cannot be reactive. A slice is identified by its backing
// array, so every wrapper over the same elements shares subscriptions.
func identity(target any) unsafe.Pointer {
	switch t := target.(type) {
	case *Object:
		return identity(t.raw)
	case *Array:
		return identity(t.raw)
	case []any:
		return unsafe.Pointer(unsafe.SliceData(t))
	case map[string]any:
		if t == nil {
			return nil
		}
		return reflect.ValueOf(t).UnsafePointer()
	}
	return nil
}

func depFor(id unsafe.Pointer, key any, create bool) *Dep {
	graph.mu.Lock()
	defer graph.mu.Unlock()
	keys, ok := graph.targets[id]
	if !ok {
		if !create {
			return nil
		}
		keys = make(map[any]*Dep)
		graph.targets[id] = keys
	}
	d, ok := keys[key]
	if !ok {
		if !create {
			return nil
		}
		d = &Dep{}
		keys[key] = d
	}
	return d
}

// Track records that the active effect depends on key of target. It is a
// no-op when no effect is running.
func Track(target any, key any) {
	if activeEffect() == nil {
		return
	}
	id := identity(target)
	if id == nil {
		return
	}
	if DebugMode {
		getLogger().Debug("reactivity track", "key", key)
	}
	depFor(id, key, true).track()
}

// Trigger runs the scheduler, or re-runs the effect, of every effect that
// depends on key of target, in subscription order.
func Trigger(target any, key any) {
	id := identity(target)
	if id == nil {
		return
	}
	d := depFor(id, key, false)
	if d == nil {
		return
	}
	if DebugMode {
		getLogger().Debug("reactivity trigger", "key", key, "subscribers", d.Len())
	}
	d.trigger()
}

// SubscriberCount returns the number of effects subscribed to key of target.
func SubscriberCount(target any, key any) int {
	id := identity(target)
	if id == nil {
		return 0
	}
	d := depFor(id, key, false)
	if d == nil {
		return 0
	}
	return d.Len()
}

// Release drops every subscription recorded for target. Effects subscribed
// to it stay active but will not be notified of further writes.
func Release(target any) {
	id := identity(target)
	if id == nil {
		return
	}
	graph.mu.Lock()
	keys := graph.targets[id]
	delete(graph.targets, id)
	graph.mu.Unlock()
	for _, d := range keys {
		for _, e := range d.snapshot() {
			e.removeDep(d)
		}
	}
}

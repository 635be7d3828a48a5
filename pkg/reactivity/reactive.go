package reactivity

import (
	"fmt"
	"sort"
)

// mode selects how a wrapper treats reads and writes.
type mode uint8

const (
	modeReactive mode = iota
	modeReadonly
	modeShallowReadonly
)

func (m mode) readonly() bool {
	return m != modeReactive
}

// Object is a reactive view over a map[string]any. Reads through a reactive
// Object track the read key; writes trigger it. Readonly objects reject
// writes with a warning and never track.
type Object struct {
	raw  map[string]any
	mode mode
}

// Array is a reactive view over a []any. Element and length reads track;
// element writes trigger.
type Array struct {
	raw  []any
	mode mode
}

// Reactive returns a reactive wrapper for target. Maps become *Object and
// slices become *Array; nested maps and slices are wrapped on read. Any
// other value is returned unchanged with a warning.
//
// Each call constructs a new wrapper. Wrappers over the same raw value share
// subscriptions, so re-wrapping is harmless but wasteful.
func Reactive(target any) any {
	return wrap(target, modeReactive, "reactive")
}

// Readonly returns a deeply readonly wrapper for target. Reads do not track
// and writes are rejected with a warning.
func Readonly(target any) any {
	return wrap(target, modeReadonly, "readonly")
}

// ShallowReadonly returns a readonly wrapper whose nested values are
// returned unwrapped. Component props are exposed this way.
func ShallowReadonly(target any) any {
	return wrap(target, modeShallowReadonly, "shallowReadonly")
}

func wrap(target any, m mode, op string) any {
	switch t := ToRaw(target).(type) {
	case map[string]any:
		if t == nil {
			warn("nil map cannot be made "+op, "target", fmt.Sprintf("%T", target))
			return target
		}
		return &Object{raw: t, mode: m}
	case []any:
		return &Array{raw: t, mode: m}
	}
	warn("value cannot be made "+op, "target", fmt.Sprintf("%T", target))
	return target
}

// wrapNested wraps a value read from a container of mode m.
func wrapNested(v any, m mode) any {
	if m == modeShallowReadonly {
		return v
	}
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return v
		}
		return &Object{raw: t, mode: m}
	case []any:
		return &Array{raw: t, mode: m}
	}
	return v
}

// Get returns the value stored under key, or nil. Nested maps and slices are
// returned wrapped in the same mode as o.
func (o *Object) Get(key string) any {
	v, _ := o.Lookup(key)
	return v
}

// Lookup is like Get and also reports whether key is present.
func (o *Object) Lookup(key string) (any, bool) {
	if !o.mode.readonly() {
		Track(o.raw, key)
	}
	v, ok := o.raw[key]
	return wrapNested(v, o.mode), ok
}

// Has reports whether key is present. It tracks key like Get.
func (o *Object) Has(key string) bool {
	_, ok := o.Lookup(key)
	return ok
}

// Set stores value under key and triggers subscribers of key. Adding a new
// key also triggers key-set observers. Wrappers are unwrapped before storing.
func (o *Object) Set(key string, value any) {
	if o.mode.readonly() {
		warn("set operation on key failed: target is readonly", "key", key)
		return
	}
	_, existed := o.raw[key]
	o.raw[key] = ToRaw(value)
	Trigger(o.raw, key)
	if !existed {
		Trigger(o.raw, IterateKey)
	}
}

// Delete removes key and triggers its subscribers.
func (o *Object) Delete(key string) {
	if o.mode.readonly() {
		warn("delete operation on key failed: target is readonly", "key", key)
		return
	}
	if _, ok := o.raw[key]; !ok {
		return
	}
	delete(o.raw, key)
	Trigger(o.raw, key)
	Trigger(o.raw, IterateKey)
}

// Keys returns the object's keys in sorted order and tracks the key set.
func (o *Object) Keys() []string {
	if !o.mode.readonly() {
		Track(o.raw, IterateKey)
	}
	keys := make([]string, 0, len(o.raw))
	for k := range o.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys and tracks the key set.
func (o *Object) Len() int {
	if !o.mode.readonly() {
		Track(o.raw, IterateKey)
	}
	return len(o.raw)
}

// Raw returns the underlying map.
func (o *Object) Raw() map[string]any {
	return o.raw
}

// Len returns the number of elements and tracks the length.
func (a *Array) Len() int {
	if !a.mode.readonly() {
		Track(a.raw, lengthKey)
	}
	return len(a.raw)
}

// At returns element i, wrapped in the same mode as a. Out of range reads
// return nil.
func (a *Array) At(i int) any {
	if !a.mode.readonly() {
		Track(a.raw, i)
	}
	if i < 0 || i >= len(a.raw) {
		return nil
	}
	return wrapNested(a.raw[i], a.mode)
}

// Set replaces element i and triggers its subscribers. Out of range writes
// are ignored with a warning.
func (a *Array) Set(i int, value any) {
	if a.mode.readonly() {
		warn("set operation on index failed: target is readonly", "key", i)
		return
	}
	if i < 0 || i >= len(a.raw) {
		warn("set operation on index failed: out of range", "key", i, "length", len(a.raw))
		return
	}
	a.raw[i] = ToRaw(value)
	Trigger(a.raw, i)
}

// Items returns every element wrapped like At. It tracks the length and
// each index.
func (a *Array) Items() []any {
	n := a.Len()
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = a.At(i)
	}
	return out
}

// Raw returns the underlying slice.
func (a *Array) Raw() []any {
	return a.raw
}

// IsReactive reports whether v is a mutable reactive wrapper.
func IsReactive(v any) bool {
	switch t := v.(type) {
	case *Object:
		return t.mode == modeReactive
	case *Array:
		return t.mode == modeReactive
	}
	return false
}

// IsReadonly reports whether v is a readonly or shallow readonly wrapper.
func IsReadonly(v any) bool {
	switch t := v.(type) {
	case *Object:
		return t.mode.readonly()
	case *Array:
		return t.mode.readonly()
	}
	return false
}

// IsProxy reports whether v is any kind of wrapper.
func IsProxy(v any) bool {
	return IsReactive(v) || IsReadonly(v)
}

// ToRaw returns the plain value behind a wrapper, or v itself.
func ToRaw(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.raw
	case *Array:
		return t.raw
	}
	return v
}

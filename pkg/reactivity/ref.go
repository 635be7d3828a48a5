package reactivity

import "fmt"

// refLike is implemented by Ref and Computed so ProxyRefs and UnRef can
// read and write through any cell regardless of its type parameter.
type refLike interface {
	refValue() any
	setRefValue(v any)
}

// Ref is a single reactive value with its own subscriber set.
type Ref[T any] struct {
	dep   Dep
	raw   T
	value any
}

// NewRef returns a ref holding v. Map and slice values are additionally
// kept as a reactive wrapper, returned by Get.
func NewRef[T any](v T) *Ref[T] {
	r := &Ref[T]{raw: v}
	r.value = convert(v)
	return r
}

// convert wraps maps and slices reactively and leaves other values as-is.
func convert(v any) any {
	switch t := ToRaw(v).(type) {
	case map[string]any:
		if t != nil {
			return Reactive(v)
		}
	case []any:
		return Reactive(v)
	}
	return v
}

// Value returns the raw value and tracks the ref.
func (r *Ref[T]) Value() T {
	r.dep.track()
	return r.raw
}

// Get returns the stored value, reactive-wrapped if it is a map or slice,
// and tracks the ref.
func (r *Ref[T]) Get() any {
	r.dep.track()
	return r.value
}

// Set replaces the value. Subscribers are triggered only when the new value
// differs from the old one by identity.
func (r *Ref[T]) Set(v T) {
	if SameValue(r.raw, v) {
		return
	}
	r.raw = v
	r.value = convert(v)
	r.dep.trigger()
}

// Peek returns the raw value without tracking.
func (r *Ref[T]) Peek() T {
	return r.raw
}

func (r *Ref[T]) refValue() any {
	return r.Get()
}

func (r *Ref[T]) setRefValue(v any) {
	t, ok := v.(T)
	if !ok && v != nil {
		warn("ref set ignored: value has wrong type", "value", fmt.Sprintf("%T", v))
		return
	}
	r.Set(t)
}

// IsRef reports whether v is a Ref or Computed.
func IsRef(v any) bool {
	_, ok := v.(refLike)
	return ok
}

// UnRef returns the value of a ref (tracking it) or v itself.
func UnRef(v any) any {
	if r, ok := v.(refLike); ok {
		return r.refValue()
	}
	return v
}

// RefProxy exposes a map whose values may be refs, reading them unwrapped
// and writing through to them. Component setup state is exposed this way
// so render functions see plain values.
type RefProxy struct {
	target any
}

// ProxyRefs returns a RefProxy over a map[string]any or *Object.
func ProxyRefs(target any) *RefProxy {
	if p, ok := target.(*RefProxy); ok {
		return p
	}
	return &RefProxy{target: target}
}

func (p *RefProxy) lookupRaw(key string) (any, bool) {
	switch t := p.target.(type) {
	case *Object:
		return t.Lookup(key)
	case map[string]any:
		v, ok := t[key]
		return v, ok
	}
	return nil, false
}

// Lookup returns the unwrapped value under key and whether it exists.
func (p *RefProxy) Lookup(key string) (any, bool) {
	v, ok := p.lookupRaw(key)
	return UnRef(v), ok
}

// Get returns the unwrapped value under key.
func (p *RefProxy) Get(key string) any {
	v, _ := p.Lookup(key)
	return v
}

// Has reports whether key exists.
func (p *RefProxy) Has(key string) bool {
	_, ok := p.lookupRaw(key)
	return ok
}

// Set writes value under key. When the existing value is a ref and value is
// not, the ref is updated in place; otherwise the entry is replaced.
func (p *RefProxy) Set(key string, value any) {
	old, _ := p.lookupRaw(key)
	if r, ok := old.(refLike); ok && !IsRef(value) {
		r.setRefValue(value)
		return
	}
	switch t := p.target.(type) {
	case *Object:
		t.Set(key, value)
	case map[string]any:
		t[key] = value
	}
}

// Raw returns the proxied target.
func (p *RefProxy) Raw() any {
	return p.target
}

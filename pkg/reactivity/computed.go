package reactivity

import "sync"

// Computed is a lazily evaluated, cached derivation. The getter runs inside
// an effect whose scheduler only marks the value dirty; the next read
// recomputes it. Reads of a Computed are not tracked themselves.
type Computed[T any] struct {
	mu     sync.Mutex
	effect *ReactiveEffect
	dirty  bool
	value  T
}

// NewComputed returns a computed value backed by getter.
//
// Example:
//
//	count := reactivity.NewRef(1)
//	double := reactivity.NewComputed(func() int { return count.Value() * 2 })
//	double.Value() // 2
//	count.Set(5)
//	double.Value() // 10
func NewComputed[T any](getter func() T) *Computed[T] {
	c := &Computed[T]{dirty: true}
	c.effect = NewReactiveEffect(func() any {
		return getter()
	}, func() {
		c.mu.Lock()
		c.dirty = true
		c.mu.Unlock()
	})
	return c
}

// Value returns the cached value, recomputing it first if a dependency has
// changed since the last read.
func (c *Computed[T]) Value() T {
	c.mu.Lock()
	dirty := c.dirty
	c.dirty = false
	c.mu.Unlock()
	if !dirty {
		return c.value
	}
	v, _ := c.effect.Run().(T)
	c.value = v
	return v
}

// Dirty reports whether the next read will recompute.
func (c *Computed[T]) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Stop detaches the computed from its dependencies. The cached value is kept
// and never recomputed automatically again.
func (c *Computed[T]) Stop() {
	c.effect.Stop()
}

func (c *Computed[T]) refValue() any {
	return c.Value()
}

func (c *Computed[T]) setRefValue(any) {
	warn("write operation failed: computed value is readonly")
}

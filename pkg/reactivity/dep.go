package reactivity

import "sync"

// Dep is the ordered, duplicate-free set of effects subscribed to one
// reactive key. Effects are notified in subscription order.
type Dep struct {
	mu      sync.Mutex
	effects []*ReactiveEffect
}

// add subscribes e. It reports whether e was newly added.
func (d *Dep) add(e *ReactiveEffect) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.effects {
		if existing == e {
			return false
		}
	}
	d.effects = append(d.effects, e)
	return true
}

// remove unsubscribes e, preserving the order of the remaining effects.
func (d *Dep) remove(e *ReactiveEffect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, existing := range d.effects {
		if existing == e {
			d.effects = append(d.effects[:i], d.effects[i+1:]...)
			return
		}
	}
}

// snapshot returns a copy of the subscriber list so effects can subscribe or
// unsubscribe while the caller iterates.
func (d *Dep) snapshot() []*ReactiveEffect {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.effects) == 0 {
		return nil
	}
	out := make([]*ReactiveEffect, len(d.effects))
	copy(out, d.effects)
	return out
}

// Len returns the number of subscribed effects.
func (d *Dep) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.effects)
}

// track subscribes the active effect, if any, to d.
func (d *Dep) track() {
	e := activeEffect()
	if e == nil {
		return
	}
	if d.add(e) {
		e.addDep(d)
	}
}

// trigger notifies every subscriber of d. An effect never re-triggers itself
// while it is running.
func (d *Dep) trigger() {
	current := activeEffect()
	for _, e := range d.snapshot() {
		if e == current {
			continue
		}
		e.notify()
	}
}

package reactivity

import "sync"

// ReactiveEffect owns a computation and the dependency sets it has been
// subscribed to. It is created by Effect, by Computed, and by the renderer
// for every component render.
type ReactiveEffect struct {
	fn        func() any
	scheduler func()
	onStop    func()

	mu     sync.Mutex
	deps   []*Dep
	active bool
}

// NewReactiveEffect creates an effect around fn. When scheduler is non-nil
// it is called on every trigger instead of re-running fn. The effect does
// not run until Run is called.
func NewReactiveEffect(fn func() any, scheduler func()) *ReactiveEffect {
	return &ReactiveEffect{
		fn:        fn,
		scheduler: scheduler,
		active:    true,
	}
}

// Run executes the computation with e as the active effect so every reactive
// read subscribes e. A stopped effect still executes its function but no
// longer tracks reads as itself.
func (e *ReactiveEffect) Run() any {
	if !e.Active() {
		return e.fn()
	}
	pushEffect(e)
	defer popEffect()
	return e.fn()
}

// Stop removes e from every dependency set it belongs to and invokes the
// stop callback. Stopping twice is a no-op.
func (e *ReactiveEffect) Stop() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	e.active = false
	deps := e.deps
	e.deps = nil
	onStop := e.onStop
	e.mu.Unlock()

	for _, d := range deps {
		d.remove(e)
	}
	if onStop != nil {
		onStop()
	}
}

// Active reports whether the effect still tracks and receives triggers.
func (e *ReactiveEffect) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// SetOnStop installs the callback invoked by Stop.
func (e *ReactiveEffect) SetOnStop(fn func()) {
	e.mu.Lock()
	e.onStop = fn
	e.mu.Unlock()
}

// DepCount returns the number of dependency sets e is subscribed to.
func (e *ReactiveEffect) DepCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.deps)
}

func (e *ReactiveEffect) addDep(d *Dep) {
	e.mu.Lock()
	e.deps = append(e.deps, d)
	e.mu.Unlock()
}

func (e *ReactiveEffect) removeDep(d *Dep) {
	d.remove(e)
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, existing := range e.deps {
		if existing == d {
			e.deps = append(e.deps[:i], e.deps[i+1:]...)
			return
		}
	}
}

// notify is called by a triggered dependency.
func (e *ReactiveEffect) notify() {
	if e.scheduler != nil {
		e.scheduler()
		return
	}
	e.Run()
}

// EffectOption configures an effect created by Effect.
type EffectOption func(*ReactiveEffect)

// WithScheduler makes triggers call fn instead of re-running the effect.
func WithScheduler(fn func()) EffectOption {
	return func(e *ReactiveEffect) {
		e.scheduler = fn
	}
}

// OnStop registers fn to run once when the effect is stopped.
func OnStop(fn func()) EffectOption {
	return func(e *ReactiveEffect) {
		e.onStop = fn
	}
}

// Runner is the handle returned by Effect. Calling Run re-executes the
// effect's function and returns its result.
type Runner struct {
	effect *ReactiveEffect
}

// Run executes the effect's function and returns its result.
func (r *Runner) Run() any {
	return r.effect.Run()
}

// Effect returns the underlying ReactiveEffect.
func (r *Runner) Effect() *ReactiveEffect {
	return r.effect
}

// Effect creates a reactive effect, runs it once immediately, and returns
// its runner. The effect re-runs (or calls its scheduler) whenever a
// dependency read during a run is written.
//
// Example:
//
//	runner := reactivity.Effect(func() any {
//	    return state.Get("count")
//	})
//	defer reactivity.Stop(runner)
func Effect(fn func() any, opts ...EffectOption) *Runner {
	e := NewReactiveEffect(fn, nil)
	for _, opt := range opts {
		opt(e)
	}
	e.Run()
	return &Runner{effect: e}
}

// Stop stops the effect behind runner.
func Stop(runner *Runner) {
	if runner == nil {
		return
	}
	runner.effect.Stop()
}

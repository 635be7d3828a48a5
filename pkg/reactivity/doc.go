// Package reactivity provides the dependency-tracking core of reactor.
//
// Reactive state is read and written through explicit wrapper types rather
// than dynamic interception. Reads performed while an effect is running
// register that effect as a subscriber of the (target, key) pair; writes
// notify every subscriber of the pair.
//
// # Core Types
//
// Object and Array wrap plain map[string]any and []any values:
//
//	state := reactivity.Reactive(map[string]any{"count": 0}).(*reactivity.Object)
//	reactivity.Effect(func() any {
//	    fmt.Println("count:", state.Get("count"))
//	    return nil
//	})
//	state.Set("count", 1) // effect re-runs
//
// Ref holds a single value with its own subscriber set:
//
//	n := reactivity.NewRef(1)
//	n.Set(2)
//
// Computed memoizes a getter and recomputes lazily after its inputs change:
//
//	double := reactivity.NewComputed(func() int { return n.Value() * 2 })
//	double.Value() // 4
//
// # Effects and Schedulers
//
// Effect runs its function once immediately and again whenever a tracked
// dependency is triggered. When WithScheduler is supplied the scheduler is
// called instead of re-running the function, which is how the renderer
// defers component updates to the update queue.
//
// # Tracking Context
//
// The currently running effect is kept on a per-goroutine stack. Nested
// effects push and pop themselves, so an inner effect never clobbers the
// outer one. Reads performed while no effect is running are not tracked.
package reactivity

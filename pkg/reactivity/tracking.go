package reactivity

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// DebugMode enables debug logging of track and trigger operations.
// This should be set at startup and not changed during runtime.
var DebugMode bool

// trackingContext holds the reactive state for a goroutine.
type trackingContext struct {
	// effects is the stack of running effects. The top entry is the effect
	// that receives new subscriptions; a nil entry pauses tracking.
	effects []*ReactiveEffect
}

// trackingContexts stores per-goroutine tracking contexts keyed by goroutine id.
var trackingContexts sync.Map

// getTrackingContext returns the tracking context for the current goroutine,
// creating it when create is true.
func getTrackingContext(create bool) *trackingContext {
	gid := goid.Get()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}
	if !create {
		return nil
	}
	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// activeEffect returns the effect currently collecting dependencies on this
// goroutine, or nil when reads are not tracked.
func activeEffect() *ReactiveEffect {
	ctx := getTrackingContext(false)
	if ctx == nil || len(ctx.effects) == 0 {
		return nil
	}
	return ctx.effects[len(ctx.effects)-1]
}

// pushEffect makes e the active effect until the matching popEffect.
func pushEffect(e *ReactiveEffect) {
	ctx := getTrackingContext(true)
	ctx.effects = append(ctx.effects, e)
}

// popEffect restores the previously active effect. The goroutine's context is
// dropped once its stack is empty so finished goroutines leave nothing behind.
func popEffect() {
	ctx := getTrackingContext(false)
	if ctx == nil || len(ctx.effects) == 0 {
		return
	}
	ctx.effects[len(ctx.effects)-1] = nil
	ctx.effects = ctx.effects[:len(ctx.effects)-1]
	if len(ctx.effects) == 0 {
		trackingContexts.Delete(goid.Get())
	}
}

// IsTracking reports whether reads on the current goroutine are being tracked.
func IsTracking() bool {
	return activeEffect() != nil
}

// Untracked runs fn without tracking any reads as dependencies, even when
// called from inside a running effect.
//
// Example:
//
//	reactivity.Effect(func() any {
//	    a := state.Get("a") // tracked
//	    reactivity.Untracked(func() {
//	        _ = state.Get("b") // not tracked
//	    })
//	    return a
//	})
func Untracked(fn func()) {
	pushEffect(nil)
	defer popEffect()
	fn()
}

var logger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used for usage diagnostics. A nil logger restores
// slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func getLogger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// warn reports API misuse. Misuse never panics; it is logged and ignored.
func warn(msg string, args ...any) {
	getLogger().Warn(msg, args...)
}

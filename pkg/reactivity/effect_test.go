package reactivity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffect(t *testing.T) {
	t.Run("runs immediately and on change", func(t *testing.T) {
		state := Reactive(map[string]any{"count": 0}).(*Object)
		seen := []any{}

		Effect(func() any {
			seen = append(seen, state.Get("count"))
			return nil
		})
		state.Set("count", 1)
		state.Set("count", 2)

		assert.Equal(t, []any{0, 1, 2}, seen)
	})

	t.Run("runner returns fn result", func(t *testing.T) {
		n := 0
		runner := Effect(func() any {
			n++
			return "foo"
		})
		assert.Equal(t, "foo", runner.Run())
		assert.Equal(t, 2, n)
	})

	t.Run("scheduler replaces re-run", func(t *testing.T) {
		state := Reactive(map[string]any{"foo": 1}).(*Object)
		runs, scheduled := 0, 0
		var dummy any

		runner := Effect(func() any {
			runs++
			dummy = state.Get("foo")
			return nil
		}, WithScheduler(func() { scheduled++ }))

		assert.Equal(t, 1, runs)
		assert.Equal(t, 0, scheduled)

		state.Set("foo", 2)
		assert.Equal(t, 1, runs)
		assert.Equal(t, 1, scheduled)
		assert.Equal(t, 1, dummy)

		runner.Run()
		assert.Equal(t, 2, dummy)
	})

	t.Run("stop detaches from dependencies", func(t *testing.T) {
		state := Reactive(map[string]any{"prop": 1}).(*Object)
		var dummy any
		runner := Effect(func() any {
			dummy = state.Get("prop")
			return nil
		})

		state.Set("prop", 2)
		assert.Equal(t, 2, dummy)

		Stop(runner)
		state.Set("prop", 3)
		assert.Equal(t, 2, dummy)
		assert.Equal(t, 0, SubscriberCount(state, "prop"))

		// Manual invocation still executes the function.
		runner.Run()
		assert.Equal(t, 3, dummy)

		// But the stopped effect does not subscribe itself again.
		state.Set("prop", 4)
		assert.Equal(t, 3, dummy)
	})

	t.Run("onStop runs once", func(t *testing.T) {
		calls := 0
		runner := Effect(func() any { return nil }, OnStop(func() { calls++ }))
		Stop(runner)
		Stop(runner)
		assert.Equal(t, 1, calls)
	})

	t.Run("nested effects restore the outer effect", func(t *testing.T) {
		state := Reactive(map[string]any{"outer": 0, "inner": 0}).(*Object)
		outerRuns, innerRuns := 0, 0

		Effect(func() any {
			outerRuns++
			Effect(func() any {
				innerRuns++
				return state.Get("inner")
			})
			return state.Get("outer")
		})

		require.Equal(t, 1, outerRuns)
		state.Set("outer", 1)
		assert.Equal(t, 2, outerRuns)
	})

	t.Run("subscribers notified in subscription order", func(t *testing.T) {
		state := Reactive(map[string]any{"v": 0}).(*Object)
		order := []string{}
		for _, name := range []string{"a", "b", "c"} {
			name := name
			Effect(func() any {
				if state.Get("v") != 0 {
					order = append(order, name)
				}
				return nil
			})
		}
		state.Set("v", 1)
		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("effect does not re-trigger itself", func(t *testing.T) {
		state := Reactive(map[string]any{"n": 0}).(*Object)
		runs := 0
		Effect(func() any {
			runs++
			n := state.Get("n").(int)
			state.Set("n", n+1)
			return nil
		})
		assert.Equal(t, 1, runs)
		assert.Equal(t, 1, state.Get("n"))
	})
}

func TestUntracked(t *testing.T) {
	state := Reactive(map[string]any{"a": 1, "b": 1}).(*Object)
	runs := 0
	Effect(func() any {
		runs++
		state.Get("a")
		Untracked(func() {
			state.Get("b")
			assert.False(t, IsTracking())
		})
		assert.True(t, IsTracking())
		return nil
	})

	state.Set("b", 2)
	assert.Equal(t, 1, runs)
	state.Set("a", 2)
	assert.Equal(t, 2, runs)
}

func TestTrackingIsPerGoroutine(t *testing.T) {
	state := Reactive(map[string]any{"v": 0}).(*Object)
	runs := 0

	Effect(func() any {
		runs++
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			// No effect is active on this goroutine.
			assert.False(t, IsTracking())
			_ = Reactive(map[string]any{"x": 1}).(*Object).Get("x")
		}()
		wg.Wait()
		return state.Get("v")
	})

	assert.Equal(t, 1, runs)
	assert.False(t, IsTracking())
}

func TestRelease(t *testing.T) {
	raw := map[string]any{"v": 0}
	state := Reactive(raw).(*Object)
	runs := 0
	runner := Effect(func() any {
		runs++
		return state.Get("v")
	})
	require.Equal(t, 1, runner.Effect().DepCount())

	Release(raw)
	assert.Equal(t, 0, runner.Effect().DepCount())
	state.Set("v", 1)
	assert.Equal(t, 1, runs)
}

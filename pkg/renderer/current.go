package renderer

import (
	"sync"

	"github.com/petermattis/goid"
)

// instanceStacks holds the per-goroutine stack of instances whose Setup is
// running, keyed by goroutine id.
var instanceStacks sync.Map

// withCurrentInstance runs fn with inst as the current instance. The
// previous instance is restored when fn returns or panics.
func withCurrentInstance(inst *Instance, fn func() any) any {
	gid := goid.Get()
	var stack []*Instance
	if v, ok := instanceStacks.Load(gid); ok {
		stack = v.([]*Instance)
	}
	instanceStacks.Store(gid, append(stack, inst))
	defer func() {
		if len(stack) == 0 {
			instanceStacks.Delete(gid)
			return
		}
		instanceStacks.Store(gid, stack)
	}()
	return fn()
}

// GetCurrentInstance returns the instance whose Setup is running on this
// goroutine, or nil outside Setup.
func GetCurrentInstance() *Instance {
	v, ok := instanceStacks.Load(goid.Get())
	if !ok {
		return nil
	}
	stack := v.([]*Instance)
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

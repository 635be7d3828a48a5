package renderer

import "log/slog"

// Provide makes value available to descendants of the current instance
// under key. It must be called during Setup.
func Provide(key, value any) {
	inst := GetCurrentInstance()
	if inst == nil {
		slog.Default().Warn("provide called outside setup", "key", key)
		return
	}
	inst.provides[key] = value
}

// Inject returns the value provided under key by the nearest ancestor, or by
// the app. When nothing is provided it returns the default: a func() any
// default is called, any other default is returned as-is. Inject returns nil
// when called outside Setup.
func Inject(key any, defaultValue ...any) any {
	inst := GetCurrentInstance()
	if inst == nil {
		return nil
	}
	for p := inst.parent; p != nil; p = p.parent {
		if v, ok := p.provides[key]; ok {
			return v
		}
	}
	if inst.app != nil {
		if v, ok := inst.app.provides[key]; ok {
			return v
		}
	}
	if len(defaultValue) == 0 {
		return nil
	}
	if fn, ok := defaultValue[0].(func() any); ok {
		return fn()
	}
	return defaultValue[0]
}

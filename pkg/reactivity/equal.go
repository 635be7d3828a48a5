package reactivity

import (
	"math"
	"reflect"
	"unsafe"
)

// SameValue reports whether a and b are the same value by identity rather
// than deep equality. Maps, slices and pointers compare by reference, NaN
// equals NaN, and functions compare by closure identity.
func SameValue(a, b any) bool {
	a, b = ToRaw(a), ToRaw(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := a.(float64); ok {
		if fb, ok := b.(float64); ok && math.IsNaN(fa) && math.IsNaN(fb) {
			return true
		}
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Func:
		return funcData(a) == funcData(b)
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Slice:
		return va.UnsafePointer() == vb.UnsafePointer() && va.Len() == vb.Len()
	}
	if !va.Comparable() {
		return false
	}
	return va.Equal(vb)
}

// funcData returns the data word of an interface holding a func. Func values
// are pointer-shaped, so the word is the closure itself.
func funcData(f any) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&f))[1]
}
